/*
Package session drives one UCI engine through its analysis lifecycle.

A Session owns an engine process and a reader goroutine. The reader decodes every
line of engine output and pushes it on a buffered channel; the caller consumes
that channel without blocking by calling Poll, typically from a UI tick.

	Idle --StartAnalysis--> Analyzing --Stop--> Stopping --bestmove--> Idle
	any  --engine lost----> Terminated

Analyze is the forgiving counterpart of StartAnalysis: while a search is
running it stops it and queues the new request until the engine has answered
with its best move. Reconfigure behaves the same way for engine options.

A Session is not safe for concurrent use. Hosts that serve several goroutines
wrap it in a runner.Runner.
*/
package session
