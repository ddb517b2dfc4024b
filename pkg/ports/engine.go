package ports

import "time"

// EngineProcess is a running engine seen as two line streams.
// The session owns it exclusively: WriteLine is called from the caller's goroutine,
// ReadLine only from the reader goroutine.
type EngineProcess interface {
	// WriteLine sends one line to the engine, appending the terminator and flushing.
	// A broken pipe is reported as an error matching domain.ErrEngineLost.
	WriteLine(text string) error

	// ReadLine blocks until the next line of engine output and returns it without its terminator.
	// It returns io.EOF once the stream has ended.
	ReadLine() (string, error)

	// Terminate asks the engine to quit, waits at most grace for it to exit, then kills it.
	// It is safe to call more than once and never blocks longer than about grace.
	Terminate(grace time.Duration) error
}
