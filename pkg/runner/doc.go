/*
Package runner hosts an engine session on a single goroutine.

A session.Session is not safe for concurrent use, and its output is only
consumed when someone polls it. The Runner owns the session, polls it on a
fixed tick and executes requests from other goroutines (HTTP handlers, MCP
tools, the CLI) one at a time on the same goroutine.

# Key Components

  - Runner: The loop. Run blocks until the context ends or the engine is lost.
  - Status: What watchers receive after every poll that changed something.
  - Session: The subset of session.Session the loop drives.

# Usage

	r := runner.New(sess, runner.WithTick(100*time.Millisecond))
	go r.Run(ctx)

	status, err := r.Evaluate(ctx, req)
*/
package runner
