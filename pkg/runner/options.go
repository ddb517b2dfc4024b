package runner

import (
	"log/slog"
	"time"
)

// DefaultTick is how often the session is polled.
const DefaultTick = 100 * time.Millisecond

// DefaultRequestBufferSize is the number of requests that can wait for the loop.
const DefaultRequestBufferSize = 64

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithTick sets the poll interval.
func WithTick(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}
