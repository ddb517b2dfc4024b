package session

import (
	"log/slog"
	"time"

	"github.com/benwyrosdick/lazychess/pkg/domain"
)

// DefaultGracePeriod is how long Close waits for the engine to quit before killing it.
const DefaultGracePeriod = 2 * time.Second

// Option configures a Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks. Several calls combine.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = append(s.hooks, hooks)
	}
}

// WithMultiPV sets the number of lines used when a request does not say.
func WithMultiPV(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.defaultMultiPV = n
		}
	}
}

// WithOptions sets engine options sent during the handshake, e.g. {"Threads": "4"}.
func WithOptions(options map[string]string) Option {
	return func(s *Session) {
		for k, v := range options {
			s.initialOptions[k] = v
		}
	}
}

// WithGracePeriod bounds how long Close waits for the engine and the reader.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Session) {
		s.grace = d
	}
}

// WithQueueSize sets the capacity of the message channel.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		s.queueSize = n
	}
}
