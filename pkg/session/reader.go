package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/ports"
	"github.com/benwyrosdick/lazychess/pkg/uci"
)

// DefaultQueueSize is the capacity of the channel between the reader and the session.
// A full queue makes the reader wait, which in turn leaves the engine blocked on its stdout.
const DefaultQueueSize = 4096

// reader pumps engine output into a channel until the stream ends.
type reader struct {
	proc   ports.EngineProcess
	out    chan domain.Message
	quit   chan struct{} // closed by the session when it no longer drains
	done   chan struct{} // closed when the goroutine has exited
	logger *slog.Logger
}

func newReader(proc ports.EngineProcess, size int, logger *slog.Logger) *reader {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &reader{
		proc:   proc,
		out:    make(chan domain.Message, size),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (r *reader) start() {
	go r.run()
}

// run reads until EOF or a read error, then pushes exactly one EngineLost and closes the channel.
func (r *reader) run() {
	defer close(r.done)
	defer close(r.out)

	for {
		line, err := r.proc.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: engine output closed", domain.ErrEngineLost)
			} else if !errors.Is(err, domain.ErrEngineLost) {
				err = &domain.EngineError{Op: "read", Err: fmt.Errorf("%w: %w", domain.ErrEngineLost, err)}
			}
			r.logger.Debug("reader stopped", "err", err)
			r.push(domain.EngineLost{Err: err})
			return
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		r.logger.Debug("engine >>", "line", line)

		if !r.push(uci.Decode(line)) {
			return
		}
	}
}

func (r *reader) push(msg domain.Message) bool {
	select {
	case r.out <- msg:
		return true
	case <-r.quit:
		return false
	}
}

// stop releases a reader blocked on a full channel.
func (r *reader) stop() {
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
}
