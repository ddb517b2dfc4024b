package lazychess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/pkg/adapters/process"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/benwyrosdick/lazychess/pkg/session"
)

// DefaultReadyTimeout bounds the UCI handshake in Open.
const DefaultReadyTimeout = 10 * time.Second

// Engine is the high-level entry point for the lazychess library.
// It owns an engine process, its session and the Runner serializing access to it.
type Engine struct {
	runner  *runner.Runner
	session *session.Session
	pid     int
	logger  *slog.Logger

	cancel    context.CancelFunc
	done      chan error
	closeOnce sync.Once
	closeErr  error
}

type options struct {
	logger       *slog.Logger
	hooks        []domain.Hooks
	spawn        []process.Option
	multipv      int
	engineOpts   map[string]string
	grace        time.Duration
	tick         time.Duration
	readyTimeout time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*options)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on the session.
func WithLifecycleHooks(hooks domain.Hooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks)
	}
}

// WithArgs sets the command line arguments of the engine.
func WithArgs(args ...string) Option {
	return func(o *options) {
		o.spawn = append(o.spawn, process.WithArgs(args...))
	}
}

// WithMultiPV sets the number of lines analyzed when a request does not say.
func WithMultiPV(n int) Option {
	return func(o *options) {
		o.multipv = n
	}
}

// WithEngineOptions sets UCI options during the handshake.
func WithEngineOptions(opts map[string]string) Option {
	return func(o *options) {
		o.engineOpts = opts
	}
}

// WithGracePeriod bounds how long Close waits for the engine to quit before killing it.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		o.grace = d
	}
}

// WithTick sets how often engine output is polled.
func WithTick(d time.Duration) Option {
	return func(o *options) {
		o.tick = d
	}
}

// WithReadyTimeout bounds the UCI handshake.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readyTimeout = d
	}
}

// Open starts the engine at path (a path or a name on PATH; empty means stockfish),
// completes the UCI handshake and starts polling it in the background.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	o := options{
		logger:       logging.NewNop(),
		multipv:      1,
		grace:        session.DefaultGracePeriod,
		tick:         runner.DefaultTick,
		readyTimeout: DefaultReadyTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	exe, err := process.ResolveExecutable(path)
	if err != nil {
		return nil, err
	}
	handle, err := process.Spawn(exe, append(o.spawn, process.WithLogger(o.logger))...)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(handle,
		session.WithLogger(o.logger),
		session.WithHooks(domain.CombineHooks(o.hooks...)),
		session.WithMultiPV(o.multipv),
		session.WithOptions(o.engineOpts),
		session.WithGracePeriod(o.grace),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine session: %w", err)
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, o.readyTimeout)
	defer cancelReady()
	if err := sess.WaitReady(readyCtx); err != nil {
		_ = sess.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		runner:  runner.New(sess, runner.WithTick(o.tick), runner.WithLogger(o.logger)),
		session: sess,
		pid:     handle.PID(),
		logger:  o.logger,
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() {
		e.done <- e.runner.Run(runCtx)
	}()
	return e, nil
}

// Runner returns the runner driving the engine, for adapters and watchers.
func (e *Engine) Runner() *runner.Runner {
	return e.runner
}

// Identity returns the name and author the engine reported.
func (e *Engine) Identity() session.Identity {
	return e.runner.Status().Engine
}

// PID returns the engine's process id.
func (e *Engine) PID() int {
	return e.pid
}

// Evaluate analyzes req and waits for the engine's best move.
func (e *Engine) Evaluate(ctx context.Context, req domain.AnalysisRequest) (runner.Status, error) {
	return e.runner.Evaluate(ctx, req)
}

// EvaluateFEN validates fen and moves and analyzes the resulting position to depth.
// An empty fen means the standard start position.
func (e *Engine) EvaluateFEN(ctx context.Context, fen string, moves []string, multipv, depth int) (runner.Status, error) {
	pos, err := position.FromFEN(fen, moves...)
	if err != nil {
		return runner.Status{}, err
	}
	return e.Evaluate(ctx, pos.Request(multipv, domain.Go{Depth: depth}))
}

// Close stops the runner, which quits the engine. It returns the runner's error when the
// engine was lost before. Calling Close again returns the same result.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.cancel()
		if err := <-e.done; err != nil && !errors.Is(err, context.Canceled) {
			e.closeErr = err
		}
	})
	return e.closeErr
}
