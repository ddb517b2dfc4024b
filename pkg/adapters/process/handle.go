package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/uci"
)

// DefaultWaitDelay bounds how long Wait keeps copying stderr after the engine exits.
const DefaultWaitDelay = time.Second

// Handle is a running engine subprocess with line-oriented access to its stdin and stdout.
// It implements ports.EngineProcess.
type Handle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *bufio.Writer
	stdout *os.File
	reader *bufio.Reader
	logger *slog.Logger

	mu     sync.Mutex // serializes writes
	closed bool

	exited  chan struct{}
	waitErr error

	terminateOnce sync.Once
	terminateErr  error
}

// Option configures a Handle before the process starts.
type Option func(*spawnConfig)

type spawnConfig struct {
	args      []string
	dir       string
	env       map[string]string
	stderr    io.Writer
	logger    *slog.Logger
	waitDelay time.Duration
}

// WithArgs sets the command line arguments of the engine.
func WithArgs(args ...string) Option {
	return func(c *spawnConfig) {
		c.args = append([]string(nil), args...)
	}
}

// WithDir sets the working directory of the engine process.
func WithDir(dir string) Option {
	return func(c *spawnConfig) {
		c.dir = dir
	}
}

// WithEnv adds variables to the inherited environment.
func WithEnv(env map[string]string) Option {
	return func(c *spawnConfig) {
		if c.env == nil {
			c.env = make(map[string]string, len(env))
		}
		for k, v := range env {
			c.env[k] = v
		}
	}
}

// WithStderr forwards the engine's stderr. By default it is discarded.
func WithStderr(w io.Writer) Option {
	return func(c *spawnConfig) {
		c.stderr = w
	}
}

// WithLogger sets the logger used for the line trace (debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(c *spawnConfig) {
		c.logger = logger
	}
}

// Spawn starts the engine at path with its stdin and stdout piped.
// A missing or unrunnable executable yields an error matching domain.ErrSpawn.
func Spawn(path string, opts ...Option) (*Handle, error) {
	cfg := spawnConfig{
		logger:    logging.NewNop(),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := exec.Command(path, cfg.args...)
	cmd.Dir = cfg.dir
	cmd.Stderr = cfg.stderr
	cmd.WaitDelay = cfg.waitDelay
	if len(cfg.env) > 0 {
		env := cmd.Environ()
		for k, v := range cfg.env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, spawnError(path, err)
	}

	// A plain os.Pipe instead of StdoutPipe: Wait must not close our read end
	// while buffered engine output is still unread.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, spawnError(path, err)
	}
	cmd.Stdout = stdoutW

	if err := cmd.Start(); err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, spawnError(path, err)
	}
	_ = stdoutW.Close()

	h := &Handle{
		cmd:    cmd,
		stdin:  stdin,
		writer: bufio.NewWriter(stdin),
		stdout: stdoutR,
		reader: bufio.NewReader(stdoutR),
		logger: cfg.logger.With("engine", path, "pid", cmd.Process.Pid),
		exited: make(chan struct{}),
	}

	go func() {
		h.waitErr = cmd.Wait()
		close(h.exited)
	}()

	h.logger.Debug("engine started", "args", cfg.args)
	return h, nil
}

func spawnError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrSpawn, path, err)
}

// PID returns the operating system process id.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Exited is closed once the process has exited.
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// WriteLine writes text followed by a newline and flushes it.
func (h *Handle) WriteLine(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return &domain.EngineError{Op: "write", Err: domain.ErrEngineLost}
	}

	text = strings.TrimRight(text, "\r\n")
	if _, err := h.writer.WriteString(text + "\n"); err != nil {
		return lostError("write", err)
	}
	if err := h.writer.Flush(); err != nil {
		return lostError("write", err)
	}
	h.logger.Debug("engine <<", "line", text)
	return nil
}

// ReadLine returns the next line of engine output without its terminator.
// It returns io.EOF at the end of the stream. A final line without newline is still returned.
func (h *Handle) ReadLine() (string, error) {
	line, err := h.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimRight(line, "\r\n"), nil
			}
			return "", io.EOF
		}
		return "", lostError("read", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func lostError(op string, err error) error {
	return &domain.EngineError{Op: op, Err: fmt.Errorf("%w: %w", domain.ErrEngineLost, err)}
}

// Terminate sends quit, waits up to grace for the process to exit and kills it otherwise.
// Later calls return the result of the first one.
func (h *Handle) Terminate(grace time.Duration) error {
	h.terminateOnce.Do(func() {
		h.terminateErr = h.terminate(grace)
	})
	return h.terminateErr
}

func (h *Handle) terminate(grace time.Duration) error {
	_ = h.WriteLine(uci.Encode(domain.Quit{}))

	h.mu.Lock()
	h.closed = true
	_ = h.stdin.Close()
	h.mu.Unlock()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-h.exited:
		h.logger.Debug("engine exited", "err", h.waitErr)
	case <-timer.C:
		h.logger.Warn("engine did not quit in time, killing", "grace", grace)
		if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return &domain.EngineError{Op: "kill", Err: err}
		}
		select {
		case <-h.exited:
		case <-time.After(grace + DefaultWaitDelay):
			h.logger.Warn("engine still not reaped after kill")
		}
	}

	// Unblocks a reader stuck on a pipe still held open by a grandchild.
	_ = h.stdout.Close()
	return nil
}
