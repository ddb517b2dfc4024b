package testutils

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ErrFakeEngineGone is returned by FakeEngine writes after Crash or Terminate.
var ErrFakeEngineGone = errors.New("fake engine: broken pipe")

type outputItem struct {
	line string
	err  error
}

// FakeEngine is a scripted, in-memory UCI engine implementing ports.EngineProcess.
// It answers the handshake like Stockfish, replies to stop with a best move, and lets
// tests inject search output with Emit.
type FakeEngine struct {
	mu          sync.Mutex
	written     []string
	searching   bool
	gone        bool
	stdinBroken bool
	terminated  int

	out       chan outputItem
	closeOnce sync.Once

	silentReady bool
	goScript    func(goLine string) []string
	bestMove    string
}

// FakeOption configures a FakeEngine.
type FakeOption func(*FakeEngine)

// WithSilentReady makes the engine ignore isready, for handshake timeouts.
func WithSilentReady() FakeOption {
	return func(f *FakeEngine) {
		f.silentReady = true
	}
}

// WithGoScript sets the lines printed in answer to a go command.
// When they contain a bestmove line the search is over.
func WithGoScript(script func(goLine string) []string) FakeOption {
	return func(f *FakeEngine) {
		f.goScript = script
	}
}

// WithBestMove sets the move reported when a search is stopped. Defaults to e2e4.
func WithBestMove(move string) FakeOption {
	return func(f *FakeEngine) {
		f.bestMove = move
	}
}

// NewFakeEngine creates a running fake engine.
func NewFakeEngine(opts ...FakeOption) *FakeEngine {
	f := &FakeEngine{
		out:      make(chan outputItem, 1024),
		bestMove: "e2e4",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WriteLine records the command and queues the scripted answer.
func (f *FakeEngine) WriteLine(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.gone || f.stdinBroken {
		return ErrFakeEngineGone
	}
	text = strings.TrimRight(text, "\r\n")
	f.written = append(f.written, text)

	for _, line := range f.respond(text) {
		f.out <- outputItem{line: line}
	}
	return nil
}

func (f *FakeEngine) respond(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "uci":
		return []string{
			"id name FakeFish 1.0",
			"id author the lazychess tests",
			"option name Threads type spin default 1 min 1 max 1024",
			"option name MultiPV type spin default 1 min 1 max 500",
			"uciok",
		}
	case "isready":
		if f.silentReady {
			return nil
		}
		return []string{"readyok"}
	case "go":
		f.searching = true
		if f.goScript == nil {
			return nil
		}
		lines := f.goScript(text)
		for _, l := range lines {
			if strings.HasPrefix(l, "bestmove") {
				f.searching = false
			}
		}
		return lines
	case "stop":
		if !f.searching {
			return nil
		}
		f.searching = false
		return []string{"bestmove " + f.bestMove}
	case "quit":
		f.gone = true
		f.closeOutput()
	}
	return nil
}

// ReadLine blocks until the fake engine prints a line. It returns io.EOF once the engine is gone.
func (f *FakeEngine) ReadLine() (string, error) {
	item, ok := <-f.out
	if !ok {
		return "", io.EOF
	}
	return item.line, item.err
}

// Terminate closes the output stream. It records how often it was called.
func (f *FakeEngine) Terminate(grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.terminated++
	f.gone = true
	f.closeOutput()
	return nil
}

// Emit prints lines as if the engine produced them. Lines emitted after the engine is gone are dropped.
func (f *FakeEngine) Emit(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.gone {
		return
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "bestmove") {
			f.searching = false
		}
		f.out <- outputItem{line: line}
	}
}

// FailRead makes the next read fail with err, after already queued lines. The stream ends with it.
func (f *FakeEngine) FailRead(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.gone {
		return
	}
	f.gone = true
	f.out <- outputItem{err: fmt.Errorf("fake engine read: %w", err)}
	f.closeOutput()
}

// Crash simulates the process dying: output ends and writes fail.
func (f *FakeEngine) Crash() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gone = true
	f.closeOutput()
}

// BreakStdin makes every later write fail while output keeps flowing.
func (f *FakeEngine) BreakStdin() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stdinBroken = true
}

func (f *FakeEngine) closeOutput() {
	f.closeOnce.Do(func() {
		close(f.out)
	})
}

// Written returns every line received so far.
func (f *FakeEngine) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.written))
	copy(out, f.written)
	return out
}

// Commands returns the received lines whose first word is one of names.
func (f *FakeEngine) Commands(names ...string) []string {
	var out []string
	for _, line := range f.Written() {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		for _, name := range names {
			if fields[0] == name {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// Terminated returns how many times Terminate was called.
func (f *FakeEngine) Terminated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminated
}
