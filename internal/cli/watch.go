package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/benwyrosdick/lazychess/internal/presentation/tui"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/muesli/termenv"
)

const watchHelp = `Commands:
  <moves>             play moves (e4, Nf3, e7e5 ...) and analyze
  undo                take back the last move
  reset               back to the first position
  fen <fen>           analyze another position
  pgn <file|text>     load a game in PGN
  play [n]            play the first move of line n (default 1)
  multipv <n>         number of lines
  option <name> <v>   set an engine option
  stop | go           pause or resume the analysis
  q                   quit`

// RunWatch analyzes until interrupted, redrawing the panel on every update.
// Lines read from stdin play moves and control the engine.
func RunWatch(opts Options, a AnalyzeOptions) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Log, nil)

	pos, err := a.position()
	if err != nil {
		return err
	}
	multipv := a.MultiPV
	if multipv <= 0 {
		multipv = cfg.Engine.MultiPV
	}

	out := opts.stdout()
	profile := colorProfile(out, cfg.UI.Color)
	tty := isTerminal(out)
	if tty && !opts.JSON {
		tui.PrintBanner(out, profile)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err = runWithEngine(sigCtx, cfg, logger, nil, func(ctx context.Context, r *runner.Runner) error {
		w := &watcher{
			runner:  r,
			out:     out,
			panel:   tui.NewPanel(profile, 0),
			tty:     tty,
			multipv: multipv,
			history: pos.Replay(),
		}
		return w.run(ctx, opts.stdin())
	})
	if sigCtx.Signal() != nil {
		printSystemMessage(out, "Interrupted.")
	}
	return handleExecutionError(err)
}

type command struct {
	name string
	arg  string
}

// parseCommand reads one line of watch input. Anything that is not a keyword is a move list.
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}
	}
	arg := strings.TrimSpace(line[len(fields[0]):])

	switch name := strings.ToLower(fields[0]); name {
	case "q", "quit", "exit":
		return command{name: "quit"}
	case "u", "undo", "back":
		return command{name: "undo"}
	case "reset", "new":
		return command{name: "reset"}
	case "h", "help", "?":
		return command{name: "help"}
	case "fen", "pgn", "play", "multipv", "option", "stop", "go":
		return command{name: name, arg: arg}
	default:
		return command{name: "move", arg: line}
	}
}

// splitOption reads "Skill Level = 10" or "Hash 128".
func splitOption(arg string) (string, string, error) {
	if name, value, ok := strings.Cut(arg, "="); ok {
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if name == "" {
			return "", "", fmt.Errorf("usage: option <name> <value>")
		}
		return name, value, nil
	}
	fields := strings.Fields(arg)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("usage: option <name> <value>")
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1], nil
}

type watcher struct {
	runner  *runner.Runner
	out     io.Writer
	panel   *tui.Panel
	tty     bool
	multipv int
	history []*position.Position

	note      string
	lastDepth int
	last      runner.Status
}

func (w *watcher) current() *position.Position {
	return w.history[len(w.history)-1]
}

func (w *watcher) run(ctx context.Context, in io.Reader) error {
	lines := readLines(in)
	if err := w.analyze(ctx); err != nil {
		return err
	}

	updates := w.runner.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-updates:
			if !ok {
				return nil
			}
			w.render(st)
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			w.note = ""
			quit, err := w.handle(ctx, parseCommand(line))
			if quit {
				return nil
			}
			if err != nil {
				w.note = err.Error()
			}
			w.render(w.last)
		}
	}
}

// readLines pumps r into a channel closed at EOF.
// The goroutine may outlive the watcher while blocked on a terminal read.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

func (w *watcher) handle(ctx context.Context, cmd command) (bool, error) {
	switch cmd.name {
	case "":
		return false, nil
	case "quit":
		return true, nil
	case "help":
		w.note = watchHelp
		return false, nil
	case "move":
		next := w.current()
		for _, mv := range strings.Fields(cmd.arg) {
			p, err := next.Play(mv)
			if err != nil {
				return false, err
			}
			next = p
		}
		w.history = append(w.history, next)
	case "undo":
		if len(w.history) == 1 {
			return false, errors.New("nothing to undo")
		}
		w.history = w.history[:len(w.history)-1]
	case "reset":
		w.history = w.history[:1]
	case "fen":
		p, err := position.FromFEN(cmd.arg)
		if err != nil {
			return false, err
		}
		w.history = []*position.Position{p}
	case "pgn":
		pgn := cmd.arg
		if _, err := os.Stat(pgn); err == nil {
			if pgn, err = readPGN(cmd.arg); err != nil {
				return false, err
			}
		}
		p, err := position.FromPGN(pgn)
		if err != nil {
			return false, err
		}
		w.history = p.Replay()
	case "play":
		move, err := w.lineMove(cmd.arg)
		if err != nil {
			return false, err
		}
		next, err := w.current().Play(move)
		if err != nil {
			return false, err
		}
		w.history = append(w.history, next)
	case "multipv":
		n, err := strconv.Atoi(cmd.arg)
		if err != nil || n < 1 {
			return false, fmt.Errorf("multipv must be a positive number, got %q", cmd.arg)
		}
		w.multipv = n
	case "option":
		name, value, err := splitOption(cmd.arg)
		if err != nil {
			return false, err
		}
		if err := w.runner.SetOption(ctx, name, value); err != nil {
			return false, err
		}
	case "stop":
		return false, w.runner.Stop(ctx)
	case "go":
	}
	return false, w.analyze(ctx)
}

// lineMove returns the first move of analysis line n of the current position.
func (w *watcher) lineMove(arg string) (string, error) {
	n := 1
	if arg != "" {
		var err error
		if n, err = strconv.Atoi(arg); err != nil || n < 1 {
			return "", fmt.Errorf("line must be a positive number, got %q", arg)
		}
	}
	cur := w.current().Command()
	if w.last.Position.FEN != cur.FEN || !slices.Equal(w.last.Position.Moves, cur.Moves) {
		return "", errors.New("no analysis for this position yet")
	}
	for _, line := range w.last.Analysis.Lines {
		if line.Index == n && len(line.PV) > 0 {
			return line.PV[0], nil
		}
	}
	return "", fmt.Errorf("no line %d yet", n)
}

func (w *watcher) analyze(ctx context.Context) error {
	w.lastDepth = 0
	return w.runner.Analyze(ctx, w.current().Request(w.multipv, domain.Go{Infinite: true}))
}

// render redraws the panel on a terminal. Elsewhere it prints the best line once per depth.
func (w *watcher) render(st runner.Status) {
	w.last = st
	if w.tty {
		output := termenv.NewOutput(w.out)
		output.ClearScreen()
		fmt.Fprint(w.out, w.panel.Render(st))
		if w.note != "" {
			fmt.Fprintf(w.out, "\n%s\n", w.note)
		}
		fmt.Fprint(w.out, "> ")
		return
	}

	if w.note != "" {
		printSystemMessage(w.out, "%s", w.note)
		w.note = ""
	}
	best, ok := st.Analysis.Best()
	if !ok || best.Depth <= w.lastDepth {
		return
	}
	w.lastDepth = best.Depth
	pos, err := position.FromCommand(st.Position)
	if err != nil {
		pos = nil
	}
	fmt.Fprintln(w.out, w.panel.FormatLine(pos, best))
}
