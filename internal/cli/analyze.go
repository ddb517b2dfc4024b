package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/benwyrosdick/lazychess/internal/config"
	"github.com/benwyrosdick/lazychess/internal/presentation/tui"
	"github.com/benwyrosdick/lazychess/pkg/adapters/mcp"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// RunAnalyze analyzes one position to a fixed depth or time and prints the result.
func RunAnalyze(opts Options, a AnalyzeOptions) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Log, nil)

	pos, err := a.position()
	if err != nil {
		return err
	}
	req := buildRequest(pos, a, cfg)
	if req.Limits.Depth == 0 && req.Limits.MoveTime == 0 {
		return fmt.Errorf("analyze needs a depth or a movetime")
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	out := opts.stdout()
	err = runWithEngine(sigCtx, cfg, logger, nil, func(ctx context.Context, r *runner.Runner) error {
		st, err := r.Evaluate(ctx, req)
		if err != nil {
			return err
		}
		return printResult(out, opts, cfg, a, pos, st)
	})
	return handleExecutionError(err)
}

// buildRequest fills the flags the user left out from the config.
func buildRequest(pos *position.Position, a AnalyzeOptions, cfg config.Config) domain.AnalysisRequest {
	limits := domain.Go{
		Depth:    a.Depth,
		MoveTime: time.Duration(a.MoveTime) * time.Millisecond,
	}
	if limits.Depth == 0 && limits.MoveTime == 0 {
		limits.Depth = cfg.Engine.Depth
	}
	multipv := a.MultiPV
	if multipv <= 0 {
		multipv = cfg.Engine.MultiPV
	}
	return pos.Request(multipv, limits)
}

func printResult(out io.Writer, opts Options, cfg config.Config, a AnalyzeOptions, pos *position.Position, st runner.Status) error {
	switch {
	case opts.JSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(mcp.NewEvaluation(pos, st))

	case a.Markdown || cfg.UI.Markdown:
		render, err := tui.NewRenderer(isTerminal(out), terminalWidth(out))
		if err != nil {
			return err
		}
		text, err := render(tui.Markdown(st))
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err

	default:
		panel := tui.NewPanel(colorProfile(out, cfg.UI.Color), 0)
		_, err := io.WriteString(out, panel.Render(st))
		return err
	}
}

// runWithEngine opens the engine, runs a Runner over it and calls fn with it.
// The runner stops when fn returns; engine loss cancels the context given to fn.
func runWithEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer, fn func(context.Context, *runner.Runner) error) error {
	sess, err := openEngine(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	r := runner.New(sess, runner.WithTick(cfg.UI.Tick), runner.WithLogger(logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx, r)
	})
	return g.Wait()
}
