package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/benwyrosdick/lazychess/internal/adapters/http"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// newRegistry returns a registry with the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RunServe serves the HTTP API on addr until interrupted. An empty addr uses the config.
func RunServe(opts Options, addr string) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	logger := createLogger(cfg.Log, nil)
	reg := newRegistry()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err = runWithEngine(sigCtx, cfg, logger, reg, func(ctx context.Context, r *runner.Runner) error {
		handler, err := httpadapter.NewHandler(r,
			httpadapter.WithLogger(logger),
			httpadapter.WithGatherer(reg),
			httpadapter.WithVersion(opts.Version),
			httpadapter.WithDefaultDepth(cfg.Engine.Depth),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "address", addr)
			serverErrors <- srv.ListenAndServe()
		}()
		printSystemMessage(opts.stdout(), "Serving analysis on http://%s", addr)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
			return nil
		}
	})
	return handleExecutionError(err)
}
