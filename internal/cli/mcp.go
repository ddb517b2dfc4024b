package cli

import (
	"context"
	"fmt"

	"github.com/benwyrosdick/lazychess/pkg/adapters/mcp"
	"github.com/benwyrosdick/lazychess/pkg/runner"
)

// MCPOptions select the MCP transport.
type MCPOptions struct {
	Transport string // stdio or sse
	Addr      string
	BaseURL   string
}

// RunMCP serves the MCP tools until the client disconnects or the process is interrupted.
func RunMCP(opts Options, m MCPOptions) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Log, nil)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err = runWithEngine(sigCtx, cfg, logger, nil, func(ctx context.Context, r *runner.Runner) error {
		srv := mcp.NewServer(r, opts.Version,
			mcp.WithLogger(logger),
			mcp.WithDefaultDepth(cfg.Engine.Depth),
		)

		switch m.Transport {
		case "", "stdio":
			// ServeStdio returns when stdin closes; an interrupt ends the process through the signal context.
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ServeStdio() }()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return nil
			}
		case "sse":
			baseURL := m.BaseURL
			if baseURL == "" {
				baseURL = "http://" + m.Addr
			}
			return srv.ServeSSE(ctx, m.Addr, baseURL)
		default:
			return fmt.Errorf("unknown MCP transport %q (want stdio or sse)", m.Transport)
		}
	})
	return handleExecutionError(err)
}
