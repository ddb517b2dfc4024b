// Package mcp exposes engine analysis to MCP clients: a blocking analyze_position tool,
// engine control tools and the live analysis as a resource.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/internal/presentation/tui"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// AnalysisURI is the resource holding the latest analysis as JSON.
	AnalysisURI = "lazychess://analysis"
	// ReportURI is the resource holding the latest analysis as markdown.
	ReportURI = "lazychess://analysis.md"
)

// Analyzer is the part of runner.Runner the MCP server drives.
type Analyzer interface {
	Evaluate(ctx context.Context, req domain.AnalysisRequest) (runner.Status, error)
	SetOption(ctx context.Context, name, value string) error
	NewGame(ctx context.Context) error
	Status() runner.Status
}

// AnalyzeArgs are the arguments of the analyze_position tool.
type AnalyzeArgs struct {
	FEN      string   `json:"fen,omitempty"`
	PGN      string   `json:"pgn,omitempty"`
	Moves    []string `json:"moves,omitempty"`
	MultiPV  int      `json:"multipv,omitempty"`
	Depth    int      `json:"depth,omitempty"`
	MoveTime int      `json:"movetime,omitempty"`
}

// OptionArgs are the arguments of the set_option tool.
type OptionArgs struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Evaluation is the structured result of analyze_position. Scores are from White's point of view.
type Evaluation struct {
	FEN        string          `json:"fen" jsonschema_description:"FEN of the analyzed position"`
	SideToMove string          `json:"side_to_move" jsonschema_description:"white or black"`
	Engine     string          `json:"engine,omitempty" jsonschema_description:"Engine name"`
	Depth      int             `json:"depth" jsonschema_description:"Deepest depth reached"`
	BestMove   string          `json:"best_move" jsonschema_description:"Best move in SAN"`
	BestUCI    string          `json:"best_move_uci" jsonschema_description:"Best move in coordinate notation"`
	Lines      []EvaluatedLine `json:"lines" jsonschema_description:"Principal variations, best first"`
}

// EvaluatedLine is one principal variation of an Evaluation.
type EvaluatedLine struct {
	Rank  int      `json:"rank"`
	Score string   `json:"score" jsonschema_description:"Evaluation like +0.34 or M3, from White's point of view"`
	CP    *int     `json:"cp,omitempty"`
	Mate  *int     `json:"mate,omitempty"`
	Depth int      `json:"depth"`
	SAN   string   `json:"san" jsonschema_description:"Line in SAN with move numbers"`
	UCI   []string `json:"uci"`
}

// Server serves lazychess over MCP.
type Server struct {
	analyzer  Analyzer
	mcpServer *server.MCPServer
	logger    *slog.Logger
	depth     int
	timeout   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaultDepth sets the depth used when analyze_position has no depth or movetime.
func WithDefaultDepth(depth int) Option {
	return func(s *Server) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

// WithTimeout bounds a single analyze_position call.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer creates an MCP server for a.
func NewServer(a Analyzer, version string, opts ...Option) *Server {
	s := &Server{
		analyzer:  a,
		mcpServer: server.NewMCPServer("lazychess-mcp", version),
		logger:    logging.NewNop(),
		depth:     20,
		timeout:   60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves JSON-RPC on stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	analyzeTool := mcp.NewTool("analyze_position",
		mcp.WithDescription("Analyze a chess position with the engine and return its best lines. Without fen the standard start position is used."),
		mcp.WithString("fen", mcp.Description("Start position in FEN (optional)")),
		mcp.WithString("pgn", mcp.Description("A game in PGN whose final position is analyzed; do not combine with fen (optional)")),
		mcp.WithArray("moves", mcp.WithStringItems(), mcp.Description("Moves played from the start position, in SAN or coordinate notation (optional)")),
		mcp.WithNumber("multipv", mcp.Min(1), mcp.Max(500), mcp.Description("Number of lines to return (optional)")),
		mcp.WithNumber("depth", mcp.Min(1), mcp.Description("Search depth (optional)")),
		mcp.WithNumber("movetime", mcp.Min(1), mcp.Description("Search time in milliseconds (optional)")),
		mcp.WithOutputSchema[Evaluation](),
	)
	s.mcpServer.AddTool(analyzeTool, mcp.NewStructuredToolHandler(s.handleAnalyze))

	optionTool := mcp.NewTool("set_option",
		mcp.WithDescription("Set a UCI engine option such as Threads, Hash or Skill Level."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Option name as the engine reports it")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Option value")),
	)
	s.mcpServer.AddTool(optionTool, mcp.NewTypedToolHandler(s.handleSetOption))

	s.mcpServer.AddTool(mcp.NewTool("new_game",
		mcp.WithDescription("Tell the engine the next positions belong to a new game."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.analyzer.NewGame(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("new game failed: %v", err)), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_analysis",
		mcp.WithDescription("Get the latest analysis as a markdown report."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(tui.Markdown(s.analyzer.Status())), nil
	})
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest, args AnalyzeArgs) (Evaluation, error) {
	pos, err := position.Parse(args.FEN, args.PGN, args.Moves...)
	if err != nil {
		return Evaluation{}, err
	}

	limits := domain.Go{
		Depth:    args.Depth,
		MoveTime: time.Duration(args.MoveTime) * time.Millisecond,
	}
	if limits.Depth == 0 && limits.MoveTime == 0 {
		limits.Depth = s.depth
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st, err := s.analyzer.Evaluate(ctx, pos.Request(args.MultiPV, limits))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Evaluation{}, fmt.Errorf("engine did not finish within %s", s.timeout)
		}
		return Evaluation{}, err
	}
	s.logger.Debug("position analyzed", "fen", pos.FEN(), "depth", st.Analysis.Depth(), "best", st.Analysis.BestMove)
	return NewEvaluation(pos, st), nil
}

func (s *Server) handleSetOption(ctx context.Context, request mcp.CallToolRequest, args OptionArgs) (*mcp.CallToolResult, error) {
	if args.Name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	if err := s.analyzer.SetOption(ctx, args.Name, args.Value); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("set option failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s set to %s", args.Name, args.Value)), nil
}

// NewEvaluation converts a completed status into the tool result for pos.
func NewEvaluation(pos *position.Position, st runner.Status) Evaluation {
	side := "black"
	if pos.WhiteToMove() {
		side = "white"
	}
	ev := Evaluation{
		FEN:        pos.FEN(),
		SideToMove: side,
		Engine:     st.Engine.Name,
		Depth:      st.Analysis.Depth(),
		BestUCI:    st.Analysis.BestMove,
		Lines:      make([]EvaluatedLine, 0, len(st.Analysis.Lines)),
	}
	if san := pos.SAN([]string{st.Analysis.BestMove}); len(san) == 1 {
		ev.BestMove = san[0]
	}

	for _, line := range st.Analysis.Lines {
		score := pos.WhitePerspective(line.Score)
		value := score.Value
		out := EvaluatedLine{
			Rank:  line.Index,
			Score: score.String(),
			Depth: line.Depth,
			SAN:   pos.FormatPV(line.PV),
			UCI:   line.PV,
		}
		if score.IsMate() {
			out.Mate = &value
		} else {
			out.CP = &value
		}
		ev.Lines = append(ev.Lines, out)
	}
	return ev
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(AnalysisURI, "Current analysis",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.analyzer.Status())
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      AnalysisURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(ReportURI, "Current analysis report",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ReportURI,
				MIMEType: "text/markdown",
				Text:     tui.Markdown(s.analyzer.Status()),
			},
		}, nil
	})
}
