package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is the version of openapi.yaml served by this package.
const APIVersion = "0.1.0"

// DefaultEvaluateTimeout bounds POST /evaluate when the client sends no timeout.
const DefaultEvaluateTimeout = 60 * time.Second

// Analyzer is the part of runner.Runner the HTTP API drives.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) error
	Evaluate(ctx context.Context, req domain.AnalysisRequest) (runner.Status, error)
	Stop(ctx context.Context) error
	SetOption(ctx context.Context, name, value string) error
	NewGame(ctx context.Context) error
	Status() runner.Status
	Watch(ctx context.Context) <-chan runner.Status
}

// Server serves the analysis API.
type Server struct {
	Analyzer Analyzer

	logger       *slog.Logger
	gatherer     prometheus.Gatherer
	version      string
	defaultDepth int
	timeout      time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the metrics of g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithVersion sets the application version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithDefaultDepth sets the depth used by POST /evaluate when the request has no limit.
func WithDefaultDepth(depth int) Option {
	return func(s *Server) {
		s.defaultDepth = depth
	}
}

// WithEvaluateTimeout sets the default bound of POST /evaluate.
func WithEvaluateTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewHandler creates a new HTTP handler for the analyzer.
func NewHandler(a Analyzer, opts ...Option) (http.Handler, error) {
	s := &Server{
		Analyzer:     a,
		logger:       logging.NewNop(),
		version:      "dev",
		defaultDepth: 20,
		timeout:      DefaultEvaluateTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	validate, err := newValidator(s.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/engine", s.GetEngine)
		r.Get("/analysis", s.GetAnalysis)
		r.Post("/analysis", s.StartAnalysis)
		r.Delete("/analysis", s.StopAnalysis)
		r.Post("/evaluate", s.Evaluate)
		r.Put("/options/{name}", s.SetOption)
		r.Post("/newgame", s.NewGame)
		r.Get("/events", s.SubscribeEvents)
	})
	return r, nil
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>lazychess API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// AnalysisBody is the JSON body of POST /analysis and POST /evaluate.
type AnalysisBody struct {
	FEN      string   `json:"fen,omitempty"`
	PGN      string   `json:"pgn,omitempty"`
	Moves    []string `json:"moves,omitempty"`
	MultiPV  int      `json:"multipv,omitempty"`
	Depth    int      `json:"depth,omitempty"`
	Nodes    int64    `json:"nodes,omitempty"`
	MoveTime int64    `json:"movetime,omitempty"`
	Infinite bool     `json:"infinite,omitempty"`
}

// Request validates the position and converts the body into an analysis request.
func (b AnalysisBody) Request() (domain.AnalysisRequest, error) {
	pos, err := position.Parse(b.FEN, b.PGN, b.Moves...)
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	return pos.Request(b.MultiPV, domain.Go{
		Depth:    b.Depth,
		Nodes:    b.Nodes,
		MoveTime: time.Duration(b.MoveTime) * time.Millisecond,
		Infinite: b.Infinite,
	}), nil
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "lazychess-http",
		"version":     s.version,
		"api_version": APIVersion,
	})
}

// GetEngine handles GET /engine.
func (s *Server) GetEngine(w http.ResponseWriter, r *http.Request) {
	st := s.Analyzer.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"engine":  st.Engine,
		"state":   st.State,
		"multipv": st.MultiPV,
	})
}

// GetAnalysis handles GET /analysis.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Analyzer.Status())
}

// StartAnalysis handles POST /analysis.
func (s *Server) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if err := s.Analyzer.Analyze(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.Analyzer.Status())
}

// StopAnalysis handles DELETE /analysis.
func (s *Server) StopAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.Analyzer.Stop(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.Analyzer.Status())
}

// Evaluate handles POST /evaluate: it analyzes the position and answers once the engine is done.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var timeoutParam *string
	if err := runtime.BindQueryParameter("form", true, false, "timeout", r.URL.Query(), &timeoutParam); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid timeout: %v", err)})
		return
	}
	timeout := s.timeout
	if timeoutParam != nil {
		d, err := time.ParseDuration(*timeoutParam)
		if err != nil || d <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid timeout %q", *timeoutParam)})
			return
		}
		timeout = d
	}

	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Limits.Infinite {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "an evaluation cannot be infinite"})
		return
	}
	if req.Limits.Depth == 0 && req.Limits.Nodes == 0 && req.Limits.MoveTime == 0 {
		req.Limits.Depth = s.defaultDepth
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	st, err := s.Analyzer.Evaluate(ctx, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// SetOption handles PUT /options/{name}.
func (s *Server) SetOption(w http.ResponseWriter, r *http.Request) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid option name: %v", err)})
		return
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	if err := s.Analyzer.SetOption(r.Context(), name, body.Value); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"name": name, "value": body.Value})
}

// NewGame handles POST /newgame.
func (s *Server) NewGame(w http.ResponseWriter, r *http.Request) {
	if err := s.Analyzer.NewGame(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.Analyzer.Status())
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := s.Analyzer.Watch(r.Context())

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(st)
			if err != nil {
				s.logger.Error("failed to encode status event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: status\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (domain.AnalysisRequest, bool) {
	var body AnalysisBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return domain.AnalysisRequest{}, false
	}
	req, err := body.Request()
	if err != nil {
		s.writeError(w, err)
		return domain.AnalysisRequest{}, false
	}
	return req, true
}

// statusCode maps session and runner errors to HTTP codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEngineLost), errors.Is(err, domain.ErrTerminated), errors.Is(err, runner.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", code, "err", err)
	}
	s.writeJSON(w, code, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}
