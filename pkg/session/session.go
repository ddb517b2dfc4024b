package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/pkg/analysis"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/ports"
	"github.com/benwyrosdick/lazychess/pkg/uci"
)

// OptionMultiPV is the UCI option that controls the number of reported lines.
const OptionMultiPV = "MultiPV"

// waitReadyInterval is the poll period of WaitReady.
const waitReadyInterval = 10 * time.Millisecond

// Identity is what the engine reported about itself during the handshake.
type Identity struct {
	Name   string `json:"name,omitempty"`
	Author string `json:"author,omitempty"`
}

// Session is the facade over one engine: it sends commands, folds the engine's
// output into an analysis.Store and enforces the search lifecycle.
type Session struct {
	proc   ports.EngineProcess
	reader *reader
	store  *analysis.Store

	logger         *slog.Logger
	hooks          []domain.Hooks
	defaultMultiPV int
	initialOptions map[string]string
	grace          time.Duration
	queueSize      int

	state   domain.SessionState
	multipv int // value last sent to the engine, 0 when never sent
	lostErr error
	closed  bool

	ready    bool
	identity Identity
	options  []domain.EngineOption

	pendingOptions []domain.SetOption
	pendingAnalyze *domain.AnalysisRequest
}

// New starts a session on an already spawned engine.
// It starts the reader and sends the handshake (uci, the configured options and isready)
// without waiting for answers; use WaitReady to block until the engine is ready.
func New(proc ports.EngineProcess, opts ...Option) (*Session, error) {
	s := &Session{
		proc:           proc,
		logger:         logging.NewNop(),
		defaultMultiPV: 1,
		initialOptions: make(map[string]string),
		grace:          DefaultGracePeriod,
		queueSize:      DefaultQueueSize,
		state:          domain.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reader = newReader(proc, s.queueSize, s.logger)
	s.store = analysis.New(s.reader.out)
	s.reader.start()

	if err := s.handshake(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake() error {
	if err := s.send(domain.UCI{}); err != nil {
		return err
	}

	names := make([]string, 0, len(s.initialOptions))
	for name := range s.initialOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.setOption(name, s.initialOptions[name]); err != nil {
			return err
		}
	}

	return s.send(domain.IsReady{})
}

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	return s.state
}

// Snapshot returns a copy of the analysis of the current epoch.
func (s *Session) Snapshot() domain.Snapshot {
	return s.store.Snapshot()
}

// Ready reports whether the engine has answered the handshake's isready.
func (s *Session) Ready() bool {
	return s.ready
}

// Identity returns the engine's "id" lines.
func (s *Session) Identity() Identity {
	return s.identity
}

// EngineOptions lists the options the engine advertised during the handshake.
func (s *Session) EngineOptions() []domain.EngineOption {
	out := make([]domain.EngineOption, len(s.options))
	copy(out, s.options)
	return out
}

// MultiPV returns the number of lines the engine is currently configured for.
func (s *Session) MultiPV() int {
	if s.multipv == 0 {
		return s.defaultMultiPV
	}
	return s.multipv
}

// StartAnalysis starts a search. It is only valid while Idle; otherwise nothing is sent.
func (s *Session) StartAnalysis(req domain.AnalysisRequest) error {
	if s.state != domain.StateIdle {
		return &domain.TransitionError{Op: "start analysis", State: s.state}
	}
	return s.start(req)
}

// Analyze starts a search, stopping the running one first if needed.
// While a search is running or stopping the request is queued, replacing any queued one,
// and starts as soon as the engine reports its best move.
func (s *Session) Analyze(req domain.AnalysisRequest) error {
	switch s.state {
	case domain.StateIdle:
		return s.start(req)
	case domain.StateAnalyzing:
		s.pendingAnalyze = &req
		return s.stop()
	case domain.StateStopping:
		s.pendingAnalyze = &req
		return nil
	default:
		return &domain.TransitionError{Op: "analyze", State: s.state}
	}
}

// Stop asks the engine to end the running search. It is only valid while Analyzing.
// The analysis stays frozen at its last update until the engine answers with bestmove.
func (s *Session) Stop() error {
	if s.state != domain.StateAnalyzing {
		return &domain.TransitionError{Op: "stop", State: s.state}
	}
	return s.stop()
}

// Reconfigure sets an engine option. While a search is running it is stopped first and
// the option is applied once the engine is idle again, in call order.
func (s *Session) Reconfigure(name, value string) error {
	switch s.state {
	case domain.StateIdle:
		return s.setOption(name, value)
	case domain.StateAnalyzing:
		s.pendingOptions = append(s.pendingOptions, domain.SetOption{Name: name, Value: value})
		return s.stop()
	case domain.StateStopping:
		s.pendingOptions = append(s.pendingOptions, domain.SetOption{Name: name, Value: value})
		return nil
	default:
		return &domain.TransitionError{Op: "reconfigure", State: s.state}
	}
}

// NewGame tells the engine that the next position starts a new game. It is only valid while Idle.
func (s *Session) NewGame() error {
	if s.state != domain.StateIdle {
		return &domain.TransitionError{Op: "new game", State: s.state}
	}
	if err := s.send(domain.NewGame{}); err != nil {
		return err
	}
	return s.send(domain.IsReady{})
}

// Poll drains every message the reader has produced since the last call, applies them
// in order and returns them. It never blocks. Once the engine is lost Poll returns an
// error matching domain.ErrEngineLost.
func (s *Session) Poll() ([]domain.Message, error) {
	if s.state == domain.StateTerminated {
		return nil, s.terminatedErr()
	}

	msgs := s.store.Drain()
	for _, msg := range msgs {
		s.fireMessage(msg)
		s.handle(msg)
		if s.state == domain.StateTerminated {
			return msgs, s.terminatedErr()
		}
	}
	return msgs, nil
}

// WaitReady polls until the engine has answered isready or ctx ends.
// A context deadline yields an error matching domain.ErrHandshakeTimeout.
func (s *Session) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(waitReadyInterval)
	defer ticker.Stop()

	for {
		if _, err := s.Poll(); err != nil {
			return err
		}
		if s.ready {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %w", domain.ErrHandshakeTimeout, ctx.Err())
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close terminates the engine (quit, then kill after the grace period) and waits for the
// reader within the same bound. The session ends Terminated. Calling Close again is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pendingAnalyze = nil
	s.pendingOptions = nil

	err := s.proc.Terminate(s.grace)
	s.reader.stop()

	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case <-s.reader.done:
	case <-timer.C:
		s.logger.Warn("engine reader did not stop in time")
	}

	s.setState(domain.StateTerminated)
	return err
}

func (s *Session) start(req domain.AnalysisRequest) error {
	multipv := req.MultiPV
	if multipv < 1 {
		multipv = s.MultiPV()
	}
	if multipv != s.multipv {
		if err := s.setOption(OptionMultiPV, strconv.Itoa(multipv)); err != nil {
			return err
		}
	}
	if err := s.send(req.Position); err != nil {
		return err
	}
	if err := s.send(req.Limits); err != nil {
		return err
	}

	s.store.Begin(multipv)
	s.setState(domain.StateAnalyzing)
	return nil
}

func (s *Session) stop() error {
	if err := s.send(domain.Stop{}); err != nil {
		return err
	}
	s.store.Freeze()
	s.setState(domain.StateStopping)
	return nil
}

func (s *Session) setOption(name, value string) error {
	if err := s.send(domain.SetOption{Name: name, Value: value}); err != nil {
		return err
	}
	if strings.EqualFold(name, OptionMultiPV) {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			s.multipv = n
		}
	}
	return nil
}

func (s *Session) handle(msg domain.Message) {
	switch m := msg.(type) {
	case domain.SearchInfo:
		s.store.Apply(m)
	case domain.BestMove:
		if s.state != domain.StateAnalyzing && s.state != domain.StateStopping {
			s.logger.Debug("ignoring bestmove outside a search", "move", m.Move)
			return
		}
		s.store.Apply(m)
		s.setState(domain.StateIdle)
		s.runPending()
	case domain.ReadyOk:
		s.ready = true
	case domain.UCIOk:
		s.logger.Debug("engine acknowledged uci", "name", s.identity.Name)
	case domain.EngineID:
		switch m.Field {
		case "name":
			s.identity.Name = m.Value
		case "author":
			s.identity.Author = m.Value
		}
	case domain.EngineOption:
		s.options = append(s.options, m)
	case domain.Unrecognized:
		s.logger.Debug("unrecognized engine output", "line", m.Line)
	case domain.EngineLost:
		s.lose(m.Err)
	}
}

// runPending replays what was queued while the previous search wound down.
func (s *Session) runPending() {
	options := s.pendingOptions
	req := s.pendingAnalyze
	s.pendingOptions = nil
	s.pendingAnalyze = nil

	for _, opt := range options {
		if err := s.setOption(opt.Name, opt.Value); err != nil {
			return
		}
	}
	if req != nil {
		if err := s.start(*req); err != nil {
			s.logger.Warn("failed to start queued analysis", "err", err)
		}
	}
}

// send encodes cmd and writes it. A write failure terminates the session.
func (s *Session) send(cmd domain.Command) error {
	if s.state == domain.StateTerminated {
		return s.terminatedErr()
	}

	line := strings.TrimSuffix(uci.Encode(cmd), "\n")
	if err := s.proc.WriteLine(line); err != nil {
		s.lose(err)
		return s.terminatedErr()
	}
	s.logger.Debug("command sent", "command", domain.CommandName(cmd), "line", line)
	for _, h := range s.hooks {
		if h.OnCommand != nil {
			h.OnCommand(cmd)
		}
	}
	return nil
}

// lose moves the session to Terminated after the engine went away. There is no respawn.
func (s *Session) lose(err error) {
	if s.state == domain.StateTerminated {
		return
	}
	switch {
	case err == nil:
		err = domain.ErrEngineLost
	case !errors.Is(err, domain.ErrEngineLost):
		err = fmt.Errorf("%w: %w", domain.ErrEngineLost, err)
	}
	s.lostErr = err
	s.logger.Error("engine lost", "err", err)

	s.pendingAnalyze = nil
	s.pendingOptions = nil
	s.setState(domain.StateTerminated)

	_ = s.Close()
}

func (s *Session) terminatedErr() error {
	if s.lostErr != nil {
		return s.lostErr
	}
	return domain.ErrTerminated
}

func (s *Session) setState(to domain.SessionState) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.logger.Debug("session state changed", "from", from, "to", to)
	for _, h := range s.hooks {
		if h.OnStateChange != nil {
			h.OnStateChange(from, to)
		}
	}
}

func (s *Session) fireMessage(msg domain.Message) {
	for _, h := range s.hooks {
		if h.OnMessage != nil {
			h.OnMessage(msg)
		}
	}
}
