package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/session"
)

// ErrStopped is returned by requests made after Run has returned.
var ErrStopped = errors.New("runner stopped")

// Session is the part of session.Session the runner drives.
type Session interface {
	Analyze(req domain.AnalysisRequest) error
	Stop() error
	Reconfigure(name, value string) error
	NewGame() error
	Poll() ([]domain.Message, error)
	Snapshot() domain.Snapshot
	State() domain.SessionState
	MultiPV() int
	Identity() session.Identity
	Close() error
}

// Status is the analysis as seen by a watcher: the session state, the position the
// current epoch belongs to and its lines.
type Status struct {
	State    domain.SessionState `json:"state"`
	Engine   session.Identity    `json:"engine"`
	Position domain.Position     `json:"position"`
	MultiPV  int                 `json:"multipv"`
	Analysis domain.Snapshot     `json:"analysis"`
}

type request struct {
	fn    func() error
	reply chan error
}

type waiter struct {
	afterEpoch int
	reply      chan Status
}

// Runner owns a Session and serializes every access to it.
type Runner struct {
	session Session
	tick    time.Duration
	logger  *slog.Logger

	requests chan request
	done     chan struct{}

	// loop goroutine only
	requested   domain.AnalysisRequest
	active      domain.AnalysisRequest
	activeEpoch int
	waiters     []waiter
	last        Status

	mu       sync.Mutex
	watchers map[int]chan Status
	nextID   int
	stopped  bool
	status   Status
}

// New creates a Runner for s. Nothing happens until Run is called.
func New(s Session, opts ...Option) *Runner {
	r := &Runner{
		session:  s,
		tick:     DefaultTick,
		logger:   logging.NewNop(),
		requests: make(chan request, DefaultRequestBufferSize),
		done:     make(chan struct{}),
		watchers: make(map[int]chan Status),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.status = r.snapshotStatus()
	return r
}

// Run polls the session until ctx ends or the engine is lost, then closes the session.
// A cancelled context is a normal shutdown and returns nil; engine loss returns an error
// matching domain.ErrEngineLost.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	defer r.shutdown()

	r.logger.Debug("runner started", "tick", r.tick)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("runner stopping", "reason", ctx.Err())
			return nil

		case req := <-r.requests:
			req.reply <- req.fn()
			r.publish()

		case <-ticker.C:
			msgs, err := r.session.Poll()
			if len(msgs) > 0 || err != nil {
				r.publish()
			}
			if err != nil {
				r.logger.Error("engine lost", "err", err)
				return err
			}
		}
	}
}

func (r *Runner) shutdown() {
	if err := r.session.Close(); err != nil {
		r.logger.Warn("failed to close engine session", "err", err)
	}
	r.publish()

	r.mu.Lock()
	r.stopped = true
	for id, ch := range r.watchers {
		close(ch)
		delete(r.watchers, id)
	}
	r.mu.Unlock()

	for _, w := range r.waiters {
		close(w.reply)
	}
	r.waiters = nil
	close(r.done)
}

// Done is closed when Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// do runs fn on the loop goroutine and waits for its result.
func (r *Runner) do(ctx context.Context, fn func() error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case r.requests <- req:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Analyze analyzes req, replacing whatever runs now.
func (r *Runner) Analyze(ctx context.Context, req domain.AnalysisRequest) error {
	return r.do(ctx, func() error {
		return r.analyze(req)
	})
}

func (r *Runner) analyze(req domain.AnalysisRequest) error {
	if err := r.session.Analyze(req); err != nil {
		return err
	}
	r.requested = req
	return nil
}

// Stop stops the running search. It fails with domain.ErrInvalidTransition when none runs.
func (r *Runner) Stop(ctx context.Context) error {
	return r.do(ctx, r.session.Stop)
}

// SetOption changes an engine option, stopping the running search first if needed.
func (r *Runner) SetOption(ctx context.Context, name, value string) error {
	return r.do(ctx, func() error {
		return r.session.Reconfigure(name, value)
	})
}

// NewGame sends ucinewgame. It is only valid while no search runs.
func (r *Runner) NewGame(ctx context.Context) error {
	return r.do(ctx, r.session.NewGame)
}

// Status returns the latest published status. It does not touch the session.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Snapshot returns the analysis of the latest published status.
func (r *Runner) Snapshot() domain.Snapshot {
	return r.Status().Analysis
}

// State returns the session state of the latest published status.
func (r *Runner) State() domain.SessionState {
	return r.Status().State
}

// Watch returns a channel receiving the status after every change, starting with the current one.
// A slow watcher only sees the latest status. The channel is closed when ctx ends or Run returns.
func (r *Runner) Watch(ctx context.Context) <-chan Status {
	ch := make(chan Status, 1)

	r.mu.Lock()
	if r.stopped {
		ch <- r.status
		close(ch)
		r.mu.Unlock()
		return ch
	}
	id := r.nextID
	r.nextID++
	r.watchers[id] = ch
	ch <- r.status
	r.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-r.done:
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if w, ok := r.watchers[id]; ok {
			close(w)
			delete(r.watchers, id)
		}
	}()
	return ch
}

// Evaluate analyzes req and waits until the engine has answered with its best move.
// The request should carry a depth, node or time limit unless ctx has a deadline.
func (r *Runner) Evaluate(ctx context.Context, req domain.AnalysisRequest) (Status, error) {
	reply := make(chan Status, 1)
	err := r.do(ctx, func() error {
		after := r.session.Snapshot().Epoch
		if err := r.analyze(req); err != nil {
			return err
		}
		r.waiters = append(r.waiters, waiter{afterEpoch: after, reply: reply})
		return nil
	})
	if err != nil {
		return Status{}, err
	}

	select {
	case status, ok := <-reply:
		if !ok {
			return r.Status(), fmt.Errorf("evaluation interrupted: %w", ErrStopped)
		}
		return status, nil
	case <-ctx.Done():
		return r.Status(), ctx.Err()
	}
}

// publish refreshes the status, fans it out when it changed and completes evaluations.
func (r *Runner) publish() {
	status := r.snapshotStatus()

	kept := r.waiters[:0]
	for _, w := range r.waiters {
		if status.Analysis.Complete && status.Analysis.Epoch > w.afterEpoch {
			w.reply <- status
			continue
		}
		if status.State == domain.StateTerminated {
			close(w.reply)
			continue
		}
		kept = append(kept, w)
	}
	r.waiters = kept

	if statusEqual(status, r.last) {
		return
	}
	r.last = status

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	for _, ch := range r.watchers {
		select {
		case ch <- status:
		default:
			// Slow watcher: replace the status it has not read yet.
			select {
			case <-ch:
			default:
			}
			ch <- status
		}
	}
}

func (r *Runner) snapshotStatus() Status {
	snap := r.session.Snapshot()
	if snap.Epoch != r.activeEpoch {
		r.active = r.requested
		r.activeEpoch = snap.Epoch
	}
	multipv := r.active.MultiPV
	if multipv < 1 {
		multipv = r.session.MultiPV()
	}
	return Status{
		State:    r.session.State(),
		Engine:   r.session.Identity(),
		Position: r.active.Position,
		MultiPV:  multipv,
		Analysis: snap,
	}
}

// statusEqual compares the fields that change while analyzing.
func statusEqual(a, b Status) bool {
	if a.State != b.State || a.Analysis.Epoch != b.Analysis.Epoch || a.Analysis.Complete != b.Analysis.Complete {
		return false
	}
	if a.Analysis.Nodes != b.Analysis.Nodes || len(a.Analysis.Lines) != len(b.Analysis.Lines) {
		return false
	}
	for i := range a.Analysis.Lines {
		la, lb := a.Analysis.Lines[i], b.Analysis.Lines[i]
		if la.Depth != lb.Depth || la.Score != lb.Score || len(la.PV) != len(lb.PV) {
			return false
		}
		for j := range la.PV {
			if la.PV[j] != lb.PV[j] {
				return false
			}
		}
	}
	return true
}
