package analysis

import (
	"sort"

	"github.com/benwyrosdick/lazychess/pkg/domain"
)

// DefaultMaxLines bounds the MultiPV slots until Begin sets a bound.
const DefaultMaxLines = 1

// Store folds engine messages into the current analysis.
// It is not safe for concurrent use: the session's goroutine owns it.
type Store struct {
	source       <-chan domain.Message
	sourceClosed bool

	epoch  int
	open   bool
	frozen bool
	bound  int

	lines    map[int]domain.AnalysisLine
	bestMove string
	ponder   string
	nodes    int64
	nps      int64
	hashFull int
	complete bool
}

// New creates a store reading from source. A nil source is allowed; Drain then returns nothing.
func New(source <-chan domain.Message) *Store {
	return &Store{
		source: source,
		bound:  DefaultMaxLines,
		lines:  make(map[int]domain.AnalysisLine),
	}
}

// Drain returns every message received since the last call, in arrival order.
// It never blocks and returns nil when nothing is pending.
func (s *Store) Drain() []domain.Message {
	if s.source == nil || s.sourceClosed {
		return nil
	}

	var out []domain.Message
	for {
		select {
		case msg, ok := <-s.source:
			if !ok {
				s.sourceClosed = true
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// Begin opens a new epoch for a search reporting up to multipv lines.
// Everything from the previous epoch is discarded.
func (s *Store) Begin(multipv int) {
	if multipv < 1 {
		multipv = 1
	}
	s.epoch++
	s.open = true
	s.frozen = false
	s.bound = multipv

	s.lines = make(map[int]domain.AnalysisLine, multipv)
	s.bestMove = ""
	s.ponder = ""
	s.nodes = 0
	s.nps = 0
	s.hashFull = 0
	s.complete = false
}

// Freeze stops applying search updates to the open epoch. BestMove still closes it.
func (s *Store) Freeze() {
	s.frozen = true
}

// Apply folds one message into the analysis and reports whether the snapshot changed.
func (s *Store) Apply(msg domain.Message) bool {
	switch m := msg.(type) {
	case domain.SearchInfo:
		if !s.open || s.frozen {
			return false
		}
		if m.MultiPV < 1 || m.MultiPV > s.bound {
			return false
		}
		// Messages arrive in engine order, so the last one always wins.
		s.lines[m.MultiPV] = domain.AnalysisLine{
			Index:    m.MultiPV,
			Score:    m.Score,
			PV:       append([]string(nil), m.PV...),
			Depth:    m.Depth,
			SelDepth: m.SelDepth,
			Nodes:    m.Nodes,
			Time:     m.Time,
		}
		if m.Nodes > 0 {
			s.nodes = m.Nodes
		}
		if m.NPS > 0 {
			s.nps = m.NPS
		}
		if m.HashFull > 0 {
			s.hashFull = m.HashFull
		}
		return true

	case domain.BestMove:
		if !s.open {
			return false
		}
		s.bestMove = m.Move
		s.ponder = m.Ponder
		s.complete = true
		s.open = false
		s.frozen = false
		return true
	}
	return false
}

// Snapshot returns a deep copy of the current epoch, lines ordered by slot.
func (s *Store) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Epoch:    s.epoch,
		Lines:    make([]domain.AnalysisLine, 0, len(s.lines)),
		BestMove: s.bestMove,
		Ponder:   s.ponder,
		Nodes:    s.nodes,
		NPS:      s.nps,
		HashFull: s.hashFull,
		Complete: s.complete,
	}
	for _, line := range s.lines {
		snap.Lines = append(snap.Lines, line.Clone())
	}
	sort.Slice(snap.Lines, func(i, j int) bool {
		return snap.Lines[i].Index < snap.Lines[j].Index
	})
	return snap
}

// Epoch returns the number of epochs begun so far.
func (s *Store) Epoch() int {
	return s.epoch
}

// Open reports whether the current epoch still awaits its BestMove.
func (s *Store) Open() bool {
	return s.open
}

// Frozen reports whether search updates are currently being ignored.
func (s *Store) Frozen() bool {
	return s.frozen
}

// SourceClosed reports whether Drain has seen the end of the message channel.
func (s *Store) SourceClosed() bool {
	return s.sourceClosed
}
