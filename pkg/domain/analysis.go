package domain

import "time"

// AnalysisLine is the latest known evaluation of one MultiPV slot.
type AnalysisLine struct {
	Index    int           `json:"index"`
	Score    Score         `json:"score"`
	PV       []string      `json:"pv"`
	Depth    int           `json:"depth"`
	SelDepth int           `json:"seldepth,omitempty"`
	Nodes    int64         `json:"nodes,omitempty"`
	Time     time.Duration `json:"time,omitempty"`
}

// Clone returns a copy that shares no memory with the receiver.
func (l AnalysisLine) Clone() AnalysisLine {
	out := l
	if l.PV != nil {
		out.PV = append([]string(nil), l.PV...)
	}
	return out
}

// Snapshot is a copy of the analysis of one epoch, ordered by slot index.
type Snapshot struct {
	Epoch    int            `json:"epoch"`
	Lines    []AnalysisLine `json:"lines"`
	BestMove string         `json:"best_move,omitempty"`
	Ponder   string         `json:"ponder,omitempty"`
	Nodes    int64          `json:"nodes,omitempty"`
	NPS      int64          `json:"nps,omitempty"`
	HashFull int            `json:"hashfull,omitempty"`
	Complete bool           `json:"complete"`
}

// Best returns the first line, if any.
func (s Snapshot) Best() (AnalysisLine, bool) {
	if len(s.Lines) == 0 {
		return AnalysisLine{}, false
	}
	return s.Lines[0], true
}

// Depth returns the deepest depth among the lines.
func (s Snapshot) Depth() int {
	depth := 0
	for _, l := range s.Lines {
		if l.Depth > depth {
			depth = l.Depth
		}
	}
	return depth
}

// AnalysisRequest describes one search: the position, how many lines, and the search limits.
// A MultiPV below 1 means the session default.
type AnalysisRequest struct {
	Position Position `json:"position"`
	MultiPV  int      `json:"multipv,omitempty"`
	Limits   Go       `json:"limits"`
}
