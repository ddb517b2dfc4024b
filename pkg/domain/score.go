package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ScoreKind tells how a Score value must be read.
type ScoreKind int

const (
	ScoreCentipawns ScoreKind = iota
	ScoreMate
)

// ScoreBound qualifies a score reported during an aspiration search.
type ScoreBound int

const (
	BoundExact ScoreBound = iota
	BoundLower
	BoundUpper
)

// Score is an engine evaluation relative to the side to move in the analyzed position.
// For ScoreMate, Value is the number of moves to mate; negative means the side to move gets mated.
type Score struct {
	Kind  ScoreKind
	Value int
	Bound ScoreBound
}

// Centipawns builds an exact centipawn score.
func Centipawns(cp int) Score {
	return Score{Kind: ScoreCentipawns, Value: cp}
}

// MateIn builds an exact mate score.
func MateIn(n int) Score {
	return Score{Kind: ScoreMate, Value: n}
}

// IsMate reports whether the score is a mate distance.
func (s Score) IsMate() bool {
	return s.Kind == ScoreMate
}

// Negate flips the point of view of the score.
func (s Score) Negate() Score {
	out := s
	out.Value = -s.Value
	switch s.Bound {
	case BoundLower:
		out.Bound = BoundUpper
	case BoundUpper:
		out.Bound = BoundLower
	}
	return out
}

// String renders the score the way analysis panels show it: "+0.34", "-1.20", "M3", "-M2".
func (s Score) String() string {
	if s.Kind == ScoreMate {
		if s.Value < 0 {
			return "-M" + strconv.Itoa(-s.Value)
		}
		return "M" + strconv.Itoa(s.Value)
	}
	return fmt.Sprintf("%+.2f", float64(s.Value)/100)
}

type scoreJSON struct {
	CP    *int   `json:"cp,omitempty"`
	Mate  *int   `json:"mate,omitempty"`
	Bound string `json:"bound,omitempty"`
	Text  string `json:"text"`
}

// MarshalJSON renders the score as {"cp":34,"text":"+0.34"} or {"mate":-3,"text":"-M3"}.
func (s Score) MarshalJSON() ([]byte, error) {
	v := s.Value
	out := scoreJSON{Text: s.String()}
	if s.Kind == ScoreMate {
		out.Mate = &v
	} else {
		out.CP = &v
	}
	switch s.Bound {
	case BoundLower:
		out.Bound = "lower"
	case BoundUpper:
		out.Bound = "upper"
	}
	return json.Marshal(out)
}
