package domain

import "time"

// Message is one decoded line of engine output, or the reader's terminal signal.
type Message interface {
	isMessage()
}

// SearchInfo is an "info" line that carries a score.
// MultiPV is the 1-based slot the line belongs to.
type SearchInfo struct {
	Depth    int
	SelDepth int
	MultiPV  int
	Score    Score
	PV       []string
	Nodes    int64
	NPS      int64
	Time     time.Duration
	HashFull int
}

// BestMove closes a search. Ponder is empty when the engine did not suggest one.
type BestMove struct {
	Move   string
	Ponder string
}

// ReadyOk answers an IsReady command.
type ReadyOk struct{}

// UCIOk ends the handshake started by the UCI command.
type UCIOk struct{}

// EngineID is an "id name ..." or "id author ..." line.
type EngineID struct {
	Field string
	Value string
}

// EngineOption is an "option name ..." line advertised during the handshake.
type EngineOption struct {
	Name    string
	Type    string
	Default string
	Min     string
	Max     string
	Vars    []string
}

// Unrecognized holds a line that matched no known pattern, or whose numbers did not parse.
type Unrecognized struct {
	Line string
}

// EngineLost is pushed once by the reader when the output stream ends or fails.
// Nothing follows it.
type EngineLost struct {
	Err error
}

func (SearchInfo) isMessage()   {}
func (BestMove) isMessage()     {}
func (ReadyOk) isMessage()      {}
func (UCIOk) isMessage()        {}
func (EngineID) isMessage()     {}
func (EngineOption) isMessage() {}
func (Unrecognized) isMessage() {}
func (EngineLost) isMessage()   {}

// MessageKind returns a short stable label for a message, used in logs and metrics.
func MessageKind(msg Message) string {
	switch msg.(type) {
	case SearchInfo:
		return "info"
	case BestMove:
		return "bestmove"
	case ReadyOk:
		return "readyok"
	case UCIOk:
		return "uciok"
	case EngineID:
		return "id"
	case EngineOption:
		return "option"
	case Unrecognized:
		return "unrecognized"
	case EngineLost:
		return "engine_lost"
	default:
		return "unknown"
	}
}
