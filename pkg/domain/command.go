package domain

import "time"

// Command is an outbound UCI instruction.
// The set of implementations is closed; each one encodes to exactly one line.
type Command interface {
	isCommand()
}

// Position sets the position to analyze.
// An empty FEN means the standard starting position.
type Position struct {
	FEN   string   `json:"fen,omitempty"`
	Moves []string `json:"moves,omitempty"`
}

// Go starts a search. Infinite takes precedence over every limit.
type Go struct {
	Depth    int           `json:"depth,omitempty"`
	Nodes    int64         `json:"nodes,omitempty"`
	MoveTime time.Duration `json:"movetime,omitempty"`
	Infinite bool          `json:"infinite,omitempty"`
}

// Stop asks the engine to end the current search as soon as possible.
type Stop struct{}

// SetOption changes an engine option. An empty Value is sent without the value clause (button options).
type SetOption struct {
	Name  string
	Value string
}

// IsReady asks the engine to answer readyok once all previous input is processed.
type IsReady struct{}

// Quit asks the engine process to exit.
type Quit struct{}

// UCI starts the protocol handshake.
type UCI struct{}

// NewGame tells the engine the next position belongs to a different game.
type NewGame struct{}

func (Position) isCommand()  {}
func (Go) isCommand()        {}
func (Stop) isCommand()      {}
func (SetOption) isCommand() {}
func (IsReady) isCommand()   {}
func (Quit) isCommand()      {}
func (UCI) isCommand()       {}
func (NewGame) isCommand()   {}

// CommandName returns a short stable label for a command, used in logs and metrics.
func CommandName(cmd Command) string {
	switch cmd.(type) {
	case Position:
		return "position"
	case Go:
		return "go"
	case Stop:
		return "stop"
	case SetOption:
		return "setoption"
	case IsReady:
		return "isready"
	case Quit:
		return "quit"
	case UCI:
		return "uci"
	case NewGame:
		return "ucinewgame"
	default:
		return "unknown"
	}
}
