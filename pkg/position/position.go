// Package position is the chess-rules collaborator: it validates what is sent to the
// engine and turns the engine's coordinate moves into something a human reads.
package position

import (
	"fmt"
	"strings"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/notnil/chess"
)

// Position is a validated start position plus the moves played from it.
type Position struct {
	fen   string // empty for the standard start position
	moves []string
	pos   *chess.Position
}

// FromMoves plays moves from the standard start position.
// Moves may be coordinate (e2e4, e7e8q) or SAN (e4, Nf3, O-O).
func FromMoves(moves ...string) (*Position, error) {
	return build(&Position{pos: chess.NewGame().Position()}, moves)
}

// FromFEN plays moves from the position described by fen.
// An empty fen means the standard start position.
func FromFEN(fen string, moves ...string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return FromMoves(moves...)
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPosition, err)
	}
	return build(&Position{fen: fen, pos: chess.NewGame(opt).Position()}, moves)
}

// FromPGN replays the main line of a PGN game. A FEN tag sets the start position.
func FromPGN(pgn string) (*Position, error) {
	if strings.TrimSpace(pgn) == "" {
		return nil, fmt.Errorf("%w: empty PGN", domain.ErrInvalidPosition)
	}
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPosition, err)
	}
	game := chess.NewGame(opt)

	fen := ""
	if start := game.Positions()[0].String(); start != chess.NewGame().Position().String() {
		fen = start
	}
	moves := make([]string, 0, len(game.Moves()))
	for _, mv := range game.Moves() {
		moves = append(moves, mv.String())
	}
	return FromFEN(fen, moves...)
}

// Parse builds a position from the inputs of an analysis request: a PGN game or a FEN,
// then moves played on top of it. Giving both a PGN and a FEN is an error.
func Parse(fen, pgn string, moves ...string) (*Position, error) {
	if strings.TrimSpace(pgn) == "" {
		return FromFEN(fen, moves...)
	}
	if strings.TrimSpace(fen) != "" {
		return nil, fmt.Errorf("%w: give either a FEN or a PGN, not both", domain.ErrInvalidPosition)
	}
	p, err := FromPGN(pgn)
	if err != nil {
		return nil, err
	}
	return build(p, moves)
}

// FromCommand validates a position command built elsewhere.
func FromCommand(cmd domain.Position) (*Position, error) {
	return FromFEN(cmd.FEN, cmd.Moves...)
}

func build(p *Position, moves []string) (*Position, error) {
	for _, text := range moves {
		if strings.TrimSpace(text) == "" {
			continue
		}
		next, err := p.Play(text)
		if err != nil {
			return nil, err
		}
		p = next
	}
	return p, nil
}

// Play returns the position after move. The receiver is not modified.
func (p *Position) Play(move string) (*Position, error) {
	mv, err := p.parse(move)
	if err != nil {
		return nil, err
	}
	return &Position{
		fen:   p.fen,
		moves: append(append([]string(nil), p.moves...), mv.String()),
		pos:   p.pos.Update(mv),
	}, nil
}

func (p *Position) parse(text string) (*chess.Move, error) {
	text = strings.TrimSpace(text)
	for _, mv := range p.pos.ValidMoves() {
		if mv.String() == strings.ToLower(text) {
			return mv, nil
		}
	}
	if mv, err := (chess.AlgebraicNotation{}).Decode(p.pos, text); err == nil {
		// Re-resolve against the legal move list so check and capture tags are set.
		for _, legal := range p.pos.ValidMoves() {
			if legal.String() == mv.String() {
				return legal, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: illegal move %q in %s", domain.ErrInvalidPosition, text, p.pos.String())
}

// Replay returns the start position followed by the position after each move,
// ending with p itself.
func (p *Position) Replay() []*Position {
	start := &Position{fen: p.fen, pos: p.startPosition()}
	out := []*Position{start}
	cur := start
	for _, mv := range p.moves {
		next, err := cur.Play(mv)
		if err != nil {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}

func (p *Position) startPosition() *chess.Position {
	if p.fen == "" {
		return chess.NewGame().Position()
	}
	opt, err := chess.FEN(p.fen)
	if err != nil {
		return chess.NewGame().Position()
	}
	return chess.NewGame(opt).Position()
}

// Command returns the position command for the engine.
func (p *Position) Command() domain.Position {
	return domain.Position{FEN: p.fen, Moves: append([]string(nil), p.moves...)}
}

// Request builds an analysis request for this position.
func (p *Position) Request(multipv int, limits domain.Go) domain.AnalysisRequest {
	return domain.AnalysisRequest{Position: p.Command(), MultiPV: multipv, Limits: limits}
}

// Moves returns the moves played so far in coordinate notation.
func (p *Position) Moves() []string {
	return append([]string(nil), p.moves...)
}

// FEN returns the FEN of the current position.
func (p *Position) FEN() string {
	return p.pos.String()
}

// WhiteToMove reports whether White is to move in the current position.
func (p *Position) WhiteToMove() bool {
	return p.pos.Turn() == chess.White
}

// MoveNumber returns the full move number of the current position.
func (p *Position) MoveNumber() int {
	fields := strings.Fields(p.pos.String())
	if len(fields) < 6 {
		return 1
	}
	var n int
	if _, err := fmt.Sscanf(fields[5], "%d", &n); err != nil || n < 1 {
		return 1
	}
	return n
}

// SAN renders a principal variation given in coordinate notation.
// It stops at the first move that is not legal, so a stale line never panics.
func (p *Position) SAN(pv []string) []string {
	out := make([]string, 0, len(pv))
	cur := p.pos
	for _, text := range pv {
		var found *chess.Move
		for _, mv := range cur.ValidMoves() {
			if mv.String() == text {
				found = mv
				break
			}
		}
		if found == nil {
			break
		}
		out = append(out, chess.AlgebraicNotation{}.Encode(cur, found))
		cur = cur.Update(found)
	}
	return out
}

// FormatPV renders a principal variation in SAN with move numbers: "1. e4 e5 2. Nf3" or "3... Nc6 4. Bb5".
func (p *Position) FormatPV(pv []string) string {
	san := p.SAN(pv)
	if len(san) == 0 {
		return ""
	}

	var b strings.Builder
	number := p.MoveNumber()
	white := p.WhiteToMove()
	for i, mv := range san {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case white:
			fmt.Fprintf(&b, "%d. ", number)
		case i == 0:
			fmt.Fprintf(&b, "%d... ", number)
		}
		b.WriteString(mv)
		if !white {
			number++
		}
		white = !white
	}
	return b.String()
}

// WhitePerspective converts a side-to-move score into a score from White's point of view.
func (p *Position) WhitePerspective(s domain.Score) domain.Score {
	if p.WhiteToMove() {
		return s
	}
	return s.Negate()
}
