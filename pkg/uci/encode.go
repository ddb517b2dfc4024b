package uci

import (
	"strconv"
	"strings"

	"github.com/benwyrosdick/lazychess/pkg/domain"
)

// Encode renders a command as one newline-terminated UCI line.
func Encode(cmd domain.Command) string {
	var b strings.Builder

	switch c := cmd.(type) {
	case domain.Position:
		if c.FEN == "" {
			b.WriteString("position startpos")
		} else {
			b.WriteString("position fen ")
			b.WriteString(strings.TrimSpace(c.FEN))
		}
		if len(c.Moves) > 0 {
			b.WriteString(" moves ")
			b.WriteString(strings.Join(c.Moves, " "))
		}
	case domain.Go:
		b.WriteString("go")
		if c.Infinite {
			b.WriteString(" infinite")
			break
		}
		if c.Depth > 0 {
			b.WriteString(" depth ")
			b.WriteString(strconv.Itoa(c.Depth))
		}
		if c.Nodes > 0 {
			b.WriteString(" nodes ")
			b.WriteString(strconv.FormatInt(c.Nodes, 10))
		}
		if c.MoveTime.Milliseconds() > 0 {
			b.WriteString(" movetime ")
			b.WriteString(strconv.FormatInt(c.MoveTime.Milliseconds(), 10))
		}
	case domain.Stop:
		b.WriteString("stop")
	case domain.SetOption:
		b.WriteString("setoption name ")
		b.WriteString(c.Name)
		if c.Value != "" {
			b.WriteString(" value ")
			b.WriteString(c.Value)
		}
	case domain.IsReady:
		b.WriteString("isready")
	case domain.Quit:
		b.WriteString("quit")
	case domain.UCI:
		b.WriteString("uci")
	case domain.NewGame:
		b.WriteString("ucinewgame")
	}

	b.WriteByte('\n')
	return b.String()
}
