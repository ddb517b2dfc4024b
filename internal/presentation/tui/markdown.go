package tui

import (
	"fmt"
	"strings"

	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
)

// Markdown renders a finished analysis as a markdown report.
func Markdown(st runner.Status) string {
	pos, _ := position.FromCommand(st.Position)
	snap := st.Analysis

	var b strings.Builder
	b.WriteString("## Analysis")
	if st.Engine.Name != "" {
		fmt.Fprintf(&b, " by %s", st.Engine.Name)
	}
	b.WriteString("\n\n")

	if pos != nil {
		fmt.Fprintf(&b, "**Position:** `%s`\n\n", pos.FEN())
	}

	if len(snap.Lines) == 0 {
		b.WriteString("_No analysis yet._\n")
		return b.String()
	}

	b.WriteString("| # | Eval | Depth | Line |\n")
	b.WriteString("|---|------|-------|------|\n")
	for _, line := range snap.Lines {
		score := line.Score
		pv := strings.Join(line.PV, " ")
		if pos != nil {
			score = pos.WhitePerspective(score)
			pv = pos.FormatPV(line.PV)
		}
		fmt.Fprintf(&b, "| %d | %s | %d | %s |\n", line.Index, score, line.Depth, pv)
	}

	if snap.BestMove != "" {
		move := snap.BestMove
		if pos != nil {
			if san := pos.SAN([]string{move}); len(san) == 1 {
				move = san[0]
			}
		}
		fmt.Fprintf(&b, "\n**Best move:** %s\n", move)
	}
	if snap.Nodes > 0 {
		fmt.Fprintf(&b, "\n_%s nodes", FormatNodes(snap.Nodes))
		if snap.NPS > 0 {
			fmt.Fprintf(&b, " at %s nps", FormatNodes(snap.NPS))
		}
		b.WriteString("_\n")
	}
	return b.String()
}
