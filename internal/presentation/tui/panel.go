// Package tui renders analysis for a terminal: a colored panel for live output and
// markdown for reports.
package tui

import (
	"fmt"
	"strings"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/benwyrosdick/lazychess/pkg/session"
	"github.com/muesli/termenv"
)

const (
	placeholder = "---"
	maxPVMoves  = 8
)

// FormatNodes abbreviates a node count: 950, 1.2K, 3.4M, 1.1B.
func FormatNodes(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Panel renders runner statuses as text.
type Panel struct {
	profile termenv.Profile
	depth   int
}

// NewPanel creates a panel. targetDepth is shown next to the current depth; 0 hides it.
func NewPanel(p termenv.Profile, targetDepth int) *Panel {
	return &Panel{profile: p, depth: targetDepth}
}

// FormatLine renders one analysis line: "1.  +0.34 d20  1. e4 e5 2. Nf3".
// Scores are shown from White's point of view.
func (p *Panel) FormatLine(pos *position.Position, line domain.AnalysisLine) string {
	score := line.Score
	pv := strings.Join(line.PV, " ")
	if pos != nil {
		score = pos.WhitePerspective(score)
		pv = pos.FormatPV(truncate(line.PV, maxPVMoves))
	}
	return fmt.Sprintf("%s %s %s  %s",
		p.dim(fmt.Sprintf("%d.", line.Index)),
		p.score(score),
		p.dim(fmt.Sprintf("d%d", line.Depth)),
		pv,
	)
}

// Render renders the whole panel for st.
func (p *Panel) Render(st runner.Status) string {
	pos, _ := position.FromCommand(st.Position)
	snap := st.Analysis

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.title(st), p.dim(engineName(st.Engine)))

	depth := fmt.Sprintf("%d", snap.Depth())
	if p.depth > 0 {
		depth = fmt.Sprintf("%d/%d", snap.Depth(), p.depth)
	}
	fmt.Fprintf(&b, "%s %s\n", p.dim("Depth:"), depth)

	if best, ok := snap.Best(); ok {
		score := best.Score
		if pos != nil {
			score = pos.WhitePerspective(score)
		}
		fmt.Fprintf(&b, "%s %s\n", p.dim("Eval:"), p.score(score))
	} else {
		fmt.Fprintf(&b, "%s %s\n", p.dim("Eval:"), p.dim(placeholder))
	}

	b.WriteString("\n")
	for _, line := range snap.Lines {
		b.WriteString(p.FormatLine(pos, line))
		b.WriteString("\n")
	}
	for i := len(snap.Lines); i < st.MultiPV; i++ {
		fmt.Fprintf(&b, "%s %s\n", p.dim(fmt.Sprintf("%d.", i+1)), p.dim(placeholder))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %s %s %s", p.dim("Nodes:"), counter(snap.Nodes), p.dim("NPS:"), counter(snap.NPS))
	if snap.HashFull > 0 {
		fmt.Fprintf(&b, " %s %.1f%%", p.dim("Hash:"), float64(snap.HashFull)/10)
	}
	b.WriteString("\n")

	if snap.BestMove != "" {
		move := snap.BestMove
		if pos != nil {
			if san := pos.SAN([]string{snap.BestMove}); len(san) == 1 {
				move = san[0]
			}
		}
		fmt.Fprintf(&b, "%s %s\n", p.dim("Best move:"), p.profile.String(move).Bold())
	}
	return b.String()
}

func (p *Panel) title(st runner.Status) string {
	text := "Analysis"
	switch st.State {
	case domain.StateIdle:
		text = "Analysis (stopped)"
	case domain.StateStopping:
		text = "Analysis (stopping)"
	case domain.StateTerminated:
		text = "Analysis (engine lost)"
	}
	return p.profile.String(text).Foreground(p.profile.Color("6")).Bold().String()
}

// score colors like an evaluation bar: mates yellow, a clear edge green or red.
func (p *Panel) score(s domain.Score) string {
	text := fmt.Sprintf("%6s", s.String())
	color := "7"
	switch {
	case s.IsMate():
		color = "3"
	case s.Value > 100:
		color = "2"
	case s.Value < -100:
		color = "1"
	}
	return p.profile.String(text).Foreground(p.profile.Color(color)).Bold().String()
}

func (p *Panel) dim(text string) string {
	return p.profile.String(text).Foreground(p.profile.Color("8")).String()
}

func counter(n int64) string {
	if n <= 0 {
		return placeholder
	}
	return FormatNodes(n)
}

func engineName(id session.Identity) string {
	if id.Name == "" {
		return ""
	}
	return "[" + id.Name + "]"
}

func truncate(pv []string, n int) []string {
	if len(pv) > n {
		return pv[:n]
	}
	return pv
}
