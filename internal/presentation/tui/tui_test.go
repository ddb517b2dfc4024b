package tui

import (
	"bytes"
	"testing"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
	"github.com/benwyrosdick/lazychess/pkg/runner"
	"github.com/benwyrosdick/lazychess/pkg/session"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNodes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1_234, "1.2K"},
		{3_400_000, "3.4M"},
		{1_100_000_000, "1.1B"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNodes(tt.n))
	}
}

func sampleStatus() runner.Status {
	return runner.Status{
		State:    domain.StateIdle,
		Engine:   session.Identity{Name: "Stockfish 16"},
		Position: domain.Position{Moves: []string{"e2e4"}},
		MultiPV:  3,
		Analysis: domain.Snapshot{
			Epoch: 1,
			Lines: []domain.AnalysisLine{
				{Index: 1, Depth: 20, Score: domain.Centipawns(-30), PV: []string{"e7e5", "g1f3"}},
				{Index: 2, Depth: 19, Score: domain.MateIn(-4), PV: []string{"c7c5"}},
			},
			BestMove: "e7e5",
			Nodes:    3_400_000,
			NPS:      1_200_000,
			HashFull: 125,
			Complete: true,
		},
	}
}

func TestPanel_FormatLine(t *testing.T) {
	pos, err := position.FromMoves("e2e4")
	require.NoError(t, err)

	p := NewPanel(termenv.Ascii, 0)
	line := p.FormatLine(pos, domain.AnalysisLine{
		Index: 1, Depth: 20, Score: domain.Centipawns(-30), PV: []string{"e7e5", "g1f3"},
	})

	assert.Equal(t, "1.  +0.30 d20  1... e5 2. Nf3", line)
}

func TestPanel_FormatLine_WithoutPosition(t *testing.T) {
	p := NewPanel(termenv.Ascii, 0)
	line := p.FormatLine(nil, domain.AnalysisLine{Index: 2, Depth: 5, Score: domain.MateIn(3), PV: []string{"h5f7"}})

	assert.Equal(t, "2.     M3 d5  h5f7", line)
}

func TestPanel_Render(t *testing.T) {
	out := NewPanel(termenv.Ascii, 24).Render(sampleStatus())

	assert.Contains(t, out, "Analysis (stopped) [Stockfish 16]")
	assert.Contains(t, out, "Depth: 20/24")
	assert.Contains(t, out, "Eval:  +0.30")
	assert.Contains(t, out, "1... e5 2. Nf3")
	assert.Contains(t, out, "M4", "black mates, shown from White's side")
	assert.Contains(t, out, "3. ---")
	assert.Contains(t, out, "Nodes: 3.4M NPS: 1.2M Hash: 12.5%")
	assert.Contains(t, out, "Best move: e5")
	assert.NotContains(t, out, "\x1b[", "ascii profile has no escapes")
}

func TestPanel_Render_Empty(t *testing.T) {
	out := NewPanel(termenv.Ascii, 0).Render(runner.Status{State: domain.StateAnalyzing, MultiPV: 1})

	assert.Contains(t, out, "Eval: ---")
	assert.Contains(t, out, "1. ---")
	assert.Contains(t, out, "Nodes: --- NPS: ---")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleStatus())

	assert.Contains(t, md, "## Analysis by Stockfish 16")
	assert.Contains(t, md, "| 1 | +0.30 | 20 | 1... e5 2. Nf3 |")
	assert.Contains(t, md, "| 2 | M4 | 19 | 1... c5 |")
	assert.Contains(t, md, "**Best move:** e5")
	assert.Contains(t, md, "_3.4M nodes at 1.2M nps_")
}

func TestMarkdown_NoLines(t *testing.T) {
	md := Markdown(runner.Status{})
	assert.Contains(t, md, "_No analysis yet._")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)

	assert.Contains(t, buf.String(), "|___/")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(false, 80)
	require.NoError(t, err)

	out, err := render("## Analysis\n\n**Best move:** e4\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Best move:")
	assert.Contains(t, out, "e4")
}
