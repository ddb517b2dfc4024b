package observability

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/benwyrosdick/lazychess/internal/logging"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }

	h := m.Hooks()
	h.OnCommand(domain.Position{})
	h.OnCommand(domain.Go{Infinite: true})
	h.OnStateChange(domain.StateIdle, domain.StateAnalyzing)
	h.OnMessage(domain.SearchInfo{Depth: 17, MultiPV: 1})
	h.OnMessage(domain.Unrecognized{Line: "x"})
	h.OnCommand(domain.Stop{})
	h.OnStateChange(domain.StateAnalyzing, domain.StateStopping)
	clock = clock.Add(1500 * time.Millisecond)
	h.OnMessage(domain.BestMove{Move: "e2e4"})
	h.OnStateChange(domain.StateStopping, domain.StateIdle)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("go")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("stop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues("info")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues("unrecognized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.epochs))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.depth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.state.WithLabelValues("idle")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.state.WithLabelValues("stopping")))

	assert.Equal(t, 1, testutil.CollectAndCount(m.epochDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() != "lazychess_epoch_duration_seconds" {
			continue
		}
		found = true
		hist := f.GetMetric()[0].GetHistogram()
		assert.Equal(t, uint64(1), hist.GetSampleCount())
		assert.InDelta(t, 1.5, hist.GetSampleSum(), 1e-9)
	}
	assert.True(t, found, "histogram is registered")
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	h := LoggingHooks(logging.New(slog.LevelDebug, logging.WithWriter(&buf)))

	h.OnCommand(domain.IsReady{})
	h.OnMessage(domain.BestMove{Move: "e2e4"})
	h.OnStateChange(domain.StateStopping, domain.StateIdle)

	out := buf.String()
	assert.Contains(t, out, "command=isready")
	assert.Contains(t, out, "bestmove=e2e4")
	assert.Contains(t, out, "to=idle")
}
