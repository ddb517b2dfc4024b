// Package observability turns session lifecycle hooks into Prometheus metrics and log lines.
package observability

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by a session.
type Metrics struct {
	commands      *prometheus.CounterVec
	messages      *prometheus.CounterVec
	epochs        prometheus.Counter
	state         *prometheus.GaugeVec
	depth         prometheus.Gauge
	epochDuration prometheus.Histogram

	mu           sync.Mutex
	epochStarted time.Time
	now          func() time.Time
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazychess_commands_total",
				Help: "Total number of UCI commands sent to the engine",
			},
			[]string{"command"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazychess_messages_total",
				Help: "Total number of engine messages drained, by kind",
			},
			[]string{"kind"},
		),
		epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lazychess_epochs_total",
			Help: "Total number of searches started",
		}),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lazychess_session_state",
				Help: "1 for the current session state, 0 otherwise",
			},
			[]string{"state"},
		),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lazychess_search_depth",
			Help: "Depth of the latest search update",
		}),
		epochDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lazychess_epoch_duration_seconds",
			Help:    "Duration of searches, from go to bestmove",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		now: time.Now,
	}

	for _, c := range []prometheus.Collector{m.commands, m.messages, m.epochs, m.state, m.depth, m.epochDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	m.setState(domain.StateIdle)
	return m, nil
}

// Hooks returns session hooks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCommand: func(cmd domain.Command) {
			m.commands.WithLabelValues(domain.CommandName(cmd)).Inc()
		},
		OnMessage: func(msg domain.Message) {
			m.messages.WithLabelValues(domain.MessageKind(msg)).Inc()
			if info, ok := msg.(domain.SearchInfo); ok {
				m.depth.Set(float64(info.Depth))
			}
		},
		OnStateChange: func(from, to domain.SessionState) {
			m.setState(to)

			m.mu.Lock()
			defer m.mu.Unlock()
			switch {
			case to == domain.StateAnalyzing:
				m.epochs.Inc()
				m.epochStarted = m.now()
			case (to == domain.StateIdle || to == domain.StateTerminated) && !m.epochStarted.IsZero():
				m.epochDuration.Observe(m.now().Sub(m.epochStarted).Seconds())
				m.epochStarted = time.Time{}
			}
		},
	}
}

func (m *Metrics) setState(current domain.SessionState) {
	for _, s := range domain.AllStates {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
}

// LoggingHooks logs commands and state changes at debug level, and engine loss as an error.
func LoggingHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnCommand: func(cmd domain.Command) {
			logger.Debug("command", "command", domain.CommandName(cmd))
		},
		OnMessage: func(msg domain.Message) {
			switch m := msg.(type) {
			case domain.BestMove:
				logger.Info("search finished", "bestmove", m.Move, "ponder", m.Ponder)
			case domain.EngineLost:
				logger.Error("engine lost", "err", m.Err)
			}
		},
		OnStateChange: func(from, to domain.SessionState) {
			logger.Debug("state", "from", from.String(), "to", to.String())
		},
	}
}
