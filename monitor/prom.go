package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"snoop"
)

// Metrics exposes trace activity as Prometheus metrics: an event counter
// by kind and a histogram of completed call durations. Register it on a
// tracer with snoop.WithObservers.
type Metrics struct {
	events    *prometheus.CounterVec
	durations prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snoop_events_total",
			Help: "Trace events observed, by kind.",
		}, []string{"kind"}),
		durations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snoop_call_duration_seconds",
			Help:    "Wall time of completed traced calls.",
			Buckets: prometheus.DefBuckets,
		}),
		started: make(map[string]time.Time),
	}

	for _, c := range []prometheus.Collector{m.events, m.durations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Observe implements snoop.Observer.
func (m *Metrics) Observe(ev snoop.Event) {
	m.events.WithLabelValues(ev.Kind.String()).Inc()

	switch ev.Kind {
	case snoop.KindCall:
		m.mu.Lock()
		m.started[ev.CallID] = ev.Time
		m.mu.Unlock()
	case snoop.KindReturn, snoop.KindException:
		m.mu.Lock()
		start, ok := m.started[ev.CallID]
		if ok {
			delete(m.started, ev.CallID)
		}
		m.mu.Unlock()
		if ok {
			m.durations.Observe(ev.Time.Sub(start).Seconds())
		}
	}
}
