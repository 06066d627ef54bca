package monitor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snoop"
)

func TestMetricsCountEventsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	now := time.Now()
	m.Observe(snoop.Event{Time: now, Kind: snoop.KindCall, CallID: "c1"})
	m.Observe(snoop.Event{Time: now, Kind: snoop.KindLine, CallID: "c1"})
	m.Observe(snoop.Event{Time: now, Kind: snoop.KindLine, CallID: "c1"})
	m.Observe(snoop.Event{Time: now.Add(time.Millisecond), Kind: snoop.KindReturn, CallID: "c1"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("call")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("line")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("return")))
}

func TestMetricsObserveDurationOnlyForMatchedCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	now := time.Now()
	m.Observe(snoop.Event{Time: now, Kind: snoop.KindCall, CallID: "c1"})
	m.Observe(snoop.Event{Time: now.Add(5 * time.Millisecond), Kind: snoop.KindException, CallID: "c1"})
	m.Observe(snoop.Event{Time: now, Kind: snoop.KindReturn, CallID: "orphan"})

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "snoop_call_duration_seconds" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), samples)

	// The exception closed the measurement, so its id is forgotten.
	m.mu.Lock()
	assert.Empty(t, m.started)
	m.mu.Unlock()
}

func TestMetricsRejectDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
