package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snoop"
)

func callPair(id string, fn string, start time.Time, d time.Duration) (snoop.Event, snoop.Event) {
	call := snoop.Event{Time: start, Kind: snoop.KindCall, CallID: id, Func: fn}
	ret := snoop.Event{Time: start.Add(d), Kind: snoop.KindReturn, CallID: id, Func: fn}
	return call, ret
}

func TestThresholdAnnouncesSlowCalls(t *testing.T) {
	sink := &testSink{}
	th := NewThreshold(100 * time.Millisecond)
	th.Sink = sink

	now := time.Now()
	c1, r1 := callPair("fast", "quick", now, 10*time.Millisecond)
	c2, r2 := callPair("slow", "laggy", now, 250*time.Millisecond)
	for _, ev := range []snoop.Event{c1, r1, c2, r2} {
		th.Observe(ev)
	}

	assert.Equal(t, 2, th.Calls())
	assert.Equal(t, 1, th.Slow())

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, snoop.LevelWarning, events[0].Level)
	assert.Equal(t, "PERF", events[0].Prefix)
	assert.Contains(t, events[0].Message, "laggy")
}

func TestThresholdIgnoresUnmatchedReturns(t *testing.T) {
	sink := &testSink{}
	th := NewThreshold(time.Millisecond)
	th.Sink = sink

	th.Observe(snoop.Event{Time: time.Now(), Kind: snoop.KindReturn, CallID: "never-called"})

	assert.Equal(t, 0, th.Calls())
	assert.Empty(t, sink.all())
}

func TestThresholdCountsExceptionsAsCompletions(t *testing.T) {
	th := NewThreshold(0) // no budget, never announces
	th.Sink = &testSink{}

	now := time.Now()
	th.Observe(snoop.Event{Time: now, Kind: snoop.KindCall, CallID: "x", Func: "f"})
	th.Observe(snoop.Event{Time: now.Add(time.Millisecond), Kind: snoop.KindException, CallID: "x", Func: "f"})

	assert.Equal(t, 1, th.Calls())
	assert.Equal(t, 0, th.Slow())
	assert.Contains(t, th.Stats(), "1 calls")
}
