package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snoop"
)

func TestRetrierSucceedsAfterFailures(t *testing.T) {
	sink := &testSink{}
	r := Retrier{Attempts: 3, Sink: sink}

	calls := 0
	err := r.Do(context.Background(), "fetch", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	events := sink.all()
	require.Len(t, events, 3) // two failures, one success note
	assert.Equal(t, snoop.LevelWarning, events[0].Level)
	assert.Equal(t, snoop.LevelSuccess, events[2].Level)
	assert.Contains(t, events[2].Message, "attempt 3")
}

func TestRetrierExhaustsAttempts(t *testing.T) {
	sink := &testSink{}
	r := Retrier{Attempts: 2, Sink: sink}

	base := errors.New("boom")
	err := r.Do(context.Background(), "flaky", func(context.Context) error { return base })

	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "2 attempts")
	assert.Len(t, sink.all(), 2)
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := Retrier{Attempts: 5, Sink: &testSink{}}
	calls := 0
	err := r.Do(ctx, "never", func(context.Context) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestRetrierZeroAttemptsBehavesAsOne(t *testing.T) {
	r := Retrier{Sink: &testSink{}}
	calls := 0
	err := r.Do(context.Background(), "once", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
