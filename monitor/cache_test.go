package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitAndMiss(t *testing.T) {
	sink := &testSink{}
	c := &Cache[int]{Sink: sink}

	computes := 0
	compute := func() (int, error) {
		computes++
		return 42, nil
	}

	v, err := c.Get("answer", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.Get("answer", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, computes)

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "miss")
	assert.Contains(t, msgs[1], "hit")
}

func TestCacheExpiresEntries(t *testing.T) {
	c := &Cache[string]{TTL: 10 * time.Millisecond, Sink: &testSink{}}

	computes := 0
	compute := func() (string, error) {
		computes++
		return "v", nil
	}

	_, err := c.Get("k", compute)
	require.NoError(t, err)
	time.Sleep(25 * time.Millisecond)
	_, err = c.Get("k", compute)
	require.NoError(t, err)

	assert.Equal(t, 2, computes)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	c := &Cache[int]{Sink: &testSink{}}

	boom := errors.New("boom")
	_, err := c.Get("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.Get("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCacheInvalidate(t *testing.T) {
	c := &Cache[int]{Sink: &testSink{}}

	computes := 0
	compute := func() (int, error) {
		computes++
		return computes, nil
	}

	v, _ := c.Get("k", compute)
	assert.Equal(t, 1, v)
	c.Invalidate("k")
	v, _ = c.Get("k", compute)
	assert.Equal(t, 2, v)
}
