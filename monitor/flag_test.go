package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsDefaultOff(t *testing.T) {
	f := NewFlags(map[string]bool{"fast_path": true})
	assert.True(t, f.Enabled("fast_path"))
	assert.False(t, f.Enabled("unknown"))
}

func TestFlagsAnnounceTransitionsOnly(t *testing.T) {
	sink := &testSink{}
	f := NewFlags(nil)
	f.Sink = sink

	f.Set("beta", true)
	f.Set("beta", true) // no-op, already on
	f.Set("beta", false)

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "beta -> on")
	assert.Contains(t, msgs[1], "beta -> off")
}

func TestFlagsNamesSorted(t *testing.T) {
	f := NewFlags(map[string]bool{"zeta": false, "alpha": true, "mid": true})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, f.Names())
}
