package monitor

import (
	"sort"
	"sync"

	"snoop"
)

// Flags is a concurrency-safe feature flag set. Flips are announced so
// they land in the trace next to the behavior they change.
type Flags struct {
	Prefix string     // announce prefix (default "FLAG")
	Sink   snoop.Sink // announce destination; nil means the process default

	mu  sync.RWMutex
	set map[string]bool
}

// NewFlags creates a flag set with the given initial state.
func NewFlags(initial map[string]bool) *Flags {
	set := make(map[string]bool, len(initial))
	for k, v := range initial {
		set[k] = v
	}
	return &Flags{set: set}
}

// Enabled reports whether name is on. Unknown flags are off.
func (f *Flags) Enabled(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.set[name]
}

// Set flips name to on and announces the transition. Setting a flag to
// its current value announces nothing.
func (f *Flags) Set(name string, on bool) {
	prefix := f.Prefix
	if prefix == "" {
		prefix = "FLAG"
	}

	f.mu.Lock()
	if f.set == nil {
		f.set = make(map[string]bool)
	}
	prev, known := f.set[name]
	f.set[name] = on
	f.mu.Unlock()

	if known && prev == on {
		return
	}
	state := "off"
	if on {
		state = "on"
	}
	snoop.ShowTo(f.sink(), snoop.LevelInfo, prefix, name, "->", state)
}

// Names returns all known flag names, sorted.
func (f *Flags) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.set))
	for k := range f.set {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (f *Flags) sink() snoop.Sink {
	if f.Sink != nil {
		return f.Sink
	}
	return snoop.Default()
}
