// Package stack tracks active traced calls per goroutine. Each goroutine
// owns an independent stack, so concurrent invocations never share or
// corrupt each other's snapshot lineage.
package stack

import (
	"sync"

	"snoop/internal/snapshot"
)

// Entry is one active traced invocation. The emitter stores the most
// recent snapshot here between execution steps; Depth is 1 for the
// outermost traced call on a goroutine.
type Entry struct {
	Depth int
	Last  *snapshot.Snapshot
}

// Tracker maintains one stack of entries per goroutine.
type Tracker struct {
	mu     sync.Mutex
	stacks map[uint64][]*Entry
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{stacks: make(map[uint64][]*Entry)}
}

// Enter pushes a new entry for gid and returns it. The returned entry is
// owned by exactly one call; nested calls on the same goroutine each get
// their own entry so reentrant tracing never mixes frames.
func (t *Tracker) Enter(gid uint64) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := &Entry{Depth: len(t.stacks[gid]) + 1}
	t.stacks[gid] = append(t.stacks[gid], e)
	return e
}

// Exit removes e from gid's stack. It tolerates out-of-order exits but the
// normal case is popping the top entry; the gid key is dropped once the
// stack drains so finished goroutines leave no residue.
func (t *Tracker) Exit(gid uint64, e *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stacks[gid]
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == e {
			s = append(s[:i], s[i+1:]...)
			break
		}
	}
	if len(s) == 0 {
		delete(t.stacks, gid)
	} else {
		t.stacks[gid] = s
	}
}

// Depth returns the number of active entries for gid.
func (t *Tracker) Depth(gid uint64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stacks[gid])
}

// Active returns the total number of live entries across all goroutines.
// Used by tests to assert push/pop parity.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.stacks {
		n += len(s)
	}
	return n
}
