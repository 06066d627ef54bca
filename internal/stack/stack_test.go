package stack

import (
	"sync"
	"testing"
)

func TestEnterExitParity(t *testing.T) {
	tr := NewTracker()
	gid := GoroutineID()

	a := tr.Enter(gid)
	b := tr.Enter(gid)
	if a.Depth != 1 || b.Depth != 2 {
		t.Fatalf("depths = %d, %d; want 1, 2", a.Depth, b.Depth)
	}

	tr.Exit(gid, b)
	tr.Exit(gid, a)
	if tr.Active() != 0 {
		t.Fatalf("entries leaked: %d active", tr.Active())
	}
	if tr.Depth(gid) != 0 {
		t.Fatalf("depth should be 0 after exit, got %d", tr.Depth(gid))
	}
}

func TestExitIsIdempotentPerEntry(t *testing.T) {
	tr := NewTracker()
	gid := GoroutineID()

	a := tr.Enter(gid)
	b := tr.Enter(gid)
	tr.Exit(gid, a) // out of order
	tr.Exit(gid, a) // double exit must not touch b
	if tr.Depth(gid) != 1 {
		t.Fatalf("depth = %d, want 1", tr.Depth(gid))
	}
	tr.Exit(gid, b)
	if tr.Active() != 0 {
		t.Fatalf("entries leaked")
	}
}

func TestGoroutinesGetIndependentStacks(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	depths := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gid := GoroutineID()
			e := tr.Enter(gid)
			depths[i] = e.Depth
			tr.Exit(gid, e)
		}(i)
	}
	wg.Wait()

	for i, d := range depths {
		if d != 1 {
			t.Fatalf("goroutine %d saw depth %d, want 1 (stacks shared?)", i, d)
		}
	}
	if tr.Active() != 0 {
		t.Fatalf("entries leaked")
	}
}

func TestGoroutineIDStable(t *testing.T) {
	if GoroutineID() != GoroutineID() {
		t.Fatalf("goroutine id changed within one goroutine")
	}
	done := make(chan uint64, 1)
	go func() { done <- GoroutineID() }()
	if other := <-done; other == GoroutineID() {
		t.Fatalf("distinct goroutines reported the same id")
	}
}
