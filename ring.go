package snoop

import (
	"io"
	"sync"
)

// RingSink keeps the last N events in memory (circular buffer). Useful for
// keeping a bounded trace alive in long-running processes and dumping it
// on demand, e.g. when a call finally trips a monitor threshold.
type RingSink struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	min      Level
}

// NewRingSink creates a RingSink with the given capacity.
func NewRingSink(capacity int, min Level) *RingSink {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingSink{
		events:   make([]Event, capacity),
		capacity: capacity,
		min:      min,
	}
}

// Emit adds an event to the ring buffer.
func (s *RingSink) Emit(ev *Event) {
	if ev == nil || ev.Level < s.min {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[s.head] = *ev
	s.head = (s.head + 1) % s.capacity
	if s.head == 0 {
		s.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (s *RingSink) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.full {
		result := make([]Event, s.head)
		copy(result, s.events[:s.head])
		return result
	}

	// Wrapped: [head:capacity] + [0:head]
	result := make([]Event, s.capacity)
	copy(result, s.events[s.head:])
	copy(result[s.capacity-s.head:], s.events[:s.head])
	return result
}

// Dump writes all buffered events to w in the specified format.
func (s *RingSink) Dump(w io.Writer, format Format) error {
	for _, ev := range s.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op for RingSink since everything is in memory.
func (s *RingSink) Flush() error { return nil }

// Close is a no-op for RingSink.
func (s *RingSink) Close() error { return nil }

// Enabled returns true.
func (s *RingSink) Enabled() bool { return true }
