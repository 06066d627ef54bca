package monitor

import (
	"sync"

	"snoop"
)

// testSink buffers emitted events for assertions.
type testSink struct {
	mu     sync.Mutex
	events []snoop.Event
}

func (s *testSink) Emit(ev *snoop.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
}

func (s *testSink) Flush() error  { return nil }
func (s *testSink) Close() error  { return nil }
func (s *testSink) Enabled() bool { return true }

func (s *testSink) all() []snoop.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]snoop.Event(nil), s.events...)
}

func (s *testSink) messages() []string {
	var out []string
	for _, ev := range s.all() {
		out = append(out, ev.Message)
	}
	return out
}
