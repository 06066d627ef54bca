package snoop

// MultiSink fans out trace events to multiple sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a MultiSink that emits to all provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit sends the event to all underlying sinks.
func (m *MultiSink) Emit(ev *Event) {
	for _, s := range m.sinks {
		s.Emit(ev)
	}
}

// Flush flushes all underlying sinks.
func (m *MultiSink) Flush() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying sinks.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Enabled returns true if any underlying sink is enabled.
func (m *MultiSink) Enabled() bool {
	for _, s := range m.sinks {
		if s.Enabled() {
			return true
		}
	}
	return false
}
