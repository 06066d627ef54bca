package snoop

// Sink is the output destination for trace events. Implementations must be
// goroutine-safe and must deliver each event's rendering as one atomic
// unit; concurrent emitters may interleave events but never bytes.
//
// Emit never returns an error and must never panic: a formatting or write
// failure is recovered inside the sink so that instrumentation failure
// cannot crash or alter the traced program.
type Sink interface {
	// Emit records a trace event.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Enabled reports whether the sink accepts events at all.
	Enabled() bool
}
