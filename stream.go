package snoop

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// StreamSink writes events immediately to an io.Writer. Writes are
// serialized by a mutex so concurrent goroutines never interleave bytes
// of different events. Write failures are reported once to stderr and
// otherwise dropped; tracing must not disturb the traced program.
type StreamSink struct {
	mu       sync.Mutex
	w        io.Writer
	format   Format
	min      Level
	colorize bool
	failed   bool
}

// NewStreamSink creates a StreamSink. Events below min are dropped. Color
// is enabled automatically for text output on a terminal.
func NewStreamSink(w io.Writer, format Format, min Level) *StreamSink {
	s := &StreamSink{w: w, format: format, min: min}
	if format == FormatText {
		if f, ok := w.(*os.File); ok {
			s.colorize = term.IsTerminal(int(f.Fd()))
		}
	}
	return s
}

// SetColor overrides terminal auto-detection.
func (s *StreamSink) SetColor(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colorize = on && s.format == FormatText
}

var levelColors = map[Level]*color.Color{
	LevelDebug:   color.New(color.FgCyan),
	LevelInfo:    color.New(color.FgWhite),
	LevelSuccess: color.New(color.FgGreen),
	LevelWarning: color.New(color.FgYellow),
	LevelError:   color.New(color.FgRed, color.Bold),
}

func init() {
	// Colors are applied only when the sink decided the destination is a
	// terminal; the global NO_COLOR heuristic must not second-guess that.
	for _, c := range levelColors {
		c.EnableColor()
	}
}

// Emit formats and writes one event as an atomic unit.
func (s *StreamSink) Emit(ev *Event) {
	if ev == nil || ev.Level < s.min {
		return
	}

	data := FormatEvent(ev, s.format)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colorize {
		if c, ok := levelColors[ev.Level]; ok {
			data = []byte(c.Sprint(string(data[:len(data)-1])) + "\n")
		}
	}

	if _, err := s.w.Write(data); err != nil {
		// Report the first failure through the fallback channel, then go
		// silent; the engine never retries and never propagates.
		if !s.failed {
			s.failed = true
			fmt.Fprintf(os.Stderr, "snoop: trace write failed: %v\n", err)
		}
	}
}

// Flush ensures all buffered data is written.
// For StreamSink this is a no-op since we write immediately.
func (s *StreamSink) Flush() error {
	if flusher, ok := s.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (s *StreamSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if closer, ok := s.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Enabled returns true.
func (s *StreamSink) Enabled() bool { return true }
