package snoop

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"snoop/internal/render"
	"snoop/internal/stack"
)

var (
	defaultMu   sync.RWMutex
	defaultSink Sink
)

// Default returns the process-wide sink used by tracers without an
// explicit output and by Show. It is a stderr text sink, initialized once
// on first use.
func Default() Sink {
	defaultMu.RLock()
	s := defaultSink
	defaultMu.RUnlock()
	if s != nil {
		return s
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSink == nil {
		defaultSink = NewStreamSink(os.Stderr, FormatText, LevelDebug)
	}
	return defaultSink
}

// SetDefault replaces the process-wide default sink. Intended for the
// outermost composition boundary (main), not for libraries.
func SetDefault(s Sink) {
	if s == nil {
		s = Nop
	}
	defaultMu.Lock()
	defaultSink = s
	defaultMu.Unlock()
}

// Show announces one or more values at info level through the default
// sink. Strings pass through verbatim, everything else is rendered, and
// the pieces are joined with spaces:
//
//	snoop.Show("cache miss for", key)
//
// Show bypasses the tracing state machine entirely: no diffing, no call
// stack interaction.
func Show(vals ...any) {
	announce(Default(), LevelInfo, "", vals)
}

// ShowAt is Show with an explicit level and prefix.
func ShowAt(level Level, prefix string, vals ...any) {
	announce(Default(), level, prefix, vals)
}

// ShowTo announces to a specific sink instead of the process default.
func ShowTo(sink Sink, level Level, prefix string, vals ...any) {
	announce(sink, level, prefix, vals)
}

func announce(sink Sink, level Level, prefix string, vals []any) {
	if sink == nil || !sink.Enabled() {
		return
	}

	r := render.Renderer{}
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, r.Render(v))
	}

	ev := &Event{
		Time:    time.Now(),
		Seq:     NextSeq(),
		Kind:    KindAnnounce,
		Level:   level,
		Prefix:  prefix,
		GID:     stack.GoroutineID(),
		Message: strings.Join(parts, " "),
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		ev.File, ev.Line = filepath.Base(file), line
	}
	sink.Emit(ev)
}
