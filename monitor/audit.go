package monitor

import (
	"fmt"
	"os"
	"sync"

	"snoop"
	"snoop/internal/replay"
)

// Audit persists every observed event to a binary trace file that the
// CLI can replay later. It implements snoop.Observer; recording stops
// after the first write failure, which Err exposes.
type Audit struct {
	mu  sync.Mutex
	f   *os.File
	w   *replay.BinaryWriter
	err error
}

// NewAudit creates or truncates the trace file at path. Use the .strace
// extension so the replay reader picks the binary decoder.
func NewAudit(path string) (*Audit, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create audit trace: %w", err)
	}
	w, err := replay.NewBinaryWriter(f)
	if err != nil {
		f.Close() //nolint:errcheck // header write already failed
		return nil, err
	}
	return &Audit{f: f, w: w}, nil
}

// Observe implements snoop.Observer.
func (a *Audit) Observe(ev snoop.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil || a.w == nil {
		return
	}
	a.err = a.w.Append(ev)
}

// Err returns the first recording failure, if any.
func (a *Audit) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close flushes and closes the trace file. Observe calls after Close are
// dropped.
func (a *Audit) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f, a.w = nil, nil
	if err != nil {
		return fmt.Errorf("close audit trace: %w", err)
	}
	return nil
}
