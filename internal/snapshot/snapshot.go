// Package snapshot holds immutable variable-binding captures and computes
// ordered diffs between consecutive captures of the same frame.
package snapshot

// Snapshot is an insertion-ordered mapping from variable name to its
// rendered value. It is built once per execution step and never mutated
// afterwards; the emitter compares consecutive snapshots by rendered form.
type Snapshot struct {
	names  []string
	values map[string]string
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{values: make(map[string]string)}
}

// Set binds name to its rendered value. First-time names keep their
// insertion position; rebinding an existing name keeps the original slot
// so diff ordering stays stable.
func (s *Snapshot) Set(name, rendered string) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = rendered
}

// Get returns the rendered value for name.
func (s *Snapshot) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns the variable names in first-appearance order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of bound names.
func (s *Snapshot) Len() int { return len(s.names) }
