package snapshot

// Op classifies how a variable moved between two snapshots.
type Op uint8

const (
	OpAdded Op = iota + 1 // name absent before, present now
	OpChanged
	OpUnchanged
	OpRemoved // name present before, absent now
)

// String returns the string representation of Op.
func (o Op) String() string {
	switch o {
	case OpAdded:
		return "added"
	case OpChanged:
		return "changed"
	case OpUnchanged:
		return "unchanged"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one reportable variable transition. Old and New carry rendered
// values; for OpAdded Old is empty, for OpRemoved New is empty.
type Change struct {
	Name string
	Op   Op
	Old  string
	New  string
}

// Diff compares prev against cur and reports one Change per variable.
// A nil prev means a fresh frame: every current binding is OpAdded (this is
// how call parameters surface on the CALL event). Equality is decided on
// the rendered representation, so a rebind that renders identically is
// OpUnchanged. Output order follows first appearance in cur, with removed
// names appended in their prev order.
func Diff(prev, cur *Snapshot) []Change {
	if cur == nil {
		cur = New()
	}

	changes := make([]Change, 0, cur.Len())
	for _, name := range cur.names {
		newVal := cur.values[name]
		if prev == nil {
			changes = append(changes, Change{Name: name, Op: OpAdded, New: newVal})
			continue
		}
		oldVal, ok := prev.values[name]
		switch {
		case !ok:
			changes = append(changes, Change{Name: name, Op: OpAdded, New: newVal})
		case oldVal != newVal:
			changes = append(changes, Change{Name: name, Op: OpChanged, Old: oldVal, New: newVal})
		default:
			changes = append(changes, Change{Name: name, Op: OpUnchanged, Old: oldVal, New: newVal})
		}
	}

	if prev != nil {
		for _, name := range prev.names {
			if _, ok := cur.values[name]; !ok {
				changes = append(changes, Change{Name: name, Op: OpRemoved, Old: prev.values[name]})
			}
		}
	}

	return changes
}

// WithoutUnchanged filters cs down to the entries the default report policy
// shows. The slice is reused when nothing is dropped.
func WithoutUnchanged(cs []Change) []Change {
	keep := cs[:0]
	for _, c := range cs {
		if c.Op != OpUnchanged {
			keep = append(keep, c)
		}
	}
	return keep
}
