package snoop

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindCall marks entry into a traced invocation.
	KindCall Kind = iota + 1
	// KindLine marks one observed execution step inside a traced call.
	KindLine
	// KindReturn marks a normal exit from a traced invocation.
	KindReturn
	// KindException marks an error or panic propagating out of a traced call.
	KindException
	// KindAnnounce is an ad-hoc value announcement outside any traced call.
	KindAnnounce
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindLine:
		return "line"
	case KindReturn:
		return "return"
	case KindException:
		return "exception"
	case KindAnnounce:
		return "announce"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "call":
		return KindCall, nil
	case "line":
		return KindLine, nil
	case "return":
		return KindReturn, nil
	case "exception":
		return KindException, nil
	case "announce":
		return KindAnnounce, nil
	default:
		return 0, fmt.Errorf("invalid event kind: %q", s)
	}
}

// ChangeOp classifies how a variable moved between two execution steps.
type ChangeOp uint8

const (
	Added ChangeOp = iota + 1
	Changed
	Unchanged
	Removed
)

// String returns the string representation of ChangeOp.
func (o ChangeOp) String() string {
	switch o {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one reported variable transition. Old and New are rendered
// value representations; Old is empty for Added, New is empty for Removed.
type Change struct {
	Name string
	Op   ChangeOp
	Old  string
	New  string
}

// Event represents a single trace event. Events are consumed once by the
// configured sink (and any registered observers) and then discarded.
type Event struct {
	Time    time.Time // wall-clock timestamp
	Seq     uint64    // global sequence number (monotonic)
	Kind    Kind      // event kind
	Level   Level     // severity for sink gating and colorization
	Prefix  string    // optional caller-supplied label
	CallID  string    // unique per traced invocation; empty for announcements
	GID     uint64    // goroutine that triggered the event
	Depth   int       // nesting depth, 1 for the outermost traced call
	File    string    // source file (basename)
	Line    int       // source line
	Func    string    // traced function name
	Message string    // announcement payload
	Changes []Change  // variable transitions to display
}

var globalSeq uint64

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return atomic.AddUint64(&globalSeq, 1)
}
