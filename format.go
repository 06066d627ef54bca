package snoop

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatText   Format = iota // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatText, fmt.Errorf("invalid format: %q (expected: text|ndjson)", s)
	}
}

// FormatEvent formats an event according to the specified format. The
// returned slice always ends with a newline so a sink can write it as one
// atomic unit.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	default:
		return formatText(ev)
	}
}

// kindMarker returns the one-rune marker used in text output.
func kindMarker(k Kind) string {
	switch k {
	case KindCall:
		return "→" // →
	case KindLine:
		return "·" // ·
	case KindReturn:
		return "←" // ←
	case KindException:
		return "✗" // ✗
	case KindAnnounce:
		return "•" // •
	default:
		return "?"
	}
}

// formatText renders one event as a single line:
//
//	[hh:mm:ss.µs] [prefix] indent marker file:line func  name = v, name: old -> new
func formatText(ev *Event) []byte {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(ev.Time.Format("15:04:05.000000"))
	sb.WriteString("] ")

	if ev.Prefix != "" {
		sb.WriteString("[")
		sb.WriteString(ev.Prefix)
		sb.WriteString("] ")
	}

	// Indentation by depth; the outermost call sits flush left.
	if ev.Depth > 1 {
		sb.WriteString(strings.Repeat("  ", ev.Depth-1))
	}

	sb.WriteString(kindMarker(ev.Kind))
	sb.WriteString(" ")

	if ev.Kind == KindAnnounce {
		sb.WriteString(ev.Message)
		if ev.File != "" {
			fmt.Fprintf(&sb, "  (%s:%d)", ev.File, ev.Line)
		}
		sb.WriteString("\n")
		return []byte(sb.String())
	}

	if ev.File != "" {
		fmt.Fprintf(&sb, "%s:%-4d ", ev.File, ev.Line)
	}
	sb.WriteString(ev.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(ev.Func)

	if len(ev.Changes) > 0 {
		sb.WriteString("  ")
		sb.WriteString(FormatChanges(ev.Changes))
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}

// FormatChanges renders a change list as the comma-separated display form
// shared by the text format and the trace viewer.
func FormatChanges(changes []Change) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		switch c.Op {
		case Changed:
			parts = append(parts, fmt.Sprintf("%s: %s -> %s", c.Name, c.Old, c.New))
		case Removed:
			parts = append(parts, fmt.Sprintf("%s: %s -> <removed>", c.Name, c.Old))
		default:
			parts = append(parts, fmt.Sprintf("%s = %s", c.Name, c.New))
		}
	}
	return strings.Join(parts, ", ")
}

// wireChange is the JSON wire form of Change.
type wireChange struct {
	Name string `json:"name"`
	Op   string `json:"op"`
	Old  string `json:"old,omitempty"`
	New  string `json:"new,omitempty"`
}

// wireEvent is the JSON wire form of Event, shared by the NDJSON sink
// format and the replay decoder.
type wireEvent struct {
	Time    string       `json:"time"`
	Seq     uint64       `json:"seq"`
	Kind    string       `json:"kind"`
	Level   string       `json:"level"`
	Prefix  string       `json:"prefix,omitempty"`
	CallID  string       `json:"call_id,omitempty"`
	GID     uint64       `json:"gid,omitempty"`
	Depth   int          `json:"depth,omitempty"`
	File    string       `json:"file,omitempty"`
	Line    int          `json:"line,omitempty"`
	Func    string       `json:"func,omitempty"`
	Message string       `json:"message,omitempty"`
	Changes []wireChange `json:"changes,omitempty"`
}

const wireTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatNDJSON(ev *Event) []byte {
	w := wireEvent{
		Time:    ev.Time.Format(wireTimeLayout),
		Seq:     ev.Seq,
		Kind:    ev.Kind.String(),
		Level:   ev.Level.String(),
		Prefix:  ev.Prefix,
		CallID:  ev.CallID,
		GID:     ev.GID,
		Depth:   ev.Depth,
		File:    ev.File,
		Line:    ev.Line,
		Func:    ev.Func,
		Message: ev.Message,
	}
	for _, c := range ev.Changes {
		w.Changes = append(w.Changes, wireChange{
			Name: c.Name,
			Op:   c.Op.String(),
			Old:  c.Old,
			New:  c.New,
		})
	}

	data, err := json.Marshal(w)
	if err != nil {
		// A change name or value with invalid UTF-8 could in principle
		// fail; fall back to a minimal record instead of dropping it.
		data, _ = json.Marshal(wireEvent{Seq: ev.Seq, Kind: ev.Kind.String(), Level: ev.Level.String()})
	}
	return append(data, '\n')
}

func parseChangeOp(s string) ChangeOp {
	switch s {
	case "added":
		return Added
	case "changed":
		return Changed
	case "unchanged":
		return Unchanged
	case "removed":
		return Removed
	default:
		return 0
	}
}

func parseWireTime(s string) (time.Time, error) {
	return time.Parse(wireTimeLayout, s)
}

// UnmarshalNDJSON decodes one NDJSON line back into an Event. Used by the
// replay reader; unknown kinds or levels fail, truncated optional fields
// do not.
func UnmarshalNDJSON(line []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return Event{}, fmt.Errorf("decode trace record: %w", err)
	}

	kind, err := ParseKind(w.Kind)
	if err != nil {
		return Event{}, err
	}
	level, err := ParseLevel(w.Level)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		Seq:     w.Seq,
		Kind:    kind,
		Level:   level,
		Prefix:  w.Prefix,
		CallID:  w.CallID,
		GID:     w.GID,
		Depth:   w.Depth,
		File:    w.File,
		Line:    w.Line,
		Func:    w.Func,
		Message: w.Message,
	}
	if t, terr := parseWireTime(w.Time); terr == nil {
		ev.Time = t
	}
	for _, c := range w.Changes {
		ev.Changes = append(ev.Changes, Change{
			Name: c.Name,
			Op:   parseChangeOp(c.Op),
			Old:  c.Old,
			New:  c.New,
		})
	}
	return ev, nil
}
