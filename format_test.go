package snoop

import (
	"strings"
	"testing"
	"time"
)

func sampleEvent() *Event {
	return &Event{
		Time:   time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC),
		Seq:    7,
		Kind:   KindLine,
		Level:  LevelInfo,
		CallID: "abc-123",
		GID:    42,
		Depth:  2,
		File:   "demo.go",
		Line:   19,
		Func:   "f",
		Changes: []Change{
			{Name: "x", Op: Added, New: "5"},
			{Name: "y", Op: Changed, Old: "1", New: "2"},
			{Name: "z", Op: Removed, Old: "9"},
		},
	}
}

func TestFormatTextContents(t *testing.T) {
	out := string(FormatEvent(sampleEvent(), FormatText))

	for _, want := range []string{
		"15:09:26.535897",
		"demo.go:19",
		"line",
		"f",
		"x = 5",
		"y: 1 -> 2",
		"z: 9 -> <removed>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("event rendering must end with a newline")
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("one event must render as one atomic line:\n%s", out)
	}
}

func TestFormatTextIndentsByDepth(t *testing.T) {
	ev := sampleEvent()
	ev.Depth = 3
	out := string(FormatEvent(ev, FormatText))
	if !strings.Contains(out, "    ·") {
		t.Fatalf("depth 3 should indent four spaces before the marker:\n%s", out)
	}
}

func TestFormatAnnounce(t *testing.T) {
	ev := &Event{
		Time:    time.Now(),
		Kind:    KindAnnounce,
		Level:   LevelWarning,
		Prefix:  "CACHE",
		Message: "miss for key user:7",
		File:    "svc.go",
		Line:    80,
	}
	out := string(FormatEvent(ev, FormatText))
	if !strings.Contains(out, "[CACHE]") || !strings.Contains(out, "miss for key user:7") {
		t.Fatalf("announce rendering incomplete:\n%s", out)
	}
}

func TestNDJSONRoundTrip(t *testing.T) {
	ev := sampleEvent()
	line := FormatEvent(ev, FormatNDJSON)

	got, err := UnmarshalNDJSON(line)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.Kind != ev.Kind || got.Level != ev.Level || got.Seq != ev.Seq {
		t.Fatalf("identity fields lost: %+v", got)
	}
	if got.File != "demo.go" || got.Line != 19 || got.Func != "f" || got.Depth != 2 {
		t.Fatalf("location fields lost: %+v", got)
	}
	if len(got.Changes) != 3 {
		t.Fatalf("changes lost: %+v", got.Changes)
	}
	if got.Changes[1].Op != Changed || got.Changes[1].Old != "1" || got.Changes[1].New != "2" {
		t.Fatalf("change round trip: %+v", got.Changes[1])
	}
	if !got.Time.Equal(ev.Time) {
		t.Fatalf("time round trip: %v != %v", got.Time, ev.Time)
	}
}

func TestUnmarshalNDJSONRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalNDJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := UnmarshalNDJSON([]byte(`{"kind":"teleport","level":"info"}`)); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestParseHelpers(t *testing.T) {
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat ndjson: %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if l, err := ParseLevel("success"); err != nil || l != LevelSuccess {
		t.Fatalf("ParseLevel success: %v %v", l, err)
	}
	if k, err := ParseKind("exception"); err != nil || k != KindException {
		t.Fatalf("ParseKind exception: %v %v", k, err)
	}
}
