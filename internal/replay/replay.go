// Package replay reads and writes recorded trace files so the CLI can
// display a trace after the fact. Two formats are supported: NDJSON
// (one JSON event per line, the stream sink's format) and a compact
// binary stream of msgpack records used by the audit observer.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"snoop"
)

// Current schema version - increment when the binary record format changes.
const binarySchemaVersion uint16 = 1

// binaryMagic identifies a snoop binary trace file.
const binaryMagic = "SNOOPTRC"

// header is the first msgpack record of a binary trace file.
type header struct {
	Magic  string
	Schema uint16
}

// record is the binary wire form of one event.
type record struct {
	TimeNS  int64
	Seq     uint64
	Kind    uint8
	Level   uint8
	Prefix  string
	CallID  string
	GID     uint64
	Depth   int
	File    string
	Line    int
	Func    string
	Message string
	Names   []string
	Ops     []uint8
	Olds    []string
	News    []string
}

func toRecord(ev snoop.Event) record {
	r := record{
		TimeNS:  ev.Time.UnixNano(),
		Seq:     ev.Seq,
		Kind:    uint8(ev.Kind),
		Level:   uint8(ev.Level),
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
		r.Names = append(r.Names, c.Name)
		r.Ops = append(r.Ops, uint8(c.Op))
		r.Olds = append(r.Olds, c.Old)
		r.News = append(r.News, c.New)
	}
	return r
}

func fromRecord(r record) (snoop.Event, error) {
	kind := snoop.Kind(r.Kind)
	if kind < snoop.KindCall || kind > snoop.KindAnnounce {
		return snoop.Event{}, fmt.Errorf("invalid event kind %d", r.Kind)
	}
	level := snoop.Level(r.Level)
	if level < snoop.LevelDebug || level > snoop.LevelError {
		return snoop.Event{}, fmt.Errorf("invalid level %d", r.Level)
	}
	if len(r.Ops) != len(r.Names) || len(r.Olds) != len(r.Names) || len(r.News) != len(r.Names) {
		return snoop.Event{}, errors.New("corrupt change columns")
	}

	ev := snoop.Event{
		Time:    time.Unix(0, r.TimeNS),
		Seq:     r.Seq,
		Kind:    kind,
		Level:   level,
		Prefix:  r.Prefix,
		CallID:  r.CallID,
		GID:     r.GID,
		Depth:   r.Depth,
		File:    r.File,
		Line:    r.Line,
		Func:    r.Func,
		Message: r.Message,
	}
	for i := range r.Names {
		ev.Changes = append(ev.Changes, snoop.Change{
			Name: r.Names[i],
			Op:   snoop.ChangeOp(r.Ops[i]),
			Old:  r.Olds[i],
			New:  r.News[i],
		})
	}
	return ev, nil
}

// BinaryWriter appends events to a binary trace stream.
type BinaryWriter struct {
	enc *msgpack.Encoder
}

// NewBinaryWriter writes the file header and returns a writer.
func NewBinaryWriter(w io.Writer) (*BinaryWriter, error) {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(header{Magic: binaryMagic, Schema: binarySchemaVersion}); err != nil {
		return nil, fmt.Errorf("write trace header: %w", err)
	}
	return &BinaryWriter{enc: enc}, nil
}

// Append encodes one event.
func (b *BinaryWriter) Append(ev snoop.Event) error {
	if err := b.enc.Encode(toRecord(ev)); err != nil {
		return fmt.Errorf("encode trace record: %w", err)
	}
	return nil
}

// ReadBinary decodes a binary trace stream.
func ReadBinary(r io.Reader) ([]snoop.Event, error) {
	dec := msgpack.NewDecoder(r)

	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("read trace header: %w", err)
	}
	if h.Magic != binaryMagic {
		return nil, fmt.Errorf("not a snoop trace file (magic %q)", h.Magic)
	}
	if h.Schema != binarySchemaVersion {
		return nil, fmt.Errorf("unsupported trace schema %d (want %d)", h.Schema, binarySchemaVersion)
	}

	var events []snoop.Event
	for {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return nil, fmt.Errorf("decode trace record: %w", err)
		}
		ev, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// ReadNDJSON decodes a newline-delimited JSON trace stream. Blank lines
// are skipped; a malformed line fails the whole read so truncated files
// are noticed rather than silently shortened.
func ReadNDJSON(r io.Reader) ([]snoop.Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var events []snoop.Event
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev, err := snoop.UnmarshalNDJSON([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return events, nil
}

// ReadFile loads a trace file, choosing the decoder by extension:
// .strace is binary, everything else is treated as NDJSON.
func ReadFile(path string) ([]snoop.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	if filepath.Ext(path) == ".strace" {
		return ReadBinary(f)
	}
	return ReadNDJSON(f)
}
