package render

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultMaxLen is the rendering budget applied when none is configured.
const DefaultMaxLen = 100

// maxDepth bounds recursion into nested containers. Anything deeper is
// replaced by a placeholder so rendering stays cheap on large object graphs.
const maxDepth = 6

// Renderer converts live values into bounded, deterministic strings.
// Two values that render identically are treated as equal by the differ,
// so the output must be stable across runs: map keys are sorted and
// pointers are never rendered as raw addresses except in placeholders.
type Renderer struct {
	MaxLen int // display-width budget per value; <=0 means DefaultMaxLen
}

// Render returns a bounded string form of v. It never panics: values whose
// String/Error methods misbehave and cyclic structures degrade to a
// type/identity placeholder.
func (r Renderer) Render(v any) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = r.truncate(fmt.Sprintf("<unrenderable %T>", v))
		}
	}()

	var sb strings.Builder
	seen := make(map[uintptr]struct{})
	r.walk(&sb, reflect.ValueOf(v), seen, 0)
	return r.truncate(sb.String())
}

func (r Renderer) truncate(s string) string {
	limit := r.MaxLen
	if limit <= 0 {
		limit = DefaultMaxLen
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	return runewidth.Truncate(s, limit, "…")
}

var (
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

func (r Renderer) walk(sb *strings.Builder, v reflect.Value, seen map[uintptr]struct{}, depth int) {
	if !v.IsValid() {
		sb.WriteString("nil")
		return
	}
	if depth > maxDepth {
		fmt.Fprintf(sb, "<%s…>", v.Type())
		return
	}

	// Prefer String/Error when implemented so values like time.Time and
	// time.Duration render usefully despite unexported fields or opaque
	// integer representations.
	if v.CanInterface() {
		if v.Type().Implements(errorType) && !isNilable(v) {
			sb.WriteString(strconv.Quote(v.Interface().(error).Error()))
			return
		}
		if v.Type().Implements(stringerType) && !isNilable(v) {
			sb.WriteString(v.Interface().(fmt.Stringer).String())
			return
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sb.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		sb.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		fmt.Fprintf(sb, "%v", v.Complex())
	case reflect.String:
		sb.WriteString(strconv.Quote(v.String()))
	case reflect.Interface:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		r.walk(sb, v.Elem(), seen, depth)
	case reflect.Pointer:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		if r.cyclic(v, seen) {
			fmt.Fprintf(sb, "<%s@0x%x>", v.Type(), v.Pointer())
			return
		}
		defer delete(seen, v.Pointer())
		sb.WriteString("&")
		r.walk(sb, v.Elem(), seen, depth+1)
	case reflect.Slice:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		if r.cyclic(v, seen) {
			fmt.Fprintf(sb, "<%s@0x%x>", v.Type(), v.Pointer())
			return
		}
		defer delete(seen, v.Pointer())
		r.walkList(sb, v, seen, depth)
	case reflect.Array:
		r.walkList(sb, v, seen, depth)
	case reflect.Map:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		if r.cyclic(v, seen) {
			fmt.Fprintf(sb, "<%s@0x%x>", v.Type(), v.Pointer())
			return
		}
		defer delete(seen, v.Pointer())
		r.walkMap(sb, v, seen, depth)
	case reflect.Struct:
		r.walkStruct(sb, v, seen, depth)
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		fmt.Fprintf(sb, "<%s>", v.Type())
	default:
		fmt.Fprintf(sb, "<%s>", v.Type())
	}
}

func (r Renderer) cyclic(v reflect.Value, seen map[uintptr]struct{}) bool {
	p := v.Pointer()
	if _, ok := seen[p]; ok {
		return true
	}
	seen[p] = struct{}{}
	return false
}

func (r Renderer) walkList(sb *strings.Builder, v reflect.Value, seen map[uintptr]struct{}, depth int) {
	sb.WriteString("[")
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		r.walk(sb, v.Index(i), seen, depth+1)
	}
	sb.WriteString("]")
}

func (r Renderer) walkMap(sb *strings.Builder, v reflect.Value, seen map[uintptr]struct{}, depth int) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb strings.Builder
		r.walk(&kb, iter.Key(), seen, depth+1)
		entries = append(entries, entry{key: kb.String(), val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	sb.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.key)
		sb.WriteString(": ")
		r.walk(sb, e.val, seen, depth+1)
	}
	sb.WriteString("}")
}

func (r Renderer) walkStruct(sb *strings.Builder, v reflect.Value, seen map[uintptr]struct{}, depth int) {
	t := v.Type()
	sb.WriteString(t.Name())
	sb.WriteString("{")
	first := true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		r.walk(sb, v.Field(i), seen, depth+1)
	}
	sb.WriteString("}")
}

func isNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}
