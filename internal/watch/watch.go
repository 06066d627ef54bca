// Package watch resolves declarative watch expressions against the live
// variable scope of a traced call. A closed set of strategies is
// supported: attribute paths, explicit container keys or indices, and
// exploding an iterable into per-element pseudo-variables.
//
// Resolution is read-only and can never abort tracing: any failure (a
// missing root, a missing field or key, an index out of range, exploding a
// non-iterable) degrades to an error marker for the affected label only.
package watch

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type kind uint8

const (
	kindPath kind = iota + 1
	kindKeys
	kindIndices
	kindExplode
)

// Expr is a parsed watch expression. Expressions are parsed once at
// decoration time and re-evaluated against the scope on every step.
type Expr struct {
	kind kind
	root string
	path []string
	keys []string
	idxs []int
}

// Path watches a dot-separated attribute chain rooted at a scope variable,
// e.g. "cfg.Retry.Max".
func Path(expr string) Expr {
	parts := strings.Split(expr, ".")
	return Expr{kind: kindPath, root: parts[0], path: parts[1:]}
}

// Keys watches specific keys of a map-valued scope variable. Each key
// resolves independently; one bad key never suppresses the others.
func Keys(name string, keys ...string) Expr {
	return Expr{kind: kindKeys, root: name, keys: keys}
}

// Indices watches specific elements of a slice, array or string variable.
func Indices(name string, idxs ...int) Expr {
	return Expr{kind: kindIndices, root: name, idxs: idxs}
}

// Explode expands every element of a slice, array, map or struct variable
// into its own pseudo-variable (name[0], name[key], name.Field).
func Explode(name string) Expr {
	return Expr{kind: kindExplode, root: name}
}

// String returns the source form of the expression, used as label base.
func (e Expr) String() string {
	switch e.kind {
	case kindPath:
		if len(e.path) == 0 {
			return e.root
		}
		return e.root + "." + strings.Join(e.path, ".")
	case kindKeys:
		return fmt.Sprintf("%s[keys]", e.root)
	case kindIndices:
		return fmt.Sprintf("%s[indices]", e.root)
	case kindExplode:
		return e.root + "[*]"
	}
	return e.root
}

// Pair is one resolved watch label. Err is non-nil when resolution failed;
// the emitter renders it as an error marker in place of a value.
type Pair struct {
	Label string
	Value any
	Err   error
}

// Resolve evaluates the expression against scope. It never panics; a
// reflection failure inside user types degrades to a single error pair.
func (e Expr) Resolve(scope map[string]any) (pairs []Pair) {
	defer func() {
		if rec := recover(); rec != nil {
			pairs = []Pair{{Label: e.String(), Err: fmt.Errorf("unresolvable: %v", rec)}}
		}
	}()

	rootVal, ok := scope[e.root]
	if !ok {
		return []Pair{{Label: e.String(), Err: fmt.Errorf("no variable %q in scope", e.root)}}
	}

	switch e.kind {
	case kindPath:
		return e.resolvePath(rootVal)
	case kindKeys:
		return e.resolveKeys(rootVal)
	case kindIndices:
		return e.resolveIndices(rootVal)
	case kindExplode:
		return e.resolveExplode(rootVal)
	}
	return nil
}

func (e Expr) resolvePath(root any) []Pair {
	label := e.String()
	v := reflect.ValueOf(root)
	for _, seg := range e.path {
		v = indirect(v)
		if !v.IsValid() {
			return []Pair{{Label: label, Err: fmt.Errorf("nil before %q", seg)}}
		}
		switch v.Kind() {
		case reflect.Struct:
			f := v.FieldByName(seg)
			if !f.IsValid() {
				return []Pair{{Label: label, Err: fmt.Errorf("no field %q on %s", seg, v.Type())}}
			}
			v = f
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return []Pair{{Label: label, Err: fmt.Errorf("non-string keys on %s", v.Type())}}
			}
			mv := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
			if !mv.IsValid() {
				return []Pair{{Label: label, Err: fmt.Errorf("no key %q in %s", seg, v.Type())}}
			}
			v = mv
		default:
			return []Pair{{Label: label, Err: fmt.Errorf("cannot traverse %q through %s", seg, v.Type())}}
		}
	}
	return []Pair{{Label: label, Value: valueOf(v)}}
}

func (e Expr) resolveKeys(root any) []Pair {
	v := indirect(reflect.ValueOf(root))
	pairs := make([]Pair, 0, len(e.keys))
	for _, key := range e.keys {
		label := e.root + "[" + strconv.Quote(key) + "]"
		if !v.IsValid() || v.Kind() != reflect.Map {
			pairs = append(pairs, Pair{Label: label, Err: fmt.Errorf("%q is not a map", e.root)})
			continue
		}
		if v.Type().Key().Kind() != reflect.String {
			pairs = append(pairs, Pair{Label: label, Err: fmt.Errorf("non-string keys on %s", v.Type())})
			continue
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			pairs = append(pairs, Pair{Label: label, Err: fmt.Errorf("no key %q", key)})
			continue
		}
		pairs = append(pairs, Pair{Label: label, Value: valueOf(mv)})
	}
	return pairs
}

func (e Expr) resolveIndices(root any) []Pair {
	v := indirect(reflect.ValueOf(root))
	pairs := make([]Pair, 0, len(e.idxs))
	for _, idx := range e.idxs {
		label := fmt.Sprintf("%s[%d]", e.root, idx)
		if !v.IsValid() || !indexable(v.Kind()) {
			pairs = append(pairs, Pair{Label: label, Err: fmt.Errorf("%q is not indexable", e.root)})
			continue
		}
		if idx < 0 || idx >= v.Len() {
			pairs = append(pairs, Pair{Label: label, Err: fmt.Errorf("index %d out of range (len %d)", idx, v.Len())})
			continue
		}
		pairs = append(pairs, Pair{Label: label, Value: valueOf(v.Index(idx))})
	}
	return pairs
}

func (e Expr) resolveExplode(root any) []Pair {
	v := indirect(reflect.ValueOf(root))
	if !v.IsValid() {
		return []Pair{{Label: e.String(), Err: fmt.Errorf("%q is nil", e.root)}}
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		pairs := make([]Pair, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			pairs = append(pairs, Pair{
				Label: fmt.Sprintf("%s[%d]", e.root, i),
				Value: valueOf(v.Index(i)),
			})
		}
		return pairs
	case reflect.Map:
		keys := v.MapKeys()
		rendered := make([]string, len(keys))
		byLabel := make(map[string]reflect.Value, len(keys))
		for i, k := range keys {
			rendered[i] = fmt.Sprintf("%v", k.Interface())
			byLabel[rendered[i]] = v.MapIndex(k)
		}
		sort.Strings(rendered)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range rendered {
			pairs = append(pairs, Pair{
				Label: fmt.Sprintf("%s[%s]", e.root, k),
				Value: valueOf(byLabel[k]),
			})
		}
		return pairs
	case reflect.Struct:
		t := v.Type()
		var pairs []Pair
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			pairs = append(pairs, Pair{
				Label: e.root + "." + f.Name,
				Value: valueOf(v.Field(i)),
			})
		}
		return pairs
	default:
		return []Pair{{Label: e.String(), Err: fmt.Errorf("%q (%s) is not iterable", e.root, v.Type())}}
	}
}

// indirect unwraps pointers and interfaces until a concrete value remains.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func indexable(k reflect.Kind) bool {
	switch k {
	case reflect.Slice, reflect.Array, reflect.String:
		return true
	}
	return false
}

// valueOf extracts an interface value, tolerating unexported struct fields
// by falling back to a type placeholder.
func valueOf(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if !v.CanInterface() {
		return fmt.Sprintf("<%s>", v.Type())
	}
	return v.Interface()
}
