package snoop

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"time"

	"github.com/google/uuid"

	"snoop/internal/snapshot"
	"snoop/internal/stack"
)

// Binding names a call parameter for the CALL event. Parameters surface as
// Added against the absent pre-call snapshot and stay in scope for the
// rest of the invocation.
type Binding struct {
	name  string
	value any
}

// Arg binds a parameter value by name.
func Arg(name string, v any) Binding { return Binding{name: name, value: v} }

// binding is one scope entry of an active call. Live bindings hold a
// pointer and are dereferenced at each capture; static ones keep the value
// they were registered with.
type binding struct {
	name string
	ptr  reflect.Value
	val  any
	live bool
}

// Call is the handle a traced body uses to declare its locals and mark
// statement boundaries. It is owned by a single goroutine for the duration
// of one invocation and must not be shared across goroutines.
type Call struct {
	t        *Tracer
	ctx      context.Context
	name     string
	id       string
	gid      uint64
	entry    *stack.Entry
	start    time.Time
	bindings []binding
	retval   *string
	lastFile string
	lastLine int
}

// Do runs body as one traced invocation: it pushes a stack entry, emits a
// CALL event with args reported as added, lets the body mark execution
// steps, and emits RETURN or EXCEPTION on the way out. The stack entry is
// popped exactly once on every path, including panics, and a panic or
// returned error always propagates unchanged to the caller.
//
// Do on a nil Tracer runs body untraced.
func (t *Tracer) Do(ctx context.Context, name string, body func(*Call) error, args ...Binding) error {
	if t == nil {
		return body(&Call{ctx: ctx})
	}

	gid := stack.GoroutineID()
	entry := t.tracker.Enter(gid)
	c := &Call{
		t:     t,
		ctx:   ctx,
		name:  name,
		id:    uuid.NewString(),
		gid:   gid,
		entry: entry,
		start: time.Now(),
	}
	for _, a := range args {
		c.bindings = append(c.bindings, binding{name: a.name, val: a.value})
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		c.lastFile, c.lastLine = filepath.Base(file), line
	}

	cur := c.capture()
	c.emit(KindCall, snapshotChanges(snapshot.Diff(nil, cur)))
	entry.Last = cur

	defer func() {
		if rec := recover(); rec != nil {
			c.emitException(fmt.Sprintf("panic: %s", c.t.renderer.Render(rec)))
			t.tracker.Exit(gid, entry)
			panic(rec)
		}
	}()

	err := body(c)
	if err != nil {
		c.emitException(fmt.Sprintf("%T: %v", err, err))
	} else {
		c.emitReturn()
	}
	t.tracker.Exit(gid, entry)
	return err
}

// Func returns a reusable traced form of body; each invocation of the
// returned function runs as its own traced call.
func (t *Tracer) Func(name string, body func(*Call) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return t.Do(ctx, name, body)
	}
}

// Context returns the context the call was started with.
func (c *Call) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// Bind registers a local variable. Pass a pointer so every subsequent Step
// observes the current value; a non-pointer is captured once as a
// constant. Binding is silent — the change surfaces on the next Step.
func (c *Call) Bind(name string, v any) {
	if c.t == nil {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		c.bindings = append(c.bindings, binding{name: name, ptr: rv, live: true})
		return
	}
	c.bindings = append(c.bindings, binding{name: name, val: v})
}

// Step marks a statement boundary: it captures the current scope, resolves
// the tracer's watch expressions, diffs against the previous capture and
// emits a LINE event. Calls nested beyond the configured depth skip LINE
// detail entirely; their call/return skeleton is still emitted.
func (c *Call) Step() {
	if c.t == nil {
		return
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		c.lastFile, c.lastLine = filepath.Base(file), line
	}
	if c.entry.Depth > c.t.cfg.Depth {
		return
	}

	cur := c.capture()
	changes := snapshot.Diff(c.entry.Last, cur)
	if !c.t.cfg.ShowUnchanged {
		changes = snapshot.WithoutUnchanged(changes)
	}
	c.emit(KindLine, snapshotChanges(changes))
	c.entry.Last = cur
}

// Return records the function's return value, reported on the RETURN event
// as the "return" pseudo-variable. It returns nil so a body can finish
// with "return c.Return(v)".
func (c *Call) Return(v any) error {
	if c.t == nil {
		return nil
	}
	rendered := c.t.renderer.Render(v)
	c.retval = &rendered
	if _, file, line, ok := runtime.Caller(1); ok {
		c.lastFile, c.lastLine = filepath.Base(file), line
	}
	return nil
}

// capture builds the immutable snapshot for the current step: locals in
// binding order, then resolved watch labels. Resolution failures become
// error markers; they never abort the capture.
func (c *Call) capture() *snapshot.Snapshot {
	scope := make(map[string]any, len(c.bindings))
	cur := snapshot.New()

	for _, b := range c.bindings {
		v := b.val
		if b.live {
			v = derefLive(b.ptr)
		}
		scope[b.name] = v
		cur.Set(b.name, c.t.renderer.Render(v))
	}

	for _, w := range c.t.cfg.Watches {
		for _, p := range w.expr.Resolve(scope) {
			if p.Err != nil {
				cur.Set(p.Label, "<"+p.Err.Error()+">")
				continue
			}
			cur.Set(p.Label, c.t.renderer.Render(p.Value))
		}
	}
	return cur
}

// derefLive reads the current value behind a live binding.
func derefLive(ptr reflect.Value) any {
	if !ptr.IsValid() || ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return nil
	}
	return ptr.Elem().Interface()
}

func (c *Call) emitReturn() {
	cur := c.capture()
	if c.retval != nil {
		cur.Set("return", *c.retval)
	}
	changes := snapshot.Diff(c.entry.Last, cur)
	if !c.t.cfg.ShowUnchanged {
		changes = snapshot.WithoutUnchanged(changes)
	}
	c.emit(KindReturn, snapshotChanges(changes))
}

// emitException reports the rendered exception before unwinding continues.
// Only the rendering travels on the event, never the live value.
func (c *Call) emitException(rendered string) {
	c.emit(KindException, []Change{{Name: "exception", Op: Added, New: rendered}})
}

func (c *Call) emit(kind Kind, changes []Change) {
	ev := &Event{
		Time:    time.Now(),
		Seq:     NextSeq(),
		Kind:    kind,
		Level:   c.t.cfg.Level,
		Prefix:  c.t.cfg.Prefix,
		CallID:  c.id,
		GID:     c.gid,
		Depth:   c.entry.Depth,
		File:    c.lastFile,
		Line:    c.lastLine,
		Func:    c.name,
		Changes: changes,
	}
	c.t.sink().Emit(ev)
	for _, o := range c.t.cfg.Observers {
		o.Observe(*ev)
	}
}

// snapshotChanges converts differ output to the public change form.
func snapshotChanges(cs []snapshot.Change) []Change {
	out := make([]Change, len(cs))
	for i, c := range cs {
		out[i] = Change{Name: c.Name, Op: changeOp(c.Op), Old: c.Old, New: c.New}
	}
	return out
}

func changeOp(op snapshot.Op) ChangeOp {
	switch op {
	case snapshot.OpAdded:
		return Added
	case snapshot.OpChanged:
		return Changed
	case snapshot.OpRemoved:
		return Removed
	default:
		return Unchanged
	}
}
