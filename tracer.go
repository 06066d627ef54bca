package snoop

import (
	"snoop/internal/render"
	"snoop/internal/stack"
	"snoop/internal/watch"
)

// WatchExpr is a parsed watch expression attached to a tracer. Build one
// with Watch, WatchKeys, WatchIndices or WatchExplode.
type WatchExpr struct {
	expr watch.Expr
}

// Watch surfaces a dot-separated attribute chain rooted at a bound
// variable, e.g. Watch("cfg.Retry.Max").
func Watch(expr string) WatchExpr { return WatchExpr{watch.Path(expr)} }

// WatchKeys surfaces specific keys of a bound map variable. Each key
// resolves independently; one bad key never hides the others.
func WatchKeys(name string, keys ...string) WatchExpr { return WatchExpr{watch.Keys(name, keys...)} }

// WatchIndices surfaces specific elements of a bound slice or array.
func WatchIndices(name string, idxs ...int) WatchExpr {
	return WatchExpr{watch.Indices(name, idxs...)}
}

// WatchExplode expands every element of a bound container into its own
// pseudo-variable (xs[0], m[key], s.Field).
func WatchExplode(name string) WatchExpr { return WatchExpr{watch.Explode(name)} }

// Config holds tracer configuration. Zero values select the defaults
// documented on the options.
type Config struct {
	Output        Sink        // destination; nil means the process default
	Watches       []WatchExpr // evaluated on every execution step
	Depth         int         // nesting levels that get LINE detail (default 1)
	ShowUnchanged bool        // report Unchanged entries (default: suppressed)
	MaxLength     int         // rendering budget per value (default render.DefaultMaxLen)
	Prefix        string      // stamped on every emitted event
	Level         Level       // severity stamped on trace events (default LevelInfo)
	Observers     []Observer  // read-only subscribers, notified after the sink
}

// Option configures a Tracer.
type Option func(*Config)

// WithOutput directs events to the given sink.
func WithOutput(s Sink) Option { return func(c *Config) { c.Output = s } }

// WithWatch declares watch expressions, evaluated against the live scope
// on every execution step.
func WithWatch(exprs ...WatchExpr) Option {
	return func(c *Config) { c.Watches = append(c.Watches, exprs...) }
}

// WithDepth bounds how many nesting levels receive per-line detail.
// Deeper calls still emit their call/return skeleton.
func WithDepth(n int) Option { return func(c *Config) { c.Depth = n } }

// WithShowUnchanged also reports variables whose rendering did not change.
func WithShowUnchanged(on bool) Option { return func(c *Config) { c.ShowUnchanged = on } }

// WithMaxLength sets the display-width budget for rendered values.
func WithMaxLength(n int) Option { return func(c *Config) { c.MaxLength = n } }

// WithPrefix stamps a label on every event from this tracer.
func WithPrefix(p string) Option { return func(c *Config) { c.Prefix = p } }

// WithLevel sets the severity trace events are emitted at.
func WithLevel(l Level) Option { return func(c *Config) { c.Level = l } }

// WithObservers registers read-only observers (see Observer).
func WithObservers(obs ...Observer) Option {
	return func(c *Config) { c.Observers = append(c.Observers, obs...) }
}

// Tracer attaches statement-level tracing to explicitly instrumented
// callables. A single Tracer may trace concurrent invocations; each
// goroutine gets an independent call stack.
type Tracer struct {
	cfg      Config
	tracker  *stack.Tracker
	renderer render.Renderer
}

// New creates a Tracer.
func New(opts ...Option) *Tracer {
	cfg := Config{Depth: 1, Level: LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 1
	}
	return &Tracer{
		cfg:      cfg,
		tracker:  stack.NewTracker(),
		renderer: render.Renderer{MaxLen: cfg.MaxLength},
	}
}

// sink returns the configured sink or the process default.
func (t *Tracer) sink() Sink {
	if t.cfg.Output != nil {
		return t.cfg.Output
	}
	return Default()
}
