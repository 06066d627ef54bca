// Package snoop traces the execution of explicitly instrumented callables:
// which statements ran, and which variables changed value since the
// previous observed statement.
//
// # Usage
//
// A traced body declares its locals by pointer and marks statement
// boundaries on the call handle:
//
//	tr := snoop.New(snoop.WithDepth(2))
//
//	err := tr.Do(ctx, "f", func(c *snoop.Call) error {
//		var y int
//		c.Bind("y", &y)
//		y = x + 1
//		c.Step()
//		return c.Return(y)
//	}, snoop.Arg("x", x))
//
// Each invocation emits a CALL event (parameters reported as added), one
// LINE event per Step carrying only the variables whose rendering changed,
// and a RETURN or EXCEPTION event on the way out. Errors and panics
// propagate to the caller unchanged; tracing is observation only.
//
// # Watch expressions
//
// Watch expressions surface derived values alongside the locals:
//
//	snoop.New(snoop.WithWatch(
//		snoop.Watch("cfg.Retry.Max"),
//		snoop.WatchKeys("hits", "home", "about"),
//		snoop.WatchExplode("queue"),
//	))
//
// A watch that fails to resolve degrades to an error marker for its label;
// it never aborts tracing.
//
// # Sinks
//
// Output goes to a Sink. Several implementations are provided:
//
//   - StreamSink: immediate mutex-serialized writes (text or NDJSON)
//   - RingSink: bounded in-memory circular buffer
//   - MultiSink: fan-out to several sinks
//   - Nop: zero-overhead drop
//
// Sinks never fail the traced program: write errors are reported once to
// stderr and then dropped.
//
// # Announcements
//
// Show and ShowAt announce ad-hoc values through the default sink without
// any tracing machinery:
//
//	snoop.Show("result =", result)
//	snoop.ShowAt(snoop.LevelWarning, "CACHE", "miss for", key)
package snoop
