package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"snoop"
	"snoop/monitor"
)

var (
	demoOut   string
	demoDepth int
)

func init() {
	demoCmd.Flags().StringVar(&demoOut, "out", "", "write the trace to this file as NDJSON instead of stderr")
	demoCmd.Flags().IntVar(&demoDepth, "depth", 0, "nesting levels with line detail (default from snoop.toml)")
}

var demoScenarios = map[string]func(context.Context, snoop.Sink, int) error{
	"basic":      demoBasic,
	"recursive":  demoRecursive,
	"failing":    demoFailing,
	"concurrent": demoConcurrent,
	"watch":      demoWatch,
	"policies":   demoPolicies,
}

var demoCmd = &cobra.Command{
	Use:       "demo [scenario]",
	Short:     "Run a built-in traced scenario",
	Long:      "Runs one of the built-in scenarios (basic|recursive|failing|concurrent|watch|policies) or all of them, emitting a real trace.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"basic", "recursive", "failing", "concurrent", "watch", "policies"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyColor(cmd, cfg); err != nil {
			return err
		}
		if demoOut != "" {
			cfg.Trace.Output = demoOut
			cfg.Trace.Format = "ndjson"
		}

		depth := demoDepth
		if depth <= 0 {
			depth, err = cfg.IntDepth()
			if err != nil {
				return err
			}
		}

		sink, cleanup, err := buildSink(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		names := []string{"basic", "recursive", "failing", "concurrent", "watch", "policies"}
		if len(args) == 1 {
			names = []string{args[0]}
		}

		ctx := cmd.Context()
		for _, name := range names {
			run, ok := demoScenarios[name]
			if !ok {
				return fmt.Errorf("unknown scenario %q (expected: %s)", name, strings.Join(names, "|"))
			}
			snoop.ShowTo(sink, snoop.LevelInfo, "DEMO", "scenario", name)
			if err := run(ctx, sink, depth); err != nil {
				return fmt.Errorf("scenario %s: %w", name, err)
			}
		}
		return nil
	},
}

// demoBasic traces a plain accumulation loop.
func demoBasic(ctx context.Context, sink snoop.Sink, depth int) error {
	t := snoop.New(snoop.WithOutput(sink), snoop.WithDepth(depth))
	return t.Do(ctx, "accumulate", func(c *snoop.Call) error {
		total := 0
		i := 0
		c.Bind("total", &total)
		c.Bind("i", &i)
		for i = 1; i <= 5; i++ {
			total += i * i
			c.Step()
		}
		return c.Return(total)
	}, snoop.Arg("n", 5))
}

// demoRecursive traces nested invocations; depth controls how deep line
// detail goes while call/return pairs always appear.
func demoRecursive(ctx context.Context, sink snoop.Sink, depth int) error {
	t := snoop.New(snoop.WithOutput(sink), snoop.WithDepth(depth))

	var fact func(ctx context.Context, n int) (int, error)
	fact = func(ctx context.Context, n int) (int, error) {
		out := 0
		err := t.Do(ctx, "factorial", func(c *snoop.Call) error {
			c.Bind("out", &out)
			if n <= 1 {
				out = 1
				return c.Return(out)
			}
			sub, err := fact(c.Context(), n-1)
			if err != nil {
				return err
			}
			out = n * sub
			c.Step()
			return c.Return(out)
		}, snoop.Arg("n", n))
		return out, err
	}

	_, err := fact(ctx, 5)
	return err
}

// demoFailing shows the exception path plus a retry policy that recovers.
func demoFailing(ctx context.Context, sink snoop.Sink, depth int) error {
	t := snoop.New(snoop.WithOutput(sink), snoop.WithDepth(depth), snoop.WithLevel(snoop.LevelWarning))

	divide := func(ctx context.Context, a, b int) error {
		return t.Do(ctx, "divide", func(c *snoop.Call) error {
			q := 0
			c.Bind("q", &q)
			if b == 0 {
				return errors.New("division by zero")
			}
			q = a / b
			c.Step()
			return c.Return(q)
		}, snoop.Arg("a", a), snoop.Arg("b", b))
	}

	// The exception event is the point of this scenario.
	if err := divide(ctx, 10, 0); err == nil {
		return errors.New("expected a division error")
	}

	attempts := 0
	r := monitor.Retrier{Attempts: 3, Backoff: 10 * time.Millisecond, Sink: sink}
	return r.Do(ctx, "divide", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return divide(ctx, 10, 0)
		}
		return divide(ctx, 10, 2)
	})
}

// demoConcurrent runs rate-limited workers in parallel, each with its own
// call stack, and reports a latency budget summary.
func demoConcurrent(ctx context.Context, sink snoop.Sink, depth int) error {
	th := monitor.NewThreshold(5 * time.Millisecond)
	th.Sink = sink
	t := snoop.New(
		snoop.WithOutput(sink),
		snoop.WithDepth(depth),
		snoop.WithPrefix("WORKER"),
		snoop.WithObservers(th),
	)
	lim := monitor.NewLimiter(2)

	g, ctx := errgroup.WithContext(ctx)
	for w := 1; w <= 4; w++ {
		w := w
		g.Go(func() error {
			return lim.Do(ctx, func(ctx context.Context) error {
				return t.Do(ctx, fmt.Sprintf("worker-%d", w), func(c *snoop.Call) error {
					processed := 0
					c.Bind("processed", &processed)
					for j := 0; j < 3; j++ {
						processed++
						time.Sleep(time.Duration(w) * 2 * time.Millisecond)
						c.Step()
					}
					return c.Return(processed)
				}, snoop.Arg("worker", w))
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	snoop.ShowTo(sink, snoop.LevelInfo, "PERF", th.Stats())
	return nil
}

// demoWatch exercises every watch form against a small request state.
func demoWatch(ctx context.Context, sink snoop.Sink, depth int) error {
	type retry struct{ Max, Used int }
	type request struct {
		Host  string
		Retry retry
	}

	t := snoop.New(
		snoop.WithOutput(sink),
		snoop.WithDepth(depth),
		snoop.WithWatch(
			snoop.Watch("req.Retry.Used"),
			snoop.WatchKeys("hits", "home", "about"),
			snoop.WatchExplode("latencies"),
		),
	)

	return t.Do(ctx, "serve", func(c *snoop.Call) error {
		req := request{Host: "example.test", Retry: retry{Max: 3}}
		hits := map[string]int{"home": 1}
		latencies := []int{12, 7}
		c.Bind("req", &req)
		c.Bind("hits", &hits)
		c.Bind("latencies", &latencies)
		c.Step()

		req.Retry.Used = 1
		hits["home"]++
		hits["about"] = 1
		latencies = append(latencies, 31)
		c.Step()

		latencies = latencies[:1]
		c.Step()
		return c.Return(len(latencies))
	})
}

// demoPolicies shows the cache and feature flag helpers announcing into
// the same trace as the work they shape.
func demoPolicies(ctx context.Context, sink snoop.Sink, depth int) error {
	t := snoop.New(snoop.WithOutput(sink), snoop.WithDepth(depth))

	flags := monitor.NewFlags(map[string]bool{"double": false})
	flags.Sink = sink
	cache := &monitor.Cache[int]{TTL: time.Minute, Sink: sink}

	lookup := func(ctx context.Context, key string) (int, error) {
		var out int
		err := t.Do(ctx, "lookup", func(c *snoop.Call) error {
			v, err := cache.Get(key, func() (int, error) { return len(key) * 10, nil })
			if err != nil {
				return err
			}
			c.Bind("v", &v)
			if flags.Enabled("double") {
				v *= 2
			}
			c.Step()
			out = v
			return c.Return(out)
		}, snoop.Arg("key", key))
		return out, err
	}

	if _, err := lookup(ctx, "user:7"); err != nil {
		return err
	}
	flags.Set("double", true)
	if _, err := lookup(ctx, "user:7"); err != nil {
		return err
	}
	return nil
}
