// Package monitor provides ready-made policies built on the tracing
// observer seam: latency budgets, retries, memoization, rate limiting,
// feature flags, audit recording and Prometheus metrics. Everything here
// is read-only with respect to the trace; policies react to events, they
// never rewrite them.
package monitor

import (
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"snoop"
)

// Threshold watches matched call/return pairs and announces invocations
// that overran a latency budget. Register it on a tracer with
// snoop.WithObservers.
type Threshold struct {
	Budget time.Duration
	Sink   snoop.Sink // announce destination; nil means the process default

	mu      sync.Mutex
	started map[string]time.Time
	calls   int
	slow    int
	total   time.Duration
	max     time.Duration
	maxFunc string
}

// NewThreshold creates a Threshold with the given budget.
func NewThreshold(budget time.Duration) *Threshold {
	return &Threshold{
		Budget:  budget,
		started: make(map[string]time.Time),
	}
}

// Observe implements snoop.Observer. Call events open a measurement,
// return and exception events close it.
func (t *Threshold) Observe(ev snoop.Event) {
	switch ev.Kind {
	case snoop.KindCall:
		t.mu.Lock()
		t.started[ev.CallID] = ev.Time
		t.mu.Unlock()

	case snoop.KindReturn, snoop.KindException:
		t.mu.Lock()
		start, ok := t.started[ev.CallID]
		if !ok {
			t.mu.Unlock()
			return
		}
		delete(t.started, ev.CallID)

		d := ev.Time.Sub(start)
		t.calls++
		t.total += d
		if d > t.max {
			t.max = d
			t.maxFunc = ev.Func
		}
		over := t.Budget > 0 && d > t.Budget
		if over {
			t.slow++
		}
		t.mu.Unlock()

		if over {
			snoop.ShowTo(t.sink(), snoop.LevelWarning, "PERF",
				ev.Func, "took", d.String(), "(budget", t.Budget.String()+")")
		}
	}
}

func (t *Threshold) sink() snoop.Sink {
	if t.Sink != nil {
		return t.Sink
	}
	return snoop.Default()
}

// Calls returns how many call/return pairs completed.
func (t *Threshold) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Slow returns how many completed calls exceeded the budget.
func (t *Threshold) Slow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slow
}

// Stats returns a one-line human summary of everything observed so far.
func (t *Threshold) Stats() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := message.NewPrinter(language.English)
	if t.calls == 0 {
		return p.Sprintf("no completed calls observed")
	}
	avg := t.total / time.Duration(t.calls)
	return p.Sprintf("%d calls, %d over budget, avg %v, max %v in %s",
		t.calls, t.slow, avg.Round(time.Microsecond), t.max.Round(time.Microsecond), t.maxFunc)
}
