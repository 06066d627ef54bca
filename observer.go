package snoop

// Observer is the seam policy decorators subscribe through. Observers
// receive every event by value, after the sink has emitted it; they cannot
// mutate engine state or suppress emission. An observer must return
// quickly — it runs inline on the traced goroutine — and must not retain
// or modify the Changes slice.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }
