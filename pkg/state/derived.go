package state

import "sync"

// Derived is the primitive mutable cell: a value replaced only through a
// reducer, with a comparer deciding whether a transition is a change.
//
// The embedded *View is the read-only capability; Dispatch is available
// only to holders of the *Derived. Hand out ViewOf(d) to consumers that
// must not write.
type Derived[V, M any] struct {
	*View[V]

	value    V
	reducer  func(V, M) V
	comparer *Comparer[V]

	// guard fingerprints value in dev mode.
	guard guard

	// mu protects value, reducer and guard.
	mu sync.RWMutex
}

// NewDerived creates a cell holding initial and driven by reducer.
// The default comparer is ReferenceEqual.
func NewDerived[V, M any](reducer func(V, M) V, initial V, opts ...Option[V]) *Derived[V, M] {
	o := buildOptions(opts)

	d := &Derived[V, M]{
		value:    initial,
		reducer:  reducer,
		comparer: o.comparer,
	}
	d.View = newView(d.read, func(...any) V { return d.read() }, nil)
	d.guard.reseal(initial)
	return d
}

// Dispatch applies msg to the cell. See the package-level Dispatch.
func (d *Derived[V, M]) Dispatch(msg M) {
	changed := d.apply(msg)
	eng.instrumentation().OnDispatch(changed)
	if changed {
		eng.scheduleUpdate()
	}
}

// Dispatch computes reducer(value, msg). When the comparer reports the
// result equal to the current value nothing happens: no write and no
// scheduled update. Otherwise the value is replaced and an update pulse is
// scheduled. Panics raised by the reducer reach the caller unchanged.
func Dispatch[V, M any](d *Derived[V, M], msg M) {
	d.Dispatch(msg)
}

// apply runs the reducer under the graph-wide dispatch lock and reports
// whether the stored value changed.
func (d *Derived[V, M]) apply(msg M) bool {
	eng.dispatchMu.Lock()
	defer eng.dispatchMu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.guard.check(d.value)

	current := d.value
	next := d.reducer(current, msg)
	if d.comparer.Equal(current, next) {
		return false
	}

	d.value = next
	d.guard.reseal(next)
	return true
}

// read is the cell's selector. In dev mode the first read after each flush
// verifies the stored value.
func (d *Derived[V, M]) read() V {
	d.mu.RLock()
	v, due := d.value, d.guard.due()
	d.mu.RUnlock()

	if due {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.guard.check(d.value)
		v = d.value
	}
	return v
}
