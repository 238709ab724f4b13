package state

// The helpers in this file reach into nodes for tests and tooling. They are
// not needed to build or consume a graph.

// GetValue pulls the current value of v through its selector.
func GetValue[T any](v Reader[T]) T {
	return v.Get()
}

// ProjectorOf returns the raw projector of v. For cells and pass-through
// views it ignores its arguments and returns the current value.
func ProjectorOf[T any](v Reader[T]) func(args ...any) T {
	return v.view().projector
}

// ComparerOf returns the comparer of d, or nil when d uses ReferenceEqual.
func ComparerOf[V, M any](d *Derived[V, M]) *Comparer[V] {
	return d.comparer
}

// OverrideValue pins the selector of v to value and schedules an update
// pulse. Consumers composed over v observe the pinned value.
func OverrideValue[T any](v Reader[T], value T) {
	selector := func() T { return value }
	v.view().selector.Store(&selector)
	eng.scheduleUpdate()
}

// SpyOnDispatch calls spy with every message dispatched to d, before the
// reducer runs.
func SpyOnDispatch[V, M any](d *Derived[V, M], spy func(msg M)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	reducer := d.reducer
	d.reducer = func(v V, msg M) V {
		spy(msg)
		return reducer(v, msg)
	}
}

// RegistrySize returns the number of live comparer registry entries.
func RegistrySize() int {
	return registry.size()
}
