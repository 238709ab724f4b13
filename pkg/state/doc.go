// Package state implements a fine-grained reactive state graph.
//
// Mutable cells are combined through pure projector functions into
// memoized, lazily recomputed views. Writes never notify synchronously:
// they schedule one content-free pulse on a global signal stream, and any
// number of writes before the scheduler fires collapse into that pulse.
//
// # Cells
//
// Derived is a cell driven by a reducer; Value is a cell whose messages
// replace the value directly:
//
//	type Add int
//	total := state.NewDerived(func(n int, m Add) int { return n + int(m) }, 0)
//	total.Dispatch(Add(5))
//
//	name := state.NewValue("ada")
//	state.Update(name, "grace")
//	state.UpdateWith(name, strings.ToUpper)
//
// A dispatch whose result the comparer reports equal to the current value
// is a no-op: nothing is written and no pulse is scheduled.
//
// # Views
//
// Views are read-only. ViewOf aliases a cell without exposing Dispatch;
// View1 through View8 compose typed inputs, ViewN composes a list, and
// Compose accepts the variadic form:
//
//	doubled := state.View1(count, func(n int) int { return n * 2 })
//	label := state.View2(name, doubled, func(s string, n int) string {
//	    return fmt.Sprintf("%s:%d", s, n)
//	})
//	fmt.Println(label.Get())
//
// A composed view re-runs its projector only when an input changed per its
// comparer, and keeps its previous result when the new one is equal, so
// consumers comparing by identity see a stable value.
//
// # Scheduling
//
// Every view subscribes through the signal stream:
//
//	sub := label.Subscribe(func(s string) { fmt.Println(s) })
//	defer sub.Unsubscribe()
//
// On each pulse every subscription pulls its view's value and delivers it
// only if it changed. Writes made while a pulse is being delivered are
// picked up by one follow-up flush. The default scheduler flushes once per frame (1/60s);
// SetScheduler installs ImmediateScheduler, a timer, or a test-driven
// scheduler.
//
// # Dev Mode
//
// Until EnableProdMode is called, every stored value and cached projector
// result is fingerprinted. Each dispatch, and the first read of a value
// after each flush, checks the fingerprint; a value found mutated in place
// is reported according to SetIntegrityMode.
//
// # Thread Safety
//
// Dispatches are serialized by a graph-wide lock and flushes may run on
// scheduler goroutines. Reducers and projectors must be pure; panics they
// raise propagate to the caller of Dispatch or to the flushing goroutine.
package state
