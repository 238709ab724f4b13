// Package statetest provides helpers for testing code built on package state.
//
//	func TestCounter(t *testing.T) {
//	    sched := statetest.Setup(t)
//	    count := state.NewValue(0)
//	    rec := statetest.Record[int](t, count)
//
//	    state.UpdateWith(count, func(n int) int { return n + 1 })
//	    sched.Flush()
//
//	    if rec.Last() != 1 {
//	        t.Errorf("expected 1, got %d", rec.Last())
//	    }
//	}
//
// Setup resets the engine and installs a ManualScheduler, so flushes happen
// only when the test asks for them.
package statetest
