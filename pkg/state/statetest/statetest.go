package statetest

import (
	"sync"
	"testing"

	"github.com/vango-dev/signalstate/pkg/state"
	"github.com/vango-dev/signalstate/pkg/stream"
)

// ManualScheduler queues flush callbacks until the test calls Flush.
type ManualScheduler struct {
	queue   []func()
	flushes int
	mu      sync.Mutex
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule queues flush. It has the state.Scheduler signature.
func (m *ManualScheduler) Schedule(flush func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, flush)
}

// Pending returns the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush runs every queued callback, including callbacks queued while
// flushing, and returns how many ran.
func (m *ManualScheduler) Flush() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.flushes++
		m.mu.Unlock()

		next()
		ran++
	}
}

// Flushes returns the total number of callbacks run by Flush.
func (m *ManualScheduler) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Setup resets the engine to its defaults, installs a ManualScheduler and
// restores the defaults when the test ends.
func Setup(tb testing.TB) *ManualScheduler {
	tb.Helper()

	state.ResetDefaults()
	m := NewManualScheduler()
	state.SetScheduler(m.Schedule)
	tb.Cleanup(state.ResetDefaults)
	return m
}

// Recorder collects every value a subscription delivers.
type Recorder[T any] struct {
	values []T
	sub    *stream.Subscription
	mu     sync.Mutex
}

// Record subscribes to src until the test ends. The subscription's
// initial delivery is recorded as the first value.
func Record[T any](tb testing.TB, src stream.Observable[T]) *Recorder[T] {
	tb.Helper()

	r := &Recorder[T]{}
	r.sub = src.Subscribe(func(v T) {
		r.mu.Lock()
		r.values = append(r.values, v)
		r.mu.Unlock()
	})
	tb.Cleanup(r.sub.Unsubscribe)
	return r
}

// Values returns a copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value, or the zero value if none.
func (r *Recorder[T]) Last() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		var zero T
		return zero
	}
	return r.values[len(r.values)-1]
}

// Stop unsubscribes early.
func (r *Recorder[T]) Stop() {
	r.sub.Unsubscribe()
}
