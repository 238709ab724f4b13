package stream

import (
	"sync"
	"sync/atomic"
)

// Observable is anything that can be subscribed to for a sequence of values.
type Observable[T any] interface {
	// Subscribe registers fn to receive every value delivered by the source.
	// The returned Subscription stops delivery when unsubscribed.
	Subscribe(fn func(T)) *Subscription
}

// Subscription is the handle returned by Subscribe.
// Unsubscribe is idempotent and safe to call from any goroutine.
type Subscription struct {
	closed   atomic.Bool
	teardown func()
}

func newSubscription(teardown func()) *Subscription {
	return &Subscription{teardown: teardown}
}

// Unsubscribe stops delivery to this subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	if s.closed.CompareAndSwap(false, true) && s.teardown != nil {
		s.teardown()
	}
}

// Closed reports whether Unsubscribe has been called.
func (s *Subscription) Closed() bool {
	return s == nil || s.closed.Load()
}

// subscriber is a single registered callback on a Behavior.
type subscriber[T any] struct {
	id  uint64
	fn  func(T)
	sub *Subscription
}

// Behavior is a hot stream that always holds a current value.
// New subscribers receive the current value immediately, then every value
// pushed with Next.
type Behavior[T any] struct {
	value T
	subs  []*subscriber[T]
	next  uint64
	mu    sync.RWMutex
}

// NewBehavior creates a Behavior holding initial.
func NewBehavior[T any](initial T) *Behavior[T] {
	return &Behavior[T]{value: initial}
}

// Value returns the most recently pushed value.
func (b *Behavior[T]) Value() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Next stores v and delivers it to every current subscriber.
// Subscribers are copied before delivery so callbacks may subscribe,
// unsubscribe or push without deadlocking.
func (b *Behavior[T]) Next(v T) {
	b.mu.Lock()
	b.value = v
	subs := make([]*subscriber[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if s.sub.Closed() {
			continue
		}
		s.fn(v)
	}
}

// Subscribe registers fn and delivers the current value to it synchronously.
func (b *Behavior[T]) Subscribe(fn func(T)) *Subscription {
	b.mu.Lock()
	b.next++
	s := &subscriber[T]{id: b.next, fn: fn}
	s.sub = newSubscription(func() { b.remove(s.id) })
	b.subs = append(b.subs, s)
	current := b.value
	b.mu.Unlock()

	fn(current)
	return s.sub
}

// Len returns the number of live subscribers.
func (b *Behavior[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Behavior[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// mapped is the Observable returned by Map.
type mapped[T, U any] struct {
	src Observable[T]
	fn  func(T) U
}

// Map transforms every value from src through fn.
// The transform runs once per delivered value per subscription.
func Map[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return &mapped[T, U]{src: src, fn: fn}
}

func (m *mapped[T, U]) Subscribe(fn func(U)) *Subscription {
	return m.src.Subscribe(func(v T) {
		fn(m.fn(v))
	})
}

// distinct is the Observable returned by DistinctUntilChanged.
type distinct[T any] struct {
	src   Observable[T]
	equal func(a, b T) bool
}

// DistinctUntilChanged suppresses values equal (per equal) to the previous
// delivery. The first value is always delivered. State is per subscription.
func DistinctUntilChanged[T any](src Observable[T], equal func(a, b T) bool) Observable[T] {
	return &distinct[T]{src: src, equal: equal}
}

func (d *distinct[T]) Subscribe(fn func(T)) *Subscription {
	var (
		mu   sync.Mutex
		last T
		seen bool
	)
	return d.src.Subscribe(func(v T) {
		mu.Lock()
		if seen && d.equal(last, v) {
			mu.Unlock()
			return
		}
		last = v
		seen = true
		mu.Unlock()

		fn(v)
	})
}
