package state

import (
	"sync/atomic"

	"github.com/vango-dev/signalstate/pkg/stream"
)

// Source is any node of the graph, typed or not. It is implemented by
// *View[T] and, through embedding, by *Derived[V, M].
type Source interface {
	anySelector() func() any
	anyProjector() func(args ...any) any
}

// Reader is a typed read-only handle on a node of the graph.
type Reader[T any] interface {
	Source

	// Get pulls the current value through the node's selector.
	Get() T

	// Subscribe delivers the current value and then every changed value
	// observed on a pulse.
	Subscribe(fn func(T)) *stream.Subscription

	view() *View[T]
}

// View is a read-only, possibly composed, reactive value.
//
// A View owns no state of its own: Get always pulls through the selector,
// which for composed views is memoized over the inputs' selectors. Views
// never reference their consumers.
type View[T any] struct {
	id uint64

	// selector is swapped only by OverrideValue.
	selector atomic.Pointer[func() T]

	// projector combines input values into this view's value. For cells and
	// pass-through views it ignores its arguments.
	projector func(args ...any) T

	// equal suppresses re-delivery of unchanged values to subscribers.
	equal func(a, b T) bool
}

func newView[T any](selector func() T, projector func(args ...any) T, equal func(a, b T) bool) *View[T] {
	if equal == nil {
		equal = referenceEqual[T]
	}
	v := &View[T]{
		id:        nextID(),
		projector: projector,
		equal:     equal,
	}
	v.selector.Store(&selector)
	return v
}

// ID returns the unique identifier of this view.
func (v *View[T]) ID() uint64 {
	return v.id
}

// Get returns the view's current value.
func (v *View[T]) Get() T {
	return (*v.selector.Load())()
}

// Subscribe pipes the global signal stream through this view's selector and
// suppresses values equal to the previous delivery. The current value is
// delivered synchronously before Subscribe returns.
func (v *View[T]) Subscribe(fn func(T)) *stream.Subscription {
	return v.Observable().Subscribe(fn)
}

// Observable exposes the view as a stream of distinct values.
func (v *View[T]) Observable() stream.Observable[T] {
	values := stream.Map(eng.signalStream(), func(Pulse) T {
		return v.Get()
	})
	return stream.DistinctUntilChanged(values, v.equal)
}

func (v *View[T]) view() *View[T] {
	return v
}

func (v *View[T]) anySelector() func() any {
	return func() any { return v.Get() }
}

func (v *View[T]) anyProjector() func(args ...any) any {
	return func(args ...any) any { return v.projector(args...) }
}

// ViewOf returns a read-only alias of src. The alias always reads src's
// current value and shares its projector; it exposes no write path, so a
// cell can hand out a View without granting Dispatch.
func ViewOf[T any](src Reader[T]) *View[T] {
	v := src.view()
	return newView(v.Get, v.projector, v.equal)
}

// Option configures a cell or a composed view.
type Option[T any] func(*options[T])

type options[T any] struct {
	comparer *Comparer[T]
}

// WithComparer sets the comparer. For cells it gates Dispatch; for composed
// views it gates both projector re-runs and retention of new results.
func WithComparer[T any](c *Comparer[T]) Option[T] {
	return func(o *options[T]) {
		o.comparer = c
	}
}

// WithEqual is WithComparer(NewComparer(equal)). Each call creates a new
// comparer identity.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return WithComparer(NewComparer(equal))
}

func buildOptions[T any](opts []Option[T]) options[T] {
	var o options[T]
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// viewIDs is the source of unique view IDs.
var viewIDs atomic.Uint64

func nextID() uint64 {
	return viewIDs.Add(1)
}
