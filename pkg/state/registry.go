package state

import (
	"runtime"
	"sync"
	"weak"
)

// selectorFactory builds memoized selectors that share one equality
// predicate.
type selectorFactory struct {
	equal func(a, b any) bool
}

// create returns a memoized selector over inputs and project.
func (f *selectorFactory) create(inputs []func() any, project func(args []any) any) func() any {
	m := &memo{
		equal:   f.equal,
		inputs:  inputs,
		project: project,
	}
	return m.selector
}

// comparerRegistry maps comparer identity to its selector factory.
// Keys are weak pointers; an entry is evicted once its comparer is
// collected.
type comparerRegistry struct {
	factories map[any]*selectorFactory
	mu        sync.Mutex
}

var registry = &comparerRegistry{
	factories: make(map[any]*selectorFactory),
}

// factoryFor returns the selector factory for c, creating it on first use.
// The same comparer always yields the same factory.
func factoryFor[T any](c *Comparer[T]) *selectorFactory {
	key := weak.Make(c)

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if f, ok := registry.factories[key]; ok {
		return f
	}

	f := &selectorFactory{equal: c.erased}
	registry.factories[key] = f
	runtime.AddCleanup(c, registry.evict, any(key))
	return f
}

func (r *comparerRegistry) evict(key any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, key)
}

func (r *comparerRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.factories)
}
