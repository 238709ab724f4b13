package state

import "sync"

// memo is a memoized selector over a fixed list of input selectors.
//
// Input equality decides whether the projector runs at all. Output
// equality, checked separately, decides whether a freshly projected result
// replaces the cached one. A projector may therefore run and have its
// result discarded, which keeps the returned value identical for consumers
// that compare by reference.
type memo struct {
	equal   func(a, b any) bool
	inputs  []func() any
	project func(args []any) any

	lastArgs   []any
	hasArgs    bool
	lastResult any
	hasResult  bool

	// guard fingerprints lastResult in dev mode.
	guard guard

	mu sync.Mutex
}

func (m *memo) selector() any {
	m.mu.Lock()
	defer m.mu.Unlock()

	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input()
	}

	if m.hasArgs && m.hasResult && m.argsEqual(args) {
		m.lastArgs = args
		return m.cached()
	}

	m.lastArgs = args
	m.hasArgs = true

	next := m.project(args)
	retained := !m.hasResult || !m.equal(m.lastResult, next)
	eng.instrumentation().OnProject(retained)

	if !retained {
		return m.cached()
	}

	m.lastResult = next
	m.hasResult = true
	m.guard.reseal(next)
	return m.lastResult
}

func (m *memo) argsEqual(args []any) bool {
	if len(args) != len(m.lastArgs) {
		return false
	}
	for i, arg := range args {
		if !m.equal(arg, m.lastArgs[i]) {
			return false
		}
	}
	return true
}

// cached returns lastResult. In dev mode the first use after each flush
// checks it was not mutated since it was sealed.
func (m *memo) cached() any {
	if m.guard.due() {
		m.guard.check(m.lastResult)
	}
	return m.lastResult
}
