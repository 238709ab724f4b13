package state

import "time"

// Instrumentation observes the engine. Implementations must be cheap and
// must not call back into the graph.
type Instrumentation interface {
	// OnDispatch is called after every dispatch; changed is false when the
	// comparer suppressed the transition.
	OnDispatch(changed bool)

	// OnSchedule is called for every update request; coalesced is true when
	// a flush was already pending and the request was absorbed.
	OnSchedule(coalesced bool)

	// OnFlush is called after a pulse has been delivered to subscribers.
	OnFlush(start, end time.Time, subscribers int)

	// OnProject is called after every projector invocation; retained is false
	// when the result was output-equal to the cached one and discarded.
	OnProject(retained bool)
}

// SetInstrumentation installs i for all subsequent graph activity. Pass nil
// to remove instrumentation.
func SetInstrumentation(i Instrumentation) {
	if i == nil {
		i = nopInstrumentation{}
	}
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.instr = i
}

// MultiInstrumentation fans out to every non-nil instrumentation.
func MultiInstrumentation(list ...Instrumentation) Instrumentation {
	out := make(multiInstrumentation, 0, len(list))
	for _, i := range list {
		if i != nil {
			out = append(out, i)
		}
	}
	return out
}

type multiInstrumentation []Instrumentation

func (m multiInstrumentation) OnDispatch(changed bool) {
	for _, i := range m {
		i.OnDispatch(changed)
	}
}

func (m multiInstrumentation) OnSchedule(coalesced bool) {
	for _, i := range m {
		i.OnSchedule(coalesced)
	}
}

func (m multiInstrumentation) OnFlush(start, end time.Time, subscribers int) {
	for _, i := range m {
		i.OnFlush(start, end, subscribers)
	}
}

func (m multiInstrumentation) OnProject(retained bool) {
	for _, i := range m {
		i.OnProject(retained)
	}
}

type nopInstrumentation struct{}

func (nopInstrumentation) OnDispatch(bool)                   {}
func (nopInstrumentation) OnSchedule(bool)                   {}
func (nopInstrumentation) OnFlush(time.Time, time.Time, int) {}
func (nopInstrumentation) OnProject(bool)                    {}
