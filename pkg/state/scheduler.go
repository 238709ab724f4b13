package state

import "time"

// Scheduler defers execution of a flush callback. It is called at most once
// per pending flush.
type Scheduler func(flush func())

// FrameInterval is the default delay between a dispatch and its flush,
// one frame at 60 frames per second.
const FrameInterval = time.Second / 60

// DefaultScheduler returns the scheduler installed at startup.
func DefaultScheduler() Scheduler {
	return FrameScheduler(FrameInterval)
}

// FrameScheduler runs the flush on a timer goroutine after d.
func FrameScheduler(d time.Duration) Scheduler {
	return func(flush func()) {
		time.AfterFunc(d, flush)
	}
}

// ImmediateScheduler runs the flush synchronously inside the dispatch that
// requested it.
func ImmediateScheduler(flush func()) {
	flush()
}

// SetScheduler replaces the deferred-execution primitive for all subsequent
// flushes. A nil scheduler restores the default.
func SetScheduler(s Scheduler) {
	if s == nil {
		s = DefaultScheduler()
	}
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.scheduler = s
}
