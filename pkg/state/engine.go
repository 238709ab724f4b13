package state

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/signalstate/pkg/integrity"
	"github.com/vango-dev/signalstate/pkg/stream"
)

// Pulse is the content-free "something changed" notification carried by the
// global signal stream.
type Pulse struct{}

// engine holds the process-wide state of the graph: the scheduler, the
// Idle/PendingFlush flag, the mode switches and the signal stream.
type engine struct {
	// dispatchMu serializes dispatches across all cells.
	dispatchMu sync.Mutex

	// epoch counts flushes. Dev-mode reads verify a stored value at most
	// once per epoch.
	epoch atomic.Uint64

	// mu protects every field below.
	mu sync.Mutex

	scheduler Scheduler
	pending   bool

	// flushing is set while a flush delivers its pulse. A request arriving
	// then sets dirty, and the flush schedules a follow-up when it ends.
	flushing bool
	dirty    bool

	// generation invalidates flushes requested before ResetDefaults.
	generation uint64

	prodMode      bool
	integrityMode IntegrityMode
	warnedMode    bool

	logger *slog.Logger
	instr  Instrumentation
	signal *stream.Behavior[Pulse]
}

var eng = newEngine()

func newEngine() *engine {
	e := &engine{}
	e.resetLocked()
	return e
}

func (e *engine) resetLocked() {
	e.scheduler = DefaultScheduler()
	e.pending = false
	e.flushing = false
	e.dirty = false
	e.generation++
	e.prodMode = false
	e.integrityMode = IntegrityWarn
	e.warnedMode = false
	e.logger = defaultLogger()
	e.instr = nopInstrumentation{}
	e.signal = stream.NewBehavior(Pulse{})
}

func defaultLogger() *slog.Logger {
	return slog.Default().With("component", "signalstate")
}

// scheduleUpdate requests one flush. While a flush is pending further
// requests are absorbed. A request made while the pulse is being delivered
// is remembered and served by a follow-up flush, since subscribers that
// already ran would otherwise miss it.
func (e *engine) scheduleUpdate() {
	e.mu.Lock()
	if e.pending {
		if e.flushing {
			e.dirty = true
		}
		instr := e.instr
		e.mu.Unlock()
		instr.OnSchedule(true)
		return
	}
	e.pending = true
	generation := e.generation
	scheduler := e.scheduler
	instr := e.instr
	e.mu.Unlock()

	instr.OnSchedule(false)
	scheduler(func() { e.flush(generation) })
}

// flush pushes one pulse on the signal stream, then returns to Idle, or
// requests a follow-up flush when updates arrived during delivery. At most
// one flush is in flight.
func (e *engine) flush(generation uint64) {
	e.mu.Lock()
	if generation != e.generation {
		e.mu.Unlock()
		return
	}
	e.flushing = true
	e.epoch.Add(1)
	signal := e.signal
	instr := e.instr
	e.mu.Unlock()

	start := time.Now()
	e.deliver(signal, generation)
	end := time.Now()

	e.mu.Lock()
	if generation != e.generation {
		e.mu.Unlock()
		return
	}
	e.flushing = false
	again := e.dirty
	e.dirty = false
	e.pending = again
	scheduler := e.scheduler
	e.mu.Unlock()

	instr.OnFlush(start, end, signal.Len())
	if again {
		scheduler(func() { e.flush(generation) })
	}
}

// deliver pushes the pulse. A subscriber panic returns the engine to Idle
// before it propagates, so later dispatches still schedule flushes.
func (e *engine) deliver(signal *stream.Behavior[Pulse], generation uint64) {
	ok := false
	defer func() {
		if ok {
			return
		}
		e.mu.Lock()
		if generation == e.generation {
			e.flushing = false
			e.dirty = false
			e.pending = false
		}
		e.mu.Unlock()
	}()

	signal.Next(Pulse{})
	ok = true
}

func (e *engine) signalStream() *stream.Behavior[Pulse] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.signal
}

func (e *engine) instrumentation() Instrumentation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instr
}

func (e *engine) log() *slog.Logger {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logger
}

// freeze seals v in dev mode. In production mode it returns the zero Seal,
// which never verifies anything.
func (e *engine) freeze(v any) integrity.Seal {
	e.mu.Lock()
	if e.prodMode {
		e.mu.Unlock()
		return integrity.Seal{}
	}
	warn := !e.warnedMode && integrity.LooksStripped()
	if warn {
		e.warnedMode = true
	}
	logger := e.logger
	e.mu.Unlock()

	if warn {
		logger.Warn("signalstate is running in dev mode but the binary looks like a release build; " +
			"call state.EnableProdMode() to skip integrity fingerprinting")
	}
	return integrity.Make(v)
}

// reportMutation handles a value found mutated in place.
func (e *engine) reportMutation(err error) {
	e.mu.Lock()
	mode := e.integrityMode
	logger := e.logger
	e.mu.Unlock()

	if mode == IntegrityPanic {
		panic(err)
	}
	logger.Warn("state value mutated in place", "error", err)
}

// Signal returns the global signal stream. Every view subscribes through
// it; a pulse carries no data.
func Signal() stream.Observable[Pulse] {
	return eng.signalStream()
}

// ResetDefaults restores the scheduler, modes, logger and instrumentation to
// their defaults and replaces the signal stream. Pending flushes are
// dropped. It exists for test harnesses; existing subscriptions stay bound
// to the old stream.
func ResetDefaults() {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.resetLocked()
}
