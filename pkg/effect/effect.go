package effect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/signalstate/pkg/state"
	"github.com/vango-dev/signalstate/pkg/stream"
)

// Effect is a running subscription of a computation to views.
type Effect struct {
	name    string
	onError func(error)
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// stopWatch unregisters the parent-context hook.
	stopWatch func() bool

	sub       *stream.Subscription
	cancelRun context.CancelFunc
	stopped   bool
	mu        sync.Mutex

	runs sync.WaitGroup

	started atomic.Uint64
	failed  atomic.Uint64
}

// Watch runs fn with the current value of v and again with every changed
// value, until ctx is done or Stop is called.
func Watch[T any](ctx context.Context, v state.Reader[T], fn func(ctx context.Context, value T) error, opts ...Option) *Effect {
	e := newEffect(ctx, opts)
	e.attach(v.Subscribe(func(value T) {
		e.start(func(ctx context.Context) error {
			return fn(ctx, value)
		})
	}))
	return e
}

// WatchAll runs fn with the current values of views, in order, and again
// whenever any of them changes. With no views fn runs once.
func WatchAll(ctx context.Context, views []state.Source, fn func(ctx context.Context, values []any) error, opts ...Option) *Effect {
	tuple := state.ViewN(views, func(args []any) []any {
		values := make([]any, len(args))
		copy(values, args)
		return values
	})
	return Watch(ctx, tuple, fn, opts...)
}

func newEffect(ctx context.Context, opts []Option) *Effect {
	var cfg config
	for _, opt := range opts {
		opt.applyEffect(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default().With("component", "effect")
	}

	e := &Effect{
		name:    cfg.name,
		onError: cfg.onError,
		logger:  logger,
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	return e
}

// attach records the subscription and ties the effect's lifetime to the
// parent context. The subscription's initial delivery has already started
// the first run.
func (e *Effect) attach(sub *stream.Subscription) {
	e.mu.Lock()
	e.sub = sub
	stopped := e.stopped
	e.mu.Unlock()

	if stopped {
		sub.Unsubscribe()
		return
	}
	stopWatch := context.AfterFunc(e.ctx, e.Stop)
	e.mu.Lock()
	e.stopWatch = stopWatch
	e.mu.Unlock()
}

// start cancels the in-flight run, if any, and launches run in a new
// goroutine.
func (e *Effect) start(run func(ctx context.Context) error) {
	e.mu.Lock()
	if e.stopped || e.ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	if e.cancelRun != nil {
		e.cancelRun()
	}
	runCtx, cancel := context.WithCancel(e.ctx)
	e.cancelRun = cancel
	e.runs.Add(1)
	e.mu.Unlock()

	e.started.Add(1)

	go func() {
		defer e.runs.Done()
		defer cancel()

		err := e.invoke(runCtx, run)
		if err == nil {
			return
		}
		if runCtx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		e.failed.Add(1)
		e.report(err)
	}()
}

func (e *Effect) invoke(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("effect: run panicked: %v", r)
		}
	}()
	return run(ctx)
}

func (e *Effect) report(err error) {
	if e.onError != nil {
		e.onError(err)
		return
	}
	e.logger.Error("effect run failed", "effect", e.name, "error", err)
}

// Stop unsubscribes the effect, cancels the in-flight run and waits for it
// to return. It is safe to call more than once, but not from inside a run.
func (e *Effect) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		e.runs.Wait()
		return
	}
	e.stopped = true
	sub := e.sub
	stopWatch := e.stopWatch
	e.mu.Unlock()

	sub.Unsubscribe()
	if stopWatch != nil {
		stopWatch()
	}
	e.cancel()
	e.runs.Wait()
}

// Runs returns how many runs have been started.
func (e *Effect) Runs() uint64 {
	return e.started.Load()
}

// Failures returns how many runs ended with a reported error.
func (e *Effect) Failures() uint64 {
	return e.failed.Load()
}
