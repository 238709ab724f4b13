package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/signalstate/pkg/state"
	"github.com/vango-dev/signalstate/pkg/stream"
)

// ErrDuplicateView is returned by Register when the name is taken.
var ErrDuplicateView = errors.New("inspect: view already registered")

// Snapshot is the value of every registered view at one pulse.
type Snapshot struct {
	// Seq counts pulses observed since Start; 0 is the initial snapshot.
	Seq   uint64                     `json:"seq"`
	Time  time.Time                  `json:"time"`
	Views map[string]json.RawMessage `json:"views"`
}

// Inspector exposes named views over HTTP and pushes a snapshot to
// websocket clients on every pulse.
type Inspector struct {
	views map[string]func() any
	mu    sync.RWMutex

	seq     atomic.Uint64
	started atomic.Bool
	sub     *stream.Subscription
	subMu   sync.Mutex

	feed     *Feed
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = l
	}
}

// WithGatherer sets the registry served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(i *Inspector) {
		i.gatherer = g
	}
}

// New creates an Inspector with no registered views.
func New(opts ...Option) *Inspector {
	i := &Inspector{
		views:    make(map[string]func() any),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.Default().With("component", "inspect")
	}
	i.feed = NewFeed(i.logger)
	return i
}

// Register exposes v under name.
func Register[T any](i *Inspector, name string, v state.Reader[T]) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.views[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateView, name)
	}
	i.views[name] = func() any { return v.Get() }
	return nil
}

// Unregister removes the view registered under name, if any.
func (i *Inspector) Unregister(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.views, name)
}

// Names returns the registered view names in sorted order.
func (i *Inspector) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	names := make([]string, 0, len(i.views))
	for name := range i.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot reads every registered view.
func (i *Inspector) Snapshot() Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()

	views := make(map[string]json.RawMessage, len(i.views))
	for name, get := range i.views {
		views[name] = encodeValue(get())
	}
	return Snapshot{
		Seq:   i.seq.Load(),
		Time:  time.Now().UTC(),
		Views: views,
	}
}

// lookup reads one view.
func (i *Inspector) lookup(name string) (json.RawMessage, bool) {
	i.mu.RLock()
	get, ok := i.views[name]
	i.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return encodeValue(get()), true
}

// encodeValue encodes v, or an error object when v has no JSON form.
func encodeValue(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(map[string]string{
			"error": err.Error(),
			"type":  fmt.Sprintf("%T", v),
		})
	}
	return data
}

// Start subscribes the inspector to the signal stream. The current
// snapshot is published immediately, then one per pulse.
func (i *Inspector) Start() {
	if !i.started.CompareAndSwap(false, true) {
		return
	}

	var pulses atomic.Uint64
	sub := state.Signal().Subscribe(func(state.Pulse) {
		i.seq.Store(pulses.Add(1) - 1)
		i.feed.Publish(i.Snapshot())
	})

	i.subMu.Lock()
	i.sub = sub
	i.subMu.Unlock()
	i.logger.Debug("inspector started", "views", len(i.Names()))
}

// Close unsubscribes from the signal stream and disconnects feed clients.
func (i *Inspector) Close() {
	i.subMu.Lock()
	sub := i.sub
	i.sub = nil
	i.subMu.Unlock()

	sub.Unsubscribe()
	i.feed.Close()
}

// Feed returns the websocket feed.
func (i *Inspector) Feed() *Feed {
	return i.feed
}
