package middleware

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/signalstate/pkg/state"
)

// Default tracer name for signalstate graphs.
const defaultTracerName = "signalstate"

// FlushSpanName is the name of the span recorded for every flush.
const FlushSpanName = "signalstate.flush"

// OTelConfig configures the OpenTelemetry instrumentation.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "signalstate").
	TracerName string

	// TracerProvider resolves the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Filter determines which flushes to trace, given the subscriber count.
	// If nil, all flushes are traced.
	Filter func(subscribers int) bool

	// Attributes are added to every flush span.
	Attributes []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry instrumentation.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithFlushFilter sets a filter function for flushes.
func WithFlushFilter(filter func(subscribers int) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// Tracing is a state.Instrumentation that records one span per flush.
// Dispatches, coalesced update requests and projector runs observed since
// the previous flush are attached to the span as attributes.
type Tracing struct {
	tracer trace.Tracer
	filter func(subscribers int) bool
	attrs  []attribute.KeyValue

	mu         sync.Mutex
	dispatches int
	suppressed int
	coalesced  int
	retained   int
	discarded  int
}

var _ state.Instrumentation = (*Tracing)(nil)

// OpenTelemetry creates the flush tracing instrumentation.
//
//	state.SetInstrumentation(state.MultiInstrumentation(
//	    middleware.Prometheus(),
//	    middleware.OpenTelemetry(middleware.WithTracerName("checkout")),
//	))
//
// Without WithTracerProvider the tracer comes from the global provider.
// Configure it in main() before the graph starts flushing:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Tracing{
		tracer: tp.Tracer(config.TracerName),
		filter: config.Filter,
		attrs:  config.Attributes,
	}
}

// OnDispatch implements state.Instrumentation.
func (t *Tracing) OnDispatch(changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if changed {
		t.dispatches++
	} else {
		t.suppressed++
	}
}

// OnSchedule implements state.Instrumentation.
func (t *Tracing) OnSchedule(coalesced bool) {
	if !coalesced {
		return
	}
	t.mu.Lock()
	t.coalesced++
	t.mu.Unlock()
}

// OnProject implements state.Instrumentation.
func (t *Tracing) OnProject(retained bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if retained {
		t.retained++
	} else {
		t.discarded++
	}
}

// OnFlush implements state.Instrumentation.
func (t *Tracing) OnFlush(start, end time.Time, subscribers int) {
	t.mu.Lock()
	attrs := append([]attribute.KeyValue{
		attribute.Int("signalstate.subscribers", subscribers),
		attribute.Int("signalstate.dispatches", t.dispatches),
		attribute.Int("signalstate.dispatches_suppressed", t.suppressed),
		attribute.Int("signalstate.updates_coalesced", t.coalesced),
		attribute.Int("signalstate.projections_retained", t.retained),
		attribute.Int("signalstate.projections_discarded", t.discarded),
	}, t.attrs...)
	t.dispatches, t.suppressed, t.coalesced = 0, 0, 0
	t.retained, t.discarded = 0, 0
	t.mu.Unlock()

	if t.filter != nil && !t.filter(subscribers) {
		return
	}

	_, span := t.tracer.Start(
		context.Background(),
		FlushSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(start),
	)
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(end))
}
