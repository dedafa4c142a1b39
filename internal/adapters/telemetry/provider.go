package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/chore/internal/core/ports"
)

// LogBufferSize determines the size of the async event channel.
const LogBufferSize = 4096

// event is delivered to the renderer by the tracer's loop.
type event func(ports.Renderer)

// OTelTracer is a concrete implementation of ports.Tracer using OpenTelemetry.
// Command output is batched and forwarded to the renderer from a single
// goroutine so chunks arrive in order.
type OTelTracer struct {
	name     string
	tracer   trace.Tracer
	renderer atomic.Pointer[ports.Renderer]
	events   chan event
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex // guards closed against sends on a closed channel
}

// NewOTelTracer creates a new OTelTracer with the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	t := &OTelTracer{
		name:   name,
		tracer: otel.Tracer(name),
		events: make(chan event, LogBufferSize),
		done:   make(chan struct{}),
	}
	go t.runLoop()
	return t
}

func (t *OTelTracer) runLoop() {
	defer close(t.done)
	for ev := range t.events {
		if r := t.renderer.Load(); r != nil {
			ev(*r)
		}
	}
}

// WithProvider makes the tracer create its spans through tp instead of the
// global provider. It must be called before any span is started.
func (t *OTelTracer) WithProvider(tp trace.TracerProvider) *OTelTracer {
	t.tracer = tp.Tracer(t.name)
	return t
}

// WithRenderer sets the renderer receiving plan and log events.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	if r == nil {
		t.renderer.Store(nil)
		return t
	}
	t.renderer.Store(&r)
	return t
}

// Shutdown delivers pending events and stops the background loop.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send queues ev. When block is false the event is dropped if the buffer is full.
func (t *OTelTracer) send(ev event, block bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed || t.renderer.Load() == nil {
		return
	}
	if block {
		t.events <- ev
		return
	}
	select {
	case t.events <- ev:
	default:
		// Drop output rather than stall the command.
	}
}

// drain waits until every event queued so far has been delivered.
func (t *OTelTracer) drain() {
	done := make(chan struct{})
	t.mu.RLock()
	if t.closed || t.renderer.Load() == nil {
		t.mu.RUnlock()
		return
	}
	t.events <- func(ports.Renderer) { close(done) }
	t.mu.RUnlock()
	<-done
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if len(cfg.Attributes) > 0 {
		attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
		for k, v := range cfg.Attributes {
			attrs = append(attrs, toAttribute(k, v))
		}
		startOpts = append(startOpts, trace.WithAttributes(attrs...))
	}

	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	spanID := span.SpanContext().SpanID().String()
	batcher := NewOutputBatcher(func(chunk []byte) {
		t.send(func(r ports.Renderer) { r.OnCommandLog(spanID, chunk) }, false)
	})

	return ctx, &OTelSpan{span: span, batcher: batcher, flush: t.drain}
}

// EmitPlan records the plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, commands []string, prerequisites map[string][]string, targets []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("commands", commands),
			attribute.StringSlice("targets", targets),
		))
	}

	// The plan initializes the renderer, so it is never dropped.
	t.send(func(r ports.Renderer) { r.OnPlanEmit(commands, prerequisites, targets) }, true)
	t.drain()
}

// OTelSpan is a concrete implementation of ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *OutputBatcher
	flush   func()
}

// End delivers the span's remaining output, then completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	if s.flush != nil {
		s.flush()
	}
	s.span.End()
}

// RecordError records an error for the span.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

// Write satisfies io.Writer by batching output for the renderer.
func (s *OTelSpan) Write(p []byte) (n int, err error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
