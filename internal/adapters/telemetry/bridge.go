package telemetry

import (
	"context"
	"errors"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/chore/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor to bridge OTel spans to a Renderer.
// The renderer can be swapped between runs.
type Bridge struct {
	renderer atomic.Pointer[ports.Renderer]
}

// NewBridge returns a new Bridge. A nil renderer drops span events.
func NewBridge(renderer ports.Renderer) *Bridge {
	b := &Bridge{}
	b.SetRenderer(renderer)
	return b
}

// SetRenderer replaces the renderer receiving span events.
func (b *Bridge) SetRenderer(r ports.Renderer) {
	if r == nil {
		b.renderer.Store(nil)
		return
	}
	b.renderer.Store(&r)
}

func (b *Bridge) current() ports.Renderer {
	if r := b.renderer.Load(); r != nil {
		return *r
	}
	return nil
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	renderer := b.current()
	if renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var parentID string
	if parentSpan := trace.SpanFromContext(parent); parentSpan.SpanContext().IsValid() {
		parentID = parentSpan.SpanContext().SpanID().String()
	}

	renderer.OnCommandStart(
		sc.SpanID().String(),
		parentID,
		s.Name(),
		s.StartTime(),
	)
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	renderer := b.current()
	if renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "command failed"
		}
		err = errors.New(desc)
	}

	var cached bool
	for _, attr := range s.Attributes() {
		if string(attr.Key) == ports.AttributeCached {
			cached = attr.Value.AsBool()
		}
	}

	renderer.OnCommandComplete(
		sc.SpanID().String(),
		s.EndTime(),
		err,
		cached,
	)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
