// Package telemetry turns command spans into renderer events.
package telemetry

import (
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the number of buffered output bytes that forces delivery.
	DefaultSizeLimit = 4096
	// DefaultInterval is how long output may wait before it is delivered.
	DefaultInterval = 50 * time.Millisecond
)

var errBatcherClosed = errors.New("output batcher is closed")

// BatcherOption configures an OutputBatcher.
type BatcherOption func(*OutputBatcher)

// WithSizeLimit sets the buffered size that triggers delivery.
func WithSizeLimit(n int) BatcherOption {
	return func(b *OutputBatcher) {
		if n > 0 {
			b.sizeLimit = n
		}
	}
}

// WithInterval sets the longest time output stays buffered.
func WithInterval(d time.Duration) BatcherOption {
	return func(b *OutputBatcher) {
		if d > 0 {
			b.interval = d
		}
	}
}

// OutputBatcher coalesces a step's output into chunks for the renderer.
// A chunk is delivered when the size limit is reached or the interval has
// passed since the first undelivered write. Chunks are delivered in write
// order. It is safe for concurrent use.
type OutputBatcher struct {
	sizeLimit int
	interval  time.Duration
	deliver   func([]byte)

	mu     sync.Mutex
	buf    []byte
	timer  *time.Timer
	closed bool
}

// NewOutputBatcher returns a batcher that hands chunks to deliver.
// deliver runs with the batcher locked and must not block.
func NewOutputBatcher(deliver func([]byte), opts ...BatcherOption) *OutputBatcher {
	b := &OutputBatcher{
		sizeLimit: DefaultSizeLimit,
		interval:  DefaultInterval,
		deliver:   deliver,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Write buffers p. The first write after a delivery arms the interval timer.
func (b *OutputBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	b.buf = append(b.buf, p...)
	switch {
	case len(b.buf) >= b.sizeLimit:
		b.deliverLocked()
	case b.timer == nil:
		b.timer = time.AfterFunc(b.interval, b.Flush)
	}
	return len(p), nil
}

// Flush delivers any buffered output now.
func (b *OutputBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.deliverLocked()
	}
}

// Close delivers the remaining output. Later writes fail.
func (b *OutputBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.deliverLocked()
	b.closed = true
	return nil
}

func (b *OutputBatcher) deliverLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.buf) == 0 {
		return
	}

	chunk := b.buf
	b.buf = nil
	if b.deliver != nil {
		b.deliver(chunk)
	}
}
