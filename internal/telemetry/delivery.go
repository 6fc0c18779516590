package telemetry

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Delivery accumulates interaction events and hands them off in bounded
// batches. A batch ships when the buffer reaches BatchSize, when the batch
// timer expires, or on an explicit Flush/Complete. The buffer being appended
// to is never the one being transmitted: Flush swaps in a fresh buffer before
// the send function sees the old one, so events logged during network latency
// are never lost.
//
// send is expected to be non-blocking (fire-and-continue): it receives the
// swapped-out batch and is responsible for logging and swallowing any
// delivery failure. Delivery never retries.
type Delivery struct {
	mu sync.Mutex

	log       *zap.Logger
	batchSize int
	timeout   time.Duration
	send      func([]InteractionEvent)

	buf    []InteractionEvent
	timer  *time.Timer
	closed bool
}

// NewDelivery creates a delivery buffer with cfg's batch tuning.
func NewDelivery(cfg Config, log *zap.Logger, send func([]InteractionEvent)) *Delivery {
	cfg = cfg.Normalize()
	return &Delivery{
		log:       log,
		batchSize: cfg.BatchSize,
		timeout:   cfg.BatchTimeout,
		send:      send,
	}
}

// Append adds one event to the buffer, flushing immediately if the size
// threshold is reached and otherwise (re)arming the batch timer.
func (d *Delivery) Append(ev InteractionEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.buf = append(d.buf, ev)
	if len(d.buf) >= d.batchSize {
		d.flushLocked()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.timeout, d.Flush)
}

// Flush ships the current buffer, if any. Flushing an empty buffer is a
// no-op: no network call, no error.
func (d *Delivery) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

func (d *Delivery) flushLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len(d.buf) == 0 {
		return
	}

	batch := d.buf
	d.buf = nil
	d.send(batch)
}

// Complete forces a final flush and closes the buffer; late appends after
// teardown become protected no-ops.
func (d *Delivery) Complete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
	d.closed = true
}

// Len reports the current buffer length.
func (d *Delivery) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buf)
}
