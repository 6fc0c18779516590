package telemetry

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]InteractionEvent
}

func (r *batchRecorder) send(batch []InteractionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *batchRecorder) batch(i int) []InteractionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[i]
}

func TestDeliveryFlushesAtBatchSize(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDelivery(Config{BatchSize: 15, BatchTimeout: time.Hour}, zap.NewNop(), rec.send)

	for i := 0; i < 14; i++ {
		d.Append(InteractionEvent{Type: EventTargetSpawn, Round: 1})
	}
	if rec.count() != 0 {
		t.Fatalf("buffer below threshold must not ship, got %d batches", rec.count())
	}
	if d.Len() != 14 {
		t.Fatalf("expected 14 buffered events, got %d", d.Len())
	}

	d.Append(InteractionEvent{Type: EventTargetSpawn, Round: 1})
	if rec.count() != 1 {
		t.Fatalf("expected exactly one batch at threshold, got %d", rec.count())
	}
	if got := len(rec.batch(0)); got != 15 {
		t.Errorf("expected batch of 15, got %d", got)
	}
	if d.Len() != 0 {
		t.Errorf("buffer must be empty after flush, got %d", d.Len())
	}
}

func TestDeliveryTimerFlush(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDelivery(Config{BatchSize: 100, BatchTimeout: 20 * time.Millisecond}, zap.NewNop(), rec.send)

	d.Append(InteractionEvent{Type: EventTargetHit})
	d.Append(InteractionEvent{Type: EventTargetMiss})

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if rec.count() != 1 {
		t.Fatalf("expected timer to ship one batch, got %d", rec.count())
	}
	if got := len(rec.batch(0)); got != 2 {
		t.Errorf("expected batch of 2, got %d", got)
	}
}

func TestDeliveryEmptyFlushIsNoop(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDelivery(Config{}, zap.NewNop(), rec.send)

	d.Flush()
	d.Flush()

	if rec.count() != 0 {
		t.Fatalf("empty flush must not ship, got %d batches", rec.count())
	}
}

func TestDeliveryCompleteClosesBuffer(t *testing.T) {
	rec := &batchRecorder{}
	d := NewDelivery(Config{BatchSize: 100, BatchTimeout: time.Hour}, zap.NewNop(), rec.send)

	d.Append(InteractionEvent{Type: EventRoundEnd})
	d.Complete()

	if rec.count() != 1 {
		t.Fatalf("expected final flush on complete, got %d batches", rec.count())
	}

	// Late appends after teardown are dropped, not shipped.
	d.Append(InteractionEvent{Type: EventTargetSpawn})
	d.Flush()
	if rec.count() != 1 || d.Len() != 0 {
		t.Errorf("append after complete must be a no-op, got %d batches, %d buffered", rec.count(), d.Len())
	}
}

func TestDeliverySwapBeforeSend(t *testing.T) {
	var shipped []InteractionEvent
	d := NewDelivery(Config{BatchSize: 2, BatchTimeout: time.Hour}, zap.NewNop(), func(batch []InteractionEvent) {
		shipped = batch
	})

	d.Append(InteractionEvent{Round: 1})
	d.Append(InteractionEvent{Round: 2})

	if len(shipped) != 2 {
		t.Fatalf("expected send to receive 2 events, got %d", len(shipped))
	}

	// New appends land in a fresh buffer and never mutate the shipped batch.
	d.Append(InteractionEvent{Round: 3})
	if len(shipped) != 2 || shipped[0].Round != 1 || shipped[1].Round != 2 {
		t.Errorf("shipped batch mutated by later appends: %+v", shipped)
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 event in fresh buffer, got %d", d.Len())
	}
}
