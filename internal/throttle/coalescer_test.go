package throttle

import (
	"sync"
	"testing"
	"time"
)

// batchRecorder collects flushed batches for assertions.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]int
}

func (r *batchRecorder) flush(batch []int) {
	r.mu.Lock()
	r.batches = append(r.batches, batch)
	r.mu.Unlock()
}

func (r *batchRecorder) snapshot() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]int, len(r.batches))
	copy(out, r.batches)
	return out
}

func TestCoalescer_BatchesItemsInOneWindow(t *testing.T) {
	rec := &batchRecorder{}
	c := New(50*time.Millisecond, rec.flush)
	defer c.Stop()

	c.Add(1)
	c.Add(2)
	c.Add(3)

	// No flush before the window elapses.
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("flushed before window elapsed: %v", got)
	}

	time.Sleep(120 * time.Millisecond)

	batches := rec.snapshot()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1: %v", len(batches), batches)
	}
	if len(batches[0]) != 3 {
		t.Errorf("batch = %v, want [1 2 3]", batches[0])
	}
}

func TestCoalescer_EmptyWindowDoesNotFlush(t *testing.T) {
	rec := &batchRecorder{}
	c := New(30*time.Millisecond, rec.flush)
	defer c.Stop()

	time.Sleep(100 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("empty windows flushed batches: %v", got)
	}
}

func TestCoalescer_StopCancelsPendingFlush(t *testing.T) {
	rec := &batchRecorder{}
	c := New(50*time.Millisecond, rec.flush)

	c.Add(1)
	c.Stop()
	c.Stop() // idempotent

	time.Sleep(120 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("flushed after Stop: %v", got)
	}
}

func TestCoalescer_SeparateWindowsSeparateBatches(t *testing.T) {
	rec := &batchRecorder{}
	c := New(40*time.Millisecond, rec.flush)
	defer c.Stop()

	c.Add(1)
	time.Sleep(60 * time.Millisecond)
	c.Add(2)
	time.Sleep(60 * time.Millisecond)

	batches := rec.snapshot()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2: %v", len(batches), batches)
	}
}
