// Package throttle provides a coalescing timer: items added in quick
// succession are delivered downstream as one batch per interval instead of
// one call per item.
package throttle

import (
	"sync"
	"time"
)

// Coalescer accumulates items and flushes them as a single batch on a fixed
// interval. Empty windows produce no flush. Stop is idempotent and cancels
// the timer; items still buffered at Stop are discarded.
type Coalescer[T any] struct {
	interval time.Duration
	flush    func([]T)

	mu    sync.Mutex
	items []T

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Coalescer that calls flush with the accumulated batch every
// interval. flush runs on the coalescer's own goroutine; it must not block
// longer than the caller can tolerate batches queueing up.
func New[T any](interval time.Duration, flush func([]T)) *Coalescer[T] {
	c := &Coalescer[T]{
		interval: interval,
		flush:    flush,
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Add buffers an item for the next flush.
func (c *Coalescer[T]) Add(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
}

// AddAll buffers several items for the next flush.
func (c *Coalescer[T]) AddAll(items []T) {
	c.mu.Lock()
	c.items = append(c.items, items...)
	c.mu.Unlock()
}

// Stop cancels the flush timer. Safe to call more than once.
func (c *Coalescer[T]) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Coalescer[T]) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			batch := c.items
			c.items = nil
			c.mu.Unlock()

			if len(batch) > 0 {
				c.flush(batch)
			}
		}
	}
}
