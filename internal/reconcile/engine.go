package reconcile

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/throttle"
	"github.com/awxmon/awxmon/internal/ws"
)

// DefaultFetchInterval is the coalescing window for batch fetches of jobs
// that appeared on the stream before appearing in the list.
const DefaultFetchInterval = 5 * time.Second

// FilterState is the caller's current view state, read fresh on every event
// so that ordering and filter changes made mid-stream are honored.
type FilterState struct {
	// OrderBy is the current sort key, "-" prefixed for descending.
	OrderBy string
	// FilterActive reports whether any non-default filter is applied. While
	// true, non-terminal events for unknown jobs are dropped instead of
	// fetched, so filtered-out jobs do not leak into the view.
	FilterActive bool
}

// BatchFetch fetches the given jobs in one request.
type BatchFetch func(ctx context.Context, ids []int) ([]api.Job, error)

// Options configures an Engine.
type Options struct {
	// Messages is the live event stream, usually ws.Stream.Messages().
	Messages <-chan ws.Message
	// Fetch resolves unknown job ids to rows.
	Fetch BatchFetch
	// FilterState is called on every event. Required.
	FilterState func() FilterState
	// Interval is the batch-fetch coalescing window. Defaults to
	// DefaultFetchInterval.
	Interval time.Duration
	// OnChange, if set, is called with a copy of the list after every
	// mutation. It runs on the engine goroutine and must not block.
	OnChange func([]api.Job)
	// Logger for diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine owns the canonical in-memory job list. All event handling runs on a
// single goroutine, so patches are serialized; the batch fetch is the only
// concurrent side channel, and duplicate rows it returns are discarded on
// merge rather than locked against.
type Engine struct {
	opts Options

	mu   sync.RWMutex
	jobs []api.Job

	pendingMu sync.Mutex
	pending   map[int]struct{}

	queue   *throttle.Coalescer[int]
	fetched chan []api.Job

	ctx      context.Context
	done     chan struct{}
	stopOnce sync.Once
}

// NewEngine creates an engine. Call SetSnapshot to seed the list and Start to
// begin consuming events.
func NewEngine(opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultFetchInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		opts:    opts,
		pending: make(map[int]struct{}),
		fetched: make(chan []api.Job, 1),
		done:    make(chan struct{}),
	}
}

// Jobs returns a copy of the current list.
func (e *Engine) Jobs() []api.Job {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.jobs)
}

// SetSnapshot replaces the list with a fresh REST snapshot, sorted by the
// current ordering.
func (e *Engine) SetSnapshot(jobs []api.Job) {
	sorted := SortJobs(slices.Clone(jobs), e.opts.FilterState().OrderBy)
	e.mu.Lock()
	e.jobs = sorted
	e.mu.Unlock()
	e.notify()
}

// Start begins consuming the event stream. It returns immediately.
func (e *Engine) Start(ctx context.Context) {
	e.ctx = ctx
	e.queue = throttle.New(e.opts.Interval, e.flush)
	go e.run(ctx)
}

// Stop cancels the batch-fetch timer and stops the event loop. Idempotent.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.queue != nil {
			e.queue.Stop()
		}
		close(e.done)
	})
}

func (e *Engine) run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-e.opts.Messages:
			if !ok {
				return
			}
			e.handle(msg)
		case jobs := <-e.fetched:
			e.merge(jobs)
		case <-e.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handle applies one stream event: patch on hit, queue on miss, drop when a
// filter is active and the status is not terminal.
func (e *Engine) handle(msg ws.Message) {
	if msg.UnifiedJobID == 0 {
		return
	}

	state := e.opts.FilterState()
	if state.FilterActive && !api.IsTerminalStatus(msg.Status) {
		return
	}

	e.mu.Lock()
	patched := false
	for i, job := range e.jobs {
		if job.ID != msg.UnifiedJobID {
			continue
		}
		// Only status and finished change; everything else stays as-is.
		job.Status = msg.Status
		job.Finished = msg.Finished
		e.jobs[i] = job
		e.jobs = SortJobs(e.jobs, state.OrderBy)
		patched = true
		break
	}
	e.mu.Unlock()

	if patched {
		e.notify()
		return
	}

	e.enqueue(msg.UnifiedJobID)
}

// enqueue adds an unknown id to the pending set for the next batch fetch.
// Ids already pending are not queued twice.
func (e *Engine) enqueue(id int) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	if _, ok := e.pending[id]; ok {
		return
	}
	e.pending[id] = struct{}{}
	e.queue.Add(id)
}

// flush runs on the coalescer goroutine once per window. A failed fetch is
// logged and the ids are requeued for the next window.
func (e *Engine) flush(batch []int) {
	jobs, err := e.opts.Fetch(e.ctx, batch)
	if err != nil {
		e.opts.Logger.Warn("batch job fetch failed, requeueing", "ids", batch, "error", err)
		e.queue.AddAll(batch)
		return
	}

	e.pendingMu.Lock()
	for _, id := range batch {
		delete(e.pending, id)
	}
	e.pendingMu.Unlock()

	select {
	case e.fetched <- jobs:
	case <-e.done:
	}
}

// merge prepends fetched rows to the list, discarding any row whose id
// arrived on the stream while the fetch was in flight.
func (e *Engine) merge(jobs []api.Job) {
	state := e.opts.FilterState()

	e.mu.Lock()
	known := make(map[int]struct{}, len(e.jobs))
	for _, job := range e.jobs {
		known[job.ID] = struct{}{}
	}

	var fresh []api.Job
	for _, job := range jobs {
		if _, ok := known[job.ID]; ok {
			continue
		}
		known[job.ID] = struct{}{}
		fresh = append(fresh, job)
	}

	changed := len(fresh) > 0
	if changed {
		e.jobs = SortJobs(append(fresh, e.jobs...), state.OrderBy)
	}
	e.mu.Unlock()

	if changed {
		e.notify()
	}
}

func (e *Engine) notify() {
	if e.opts.OnChange != nil {
		e.opts.OnChange(e.Jobs())
	}
}
