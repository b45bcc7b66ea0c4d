package output

import (
	"context"
	"sync"

	"github.com/awxmon/awxmon/internal/api"
)

// Defaults for the event window. Five pages of fifty events is enough to
// scroll comfortably while keeping memory bounded on very large jobs.
const (
	DefaultPageSize = 50
	DefaultCapacity = 5 * DefaultPageSize
)

// EventSource fetches one page of a job's stdout events.
type EventSource interface {
	JobEvents(ctx context.Context, jobID, page, pageSize int) (*api.EventPage, error)
}

type pendingSide int

const (
	pendingNone pendingSide = iota
	pendingStart
	pendingEnd
)

// pageInfo tracks the rendered line count of one materialized page. A page is
// recorded with zero lines when fetched and filled in by UpdateLineCount once
// the renderer reports how many lines it produced.
type pageInfo struct {
	page  int
	lines int
}

// EventPager implements Pager over the REST event endpoint. It keeps a
// contiguous window of pages and their rendered line counts; capacity is
// expressed in lines, and zero means unbounded.
type EventPager struct {
	source   EventSource
	jobID    int
	pageSize int
	capacity int

	mu        sync.Mutex
	pages     []pageInfo
	lineCount int
	pending   pendingSide
	total     int
}

// NewEventPager creates a pager for jobID. pageSize and capacity fall back to
// the package defaults when zero or negative; pass capacity < 0 for an
// unbounded window.
func NewEventPager(source EventSource, jobID, pageSize, capacity int) *EventPager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	} else if capacity < 0 {
		capacity = 0
	}
	return &EventPager{
		source:   source,
		jobID:    jobID,
		pageSize: pageSize,
		capacity: capacity,
	}
}

// Next fetches the page after the window's end.
func (p *EventPager) Next(ctx context.Context) ([]api.JobEvent, error) {
	p.mu.Lock()
	target := 1
	if len(p.pages) > 0 {
		target = p.pages[len(p.pages)-1].page + 1
	}
	p.mu.Unlock()

	events, err := p.fetch(ctx, target)
	if err != nil || len(events) == 0 {
		return nil, err
	}

	p.mu.Lock()
	p.pages = append(p.pages, pageInfo{page: target})
	p.pending = pendingEnd
	p.mu.Unlock()
	return events, nil
}

// Previous fetches the page before the window's start. At page one there is
// no previous page and the result is empty.
func (p *EventPager) Previous(ctx context.Context) ([]api.JobEvent, error) {
	p.mu.Lock()
	if len(p.pages) == 0 || p.pages[0].page <= 1 {
		p.mu.Unlock()
		return nil, nil
	}
	target := p.pages[0].page - 1
	p.mu.Unlock()

	events, err := p.fetch(ctx, target)
	if err != nil || len(events) == 0 {
		return nil, err
	}

	p.mu.Lock()
	p.pages = append([]pageInfo{{page: target}}, p.pages...)
	p.pending = pendingStart
	p.mu.Unlock()
	return events, nil
}

// First resets the window to page one.
func (p *EventPager) First(ctx context.Context) ([]api.JobEvent, error) {
	events, err := p.fetch(ctx, 1)
	if err != nil {
		return nil, err
	}
	p.reset(1)
	return events, nil
}

// Last resets the window to the final page.
func (p *EventPager) Last(ctx context.Context) ([]api.JobEvent, error) {
	p.mu.Lock()
	total := p.total
	p.mu.Unlock()

	if total == 0 {
		// The event count is learned from any page fetch.
		if _, err := p.fetch(ctx, 1); err != nil {
			return nil, err
		}
		p.mu.Lock()
		total = p.total
		p.mu.Unlock()
	}

	last := (total + p.pageSize - 1) / p.pageSize
	if last < 1 {
		last = 1
	}

	events, err := p.fetch(ctx, last)
	if err != nil {
		return nil, err
	}
	p.reset(last)
	return events, nil
}

// IsOverCapacity reports whether the window has reached its line capacity.
func (p *EventPager) IsOverCapacity() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity > 0 && p.lineCount >= p.capacity
}

// Trim drops the page at the given end and returns its line count. The page
// awaiting its line count is never trimmed.
func (p *EventPager) Trim(fromStart bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pages) == 0 {
		return 0
	}

	idx := len(p.pages) - 1
	guarded := p.pending == pendingEnd
	if fromStart {
		idx = 0
		guarded = p.pending == pendingStart
	}
	if guarded && len(p.pages) == 1 {
		return 0
	}
	if guarded {
		// Skip the pending page at this end.
		if fromStart {
			idx = 1
		} else {
			idx = len(p.pages) - 2
		}
	}

	lines := p.pages[idx].lines
	p.pages = append(p.pages[:idx], p.pages[idx+1:]...)
	p.lineCount -= lines
	return lines
}

// UpdateLineCount records lines just rendered. Navigation updates fill in the
// pending page; stream appends grow the newest page in place.
func (p *EventPager) UpdateLineCount(lines int, streamAppend bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lineCount += lines

	if streamAppend {
		if len(p.pages) == 0 {
			p.pages = []pageInfo{{page: 1, lines: lines}}
			return
		}
		p.pages[len(p.pages)-1].lines += lines
		return
	}

	switch p.pending {
	case pendingStart:
		p.pages[0].lines += lines
	case pendingEnd:
		p.pages[len(p.pages)-1].lines += lines
	}
	p.pending = pendingNone
}

// LineCount returns the number of lines currently in the window.
func (p *EventPager) LineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lineCount
}

func (p *EventPager) fetch(ctx context.Context, page int) ([]api.JobEvent, error) {
	resp, err := p.source.JobEvents(ctx, p.jobID, page, p.pageSize)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.total = resp.Count
	p.mu.Unlock()
	return resp.Results, nil
}

func (p *EventPager) reset(page int) {
	p.mu.Lock()
	p.pages = []pageInfo{{page: page}}
	p.lineCount = 0
	p.pending = pendingEnd
	p.mu.Unlock()
}
