// Package output coordinates a bounded, scrollable window over a job's
// stdout event history. A paging collaborator fetches event pages, a render
// collaborator materializes them, and a scroll collaborator tracks the
// viewport; the controller sequences the three so their line bookkeeping
// never drifts apart while history is paged or a live stream appends.
package output

import (
	"context"
	"sync"

	"github.com/awxmon/awxmon/internal/api"
)

// Pager fetches event pages and owns the bounded-window line bookkeeping.
type Pager interface {
	// Next, Previous, First and Last fetch one page each. An empty result
	// means no more data in that direction.
	Next(ctx context.Context) ([]api.JobEvent, error)
	Previous(ctx context.Context) ([]api.JobEvent, error)
	First(ctx context.Context) ([]api.JobEvent, error)
	Last(ctx context.Context) ([]api.JobEvent, error)

	// IsOverCapacity reports whether the materialized window has reached its
	// line capacity and must be trimmed before more content is rendered.
	IsOverCapacity() bool
	// Trim drops one page of bookkeeping from the given end and returns the
	// number of lines it covered, which the caller must remove from the
	// renderer to keep the two in sync.
	Trim(fromStart bool) int
	// UpdateLineCount records lines just handed to the renderer.
	// streamAppend distinguishes live growth from page navigation.
	UpdateLineCount(lines int, streamAppend bool)
}

// Renderer materializes events as lines. Append and Prepend return the
// number of lines added; Pop and Shift remove lines from the bottom and top.
type Renderer interface {
	Append(events []api.JobEvent) (int, error)
	Prepend(events []api.JobEvent) (int, error)
	Pop(lines int) error
	Shift(lines int) error
	Clear() error
}

// Scroller exposes the viewport position in lines.
type Scroller interface {
	Position() int
	SetPosition(pos int)
	ScrollHeight() int
	// Pause and Resume suspend auto-scroll while a navigation is in flight.
	Pause()
	Resume()
}

// LiveStream is the optional tailing collaborator. When it is active,
// ScrollEnd toggles its pause state instead of jumping to the bottom.
type LiveStream interface {
	Active() bool
	TogglePause()
}

// Controller sequences pager, renderer and scroller. All operations are
// serialized by an internal mutex so rapid navigation cannot interleave.
type Controller struct {
	pager    Pager
	renderer Renderer
	scroller Scroller
	stream   LiveStream

	mu sync.Mutex
}

// NewController creates a controller. stream may be nil when the job is not
// being tailed.
func NewController(pager Pager, renderer Renderer, scroller Scroller, stream LiveStream) *Controller {
	return &Controller{
		pager:    pager,
		renderer: renderer,
		scroller: scroller,
		stream:   stream,
	}
}

// Next fetches and renders the following page. When the window is over
// capacity the oldest page is trimmed from the top first.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.pager.Next(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	if c.pager.IsOverCapacity() {
		if err := c.renderer.Shift(c.pager.Trim(true)); err != nil {
			return err
		}
	}

	lines, err := c.renderer.Append(events)
	if err != nil {
		return err
	}
	c.pager.UpdateLineCount(lines, false)
	return nil
}

// Previous fetches and renders the preceding page, trimming the newest page
// from the bottom when over capacity. The viewport is re-anchored so the
// content the user was looking at does not move: the prepended height is the
// post-prepend scroll height minus the post-trim height, and the new position
// is that delta added to the initial position.
func (c *Controller) Previous(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	initialPos := c.scroller.Position()

	events, err := c.pager.Previous(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	c.scroller.Pause()
	defer c.scroller.Resume()

	if c.pager.IsOverCapacity() {
		if err := c.renderer.Pop(c.pager.Trim(false)); err != nil {
			return err
		}
	}
	postTrimHeight := c.scroller.ScrollHeight()

	lines, err := c.renderer.Prepend(events)
	if err != nil {
		return err
	}
	c.pager.UpdateLineCount(lines, false)

	c.scroller.SetPosition(c.scroller.ScrollHeight() - postTrimHeight + initialPos)
	return nil
}

// ScrollHome jumps to the first page, re-rendering the window from scratch.
func (c *Controller) ScrollHome(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scroller.Pause()
	defer c.scroller.Resume()

	events, err := c.pager.First(ctx)
	if err != nil {
		return err
	}
	if err := c.renderer.Clear(); err != nil {
		return err
	}
	lines, err := c.renderer.Append(events)
	if err != nil {
		return err
	}
	c.pager.UpdateLineCount(lines, false)

	c.scroller.SetPosition(0)
	return nil
}

// ScrollEnd jumps to the last page. While the live stream is active it
// toggles tailing instead, since tailing and snap-to-bottom are mutually
// exclusive.
func (c *Controller) ScrollEnd(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil && c.stream.Active() {
		c.stream.TogglePause()
		return nil
	}

	c.scroller.Pause()
	defer c.scroller.Resume()

	events, err := c.pager.Last(ctx)
	if err != nil {
		return err
	}
	if err := c.renderer.Clear(); err != nil {
		return err
	}
	lines, err := c.renderer.Append(events)
	if err != nil {
		return err
	}
	c.pager.UpdateLineCount(lines, false)

	c.scroller.SetPosition(c.scroller.ScrollHeight())
	return nil
}

// HandleLiveBatch renders a batch of freshly streamed events. The window is
// trimmed from the top before the append, never after, so it stays bounded
// while tailing.
func (c *Controller) HandleLiveBatch(events []api.JobEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(events) == 0 {
		return nil
	}

	if c.pager.IsOverCapacity() {
		if err := c.renderer.Shift(c.pager.Trim(true)); err != nil {
			return err
		}
	}

	lines, err := c.renderer.Append(events)
	if err != nil {
		return err
	}
	c.pager.UpdateLineCount(lines, true)
	return nil
}
