package output

import (
	"context"
	"slices"
	"testing"

	"github.com/awxmon/awxmon/internal/api"
)

// The fakes share an op log so tests can assert call ordering across
// collaborators.

type fakePager struct {
	log *[]string

	nextEvents []api.JobEvent
	prevEvents []api.JobEvent
	firstPage  []api.JobEvent
	lastPage   []api.JobEvent

	overCapacity bool
	trimLines    int

	updates []int
	stream  []bool
}

func (p *fakePager) Next(ctx context.Context) ([]api.JobEvent, error) {
	*p.log = append(*p.log, "next")
	return p.nextEvents, nil
}

func (p *fakePager) Previous(ctx context.Context) ([]api.JobEvent, error) {
	*p.log = append(*p.log, "previous")
	return p.prevEvents, nil
}

func (p *fakePager) First(ctx context.Context) ([]api.JobEvent, error) {
	*p.log = append(*p.log, "first")
	return p.firstPage, nil
}

func (p *fakePager) Last(ctx context.Context) ([]api.JobEvent, error) {
	*p.log = append(*p.log, "last")
	return p.lastPage, nil
}

func (p *fakePager) IsOverCapacity() bool { return p.overCapacity }

func (p *fakePager) Trim(fromStart bool) int {
	if fromStart {
		*p.log = append(*p.log, "trim(start)")
	} else {
		*p.log = append(*p.log, "trim(end)")
	}
	return p.trimLines
}

func (p *fakePager) UpdateLineCount(lines int, streamAppend bool) {
	p.updates = append(p.updates, lines)
	p.stream = append(p.stream, streamAppend)
}

type fakeRenderer struct {
	log *[]string

	appended  [][]api.JobEvent
	shifted   []int
	popped    []int
	linesPerE int
}

func (r *fakeRenderer) Append(events []api.JobEvent) (int, error) {
	*r.log = append(*r.log, "append")
	r.appended = append(r.appended, events)
	return len(events) * r.linesPerE, nil
}

func (r *fakeRenderer) Prepend(events []api.JobEvent) (int, error) {
	*r.log = append(*r.log, "prepend")
	return len(events) * r.linesPerE, nil
}

func (r *fakeRenderer) Pop(lines int) error {
	*r.log = append(*r.log, "pop")
	r.popped = append(r.popped, lines)
	return nil
}

func (r *fakeRenderer) Shift(lines int) error {
	*r.log = append(*r.log, "shift")
	r.shifted = append(r.shifted, lines)
	return nil
}

func (r *fakeRenderer) Clear() error {
	*r.log = append(*r.log, "clear")
	return nil
}

type fakeScroller struct {
	log     *[]string
	pos     int
	heights []int
	paused  bool
	set     []int
}

func (s *fakeScroller) Position() int { return s.pos }

func (s *fakeScroller) SetPosition(pos int) {
	*s.log = append(*s.log, "setpos")
	s.set = append(s.set, pos)
}

func (s *fakeScroller) ScrollHeight() int {
	h := s.heights[0]
	s.heights = s.heights[1:]
	return h
}

func (s *fakeScroller) Pause()  { s.paused = true }
func (s *fakeScroller) Resume() { s.paused = false }

type fakeStream struct {
	active  bool
	toggles int
}

func (s *fakeStream) Active() bool { return s.active }
func (s *fakeStream) TogglePause() { s.toggles++ }

func events(n int) []api.JobEvent {
	out := make([]api.JobEvent, n)
	for i := range out {
		out[i] = api.JobEvent{Counter: i + 1, Stdout: "line"}
	}
	return out
}

func TestController_NextTrimsTopBeforeAppend(t *testing.T) {
	var log []string
	pager := &fakePager{log: &log, nextEvents: events(2), overCapacity: true, trimLines: 7}
	renderer := &fakeRenderer{log: &log, linesPerE: 3}
	c := NewController(pager, renderer, &fakeScroller{log: &log}, nil)

	if err := c.Next(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"next", "trim(start)", "shift", "append"}
	if !slices.Equal(log, want) {
		t.Errorf("op order = %v, want %v", log, want)
	}
	if !slices.Equal(renderer.shifted, []int{7}) {
		t.Errorf("shifted lines = %v, want [7]", renderer.shifted)
	}
	if !slices.Equal(pager.updates, []int{6}) || pager.stream[0] {
		t.Errorf("line count update = %v (stream=%v), want [6] (stream=false)", pager.updates, pager.stream)
	}
}

func TestController_NextEmptyPageIsNoOp(t *testing.T) {
	var log []string
	pager := &fakePager{log: &log, overCapacity: true}
	renderer := &fakeRenderer{log: &log}
	c := NewController(pager, renderer, &fakeScroller{log: &log}, nil)

	if err := c.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(log, []string{"next"}) {
		t.Errorf("empty page caused extra ops: %v", log)
	}
}

func TestController_PreviousAnchorsScrollPosition(t *testing.T) {
	var log []string
	pager := &fakePager{log: &log, prevEvents: events(4), overCapacity: true, trimLines: 10}
	renderer := &fakeRenderer{log: &log, linesPerE: 25}
	// First height read is after the trim (500), second after the prepend (900).
	scroller := &fakeScroller{log: &log, pos: 100, heights: []int{500, 900}}
	c := NewController(pager, renderer, scroller, nil)

	if err := c.Previous(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"previous", "trim(end)", "pop", "prepend", "setpos"}
	if !slices.Equal(log, want) {
		t.Errorf("op order = %v, want %v", log, want)
	}
	if !slices.Equal(scroller.set, []int{500}) {
		t.Errorf("scroll position = %v, want [500] (900 - 500 + 100)", scroller.set)
	}
	if scroller.paused {
		t.Error("auto-scroll left paused after navigation")
	}
}

func TestController_ScrollHomeRerendersFromScratch(t *testing.T) {
	var log []string
	pager := &fakePager{log: &log, firstPage: events(3)}
	renderer := &fakeRenderer{log: &log, linesPerE: 1}
	scroller := &fakeScroller{log: &log, pos: 42}
	c := NewController(pager, renderer, scroller, nil)

	if err := c.ScrollHome(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"first", "clear", "append", "setpos"}
	if !slices.Equal(log, want) {
		t.Errorf("op order = %v, want %v", log, want)
	}
	if !slices.Equal(scroller.set, []int{0}) {
		t.Errorf("scroll position = %v, want [0]", scroller.set)
	}
}

func TestController_ScrollEndJumpsToBottom(t *testing.T) {
	var log []string
	pager := &fakePager{log: &log, lastPage: events(2)}
	renderer := &fakeRenderer{log: &log, linesPerE: 1}
	scroller := &fakeScroller{log: &log, heights: []int{300}}
	c := NewController(pager, renderer, scroller, &fakeStream{active: false})

	if err := c.ScrollEnd(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"last", "clear", "append", "setpos"}
	if !slices.Equal(log, want) {
		t.Errorf("op order = %v, want %v", log, want)
	}
	if !slices.Equal(scroller.set, []int{300}) {
		t.Errorf("scroll position = %v, want [300]", scroller.set)
	}
}

func TestController_ScrollEndTogglesActiveStream(t *testing.T) {
	var log []string
	stream := &fakeStream{active: true}
	c := NewController(&fakePager{log: &log}, &fakeRenderer{log: &log}, &fakeScroller{log: &log}, stream)

	if err := c.ScrollEnd(context.Background()); err != nil {
		t.Fatal(err)
	}

	if stream.toggles != 1 {
		t.Errorf("toggles = %d, want 1", stream.toggles)
	}
	if len(log) != 0 {
		t.Errorf("stream toggle also navigated: %v", log)
	}
}

func TestController_LiveBatchTrimsBeforeAppend(t *testing.T) {
	var log []string
	pager := &fakePager{log: &log, overCapacity: true, trimLines: 50}
	renderer := &fakeRenderer{log: &log, linesPerE: 2}
	c := NewController(pager, renderer, &fakeScroller{log: &log}, &fakeStream{active: true})

	if err := c.HandleLiveBatch(events(5)); err != nil {
		t.Fatal(err)
	}

	want := []string{"trim(start)", "shift", "append"}
	if !slices.Equal(log, want) {
		t.Errorf("op order = %v, want %v", log, want)
	}
	if !slices.Equal(pager.updates, []int{10}) || !pager.stream[0] {
		t.Errorf("line count update = %v (stream=%v), want [10] (stream=true)", pager.updates, pager.stream)
	}
}
