package output

import (
	"context"
	"testing"

	"github.com/awxmon/awxmon/internal/api"
)

// fakeSource serves a fixed event history sliced into pages.
type fakeSource struct {
	total    int
	requests []int
}

func (s *fakeSource) JobEvents(ctx context.Context, jobID, page, pageSize int) (*api.EventPage, error) {
	s.requests = append(s.requests, page)

	start := (page - 1) * pageSize
	var results []api.JobEvent
	for i := start; i < start+pageSize && i < s.total; i++ {
		results = append(results, api.JobEvent{Counter: i + 1, StartLine: i, EndLine: i + 1})
	}
	return &api.EventPage{Count: s.total, Results: results}, nil
}

func TestEventPager_NextWalksForward(t *testing.T) {
	src := &fakeSource{total: 25}
	p := NewEventPager(src, 1, 10, -1)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		events, err := p.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) == 0 {
			t.Fatalf("page %d unexpectedly empty", want)
		}
		p.UpdateLineCount(len(events), false)
	}

	// Past the end the result is empty.
	events, err := p.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events past the end", len(events))
	}

	if got := []int{src.requests[0], src.requests[1], src.requests[2]}; got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("requested pages = %v, want 1 2 3", src.requests)
	}
	if p.LineCount() != 25 {
		t.Errorf("line count = %d, want 25", p.LineCount())
	}
}

func TestEventPager_PreviousStopsAtPageOne(t *testing.T) {
	src := &fakeSource{total: 50}
	p := NewEventPager(src, 1, 10, -1)
	ctx := context.Background()

	if _, err := p.Next(ctx); err != nil {
		t.Fatal(err)
	}
	p.UpdateLineCount(10, false)

	events, err := p.Previous(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events before page one", len(events))
	}
	if len(src.requests) != 1 {
		t.Errorf("previous at page one still hit the source: %v", src.requests)
	}
}

func TestEventPager_LastJumpsToFinalPage(t *testing.T) {
	src := &fakeSource{total: 42}
	p := NewEventPager(src, 1, 10, -1)
	ctx := context.Background()

	events, err := p.Last(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("last page has %d events, want 2", len(events))
	}
	// Page 1 to learn the count, then page 5.
	if got := src.requests[len(src.requests)-1]; got != 5 {
		t.Errorf("final request = page %d, want 5", got)
	}

	// The window can now walk backward from the end.
	prev, err := p.Previous(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(prev) != 10 || prev[0].Counter != 31 {
		t.Errorf("previous from last = %d events starting at %d, want 10 at 31", len(prev), prev[0].Counter)
	}
}

func TestEventPager_CapacityAndTrim(t *testing.T) {
	src := &fakeSource{total: 100}
	p := NewEventPager(src, 1, 10, 20)
	ctx := context.Background()

	if p.IsOverCapacity() {
		t.Fatal("empty window reported over capacity")
	}

	for i := 0; i < 2; i++ {
		if _, err := p.Next(ctx); err != nil {
			t.Fatal(err)
		}
		p.UpdateLineCount(10, false)
	}

	if !p.IsOverCapacity() {
		t.Fatal("window at capacity not reported as over")
	}

	// Fetch one more page; the pending page must survive the trim.
	if _, err := p.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if got := p.Trim(true); got != 10 {
		t.Errorf("trim removed %d lines, want 10", got)
	}
	p.UpdateLineCount(10, false)

	if p.LineCount() != 20 {
		t.Errorf("line count after trim = %d, want 20", p.LineCount())
	}
}

func TestEventPager_StreamAppendGrowsNewestPage(t *testing.T) {
	src := &fakeSource{total: 10}
	p := NewEventPager(src, 1, 10, -1)
	ctx := context.Background()

	if _, err := p.Next(ctx); err != nil {
		t.Fatal(err)
	}
	p.UpdateLineCount(10, false)

	p.UpdateLineCount(3, true)
	if p.LineCount() != 13 {
		t.Errorf("line count = %d, want 13", p.LineCount())
	}

	// All lines live on one page, so a trim removes everything at once.
	if got := p.Trim(true); got != 13 {
		t.Errorf("trim removed %d lines, want 13", got)
	}
}
