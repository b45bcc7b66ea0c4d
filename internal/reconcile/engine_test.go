package reconcile

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/awxmon/awxmon/internal/api"
	"github.com/awxmon/awxmon/internal/ws"
)

// fetchRecorder records batch-fetch calls and serves canned jobs.
type fetchRecorder struct {
	mu      sync.Mutex
	calls   [][]int
	results []api.Job
	err     error
}

func (f *fetchRecorder) fetch(ctx context.Context, ids []int) ([]api.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := slices.Clone(ids)
	slices.Sort(batch)
	f.calls = append(f.calls, batch)
	if f.err != nil {
		err := f.err
		f.err = nil
		return nil, err
	}
	return f.results, nil
}

func (f *fetchRecorder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fetchRecorder) call(i int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type engineFixture struct {
	engine *Engine
	msgs   chan ws.Message
	fetch  *fetchRecorder
	state  *FilterState
	stateM sync.Mutex
}

func (fx *engineFixture) setState(s FilterState) {
	fx.stateM.Lock()
	*fx.state = s
	fx.stateM.Unlock()
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	fx := &engineFixture{
		msgs:  make(chan ws.Message, 16),
		fetch: &fetchRecorder{},
		state: &FilterState{OrderBy: "id"},
	}
	fx.engine = NewEngine(Options{
		Messages: fx.msgs,
		Fetch:    fx.fetch.fetch,
		FilterState: func() FilterState {
			fx.stateM.Lock()
			defer fx.stateM.Unlock()
			return *fx.state
		},
		Interval: 30 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	fx.engine.Start(context.Background())
	t.Cleanup(fx.engine.Stop)
	return fx
}

func TestEngine_PatchPreservesUnrelatedFields(t *testing.T) {
	fx := newEngineFixture(t)

	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	job := api.Job{ID: 1, Name: "deploy prod", Status: api.StatusRunning, Started: &started, Elapsed: 12.5}
	job.SummaryFields.CreatedBy.Username = "ann"
	fx.engine.SetSnapshot([]api.Job{job})

	finished := started.Add(time.Minute)
	fx.msgs <- ws.Message{UnifiedJobID: 1, Status: api.StatusSuccessful, Finished: &finished}

	waitFor(t, "patch applied", func() bool {
		jobs := fx.engine.Jobs()
		return len(jobs) == 1 && jobs[0].Status == api.StatusSuccessful
	})

	got := fx.engine.Jobs()[0]
	if got.Finished == nil || !got.Finished.Equal(finished) {
		t.Errorf("Finished = %v, want %v", got.Finished, finished)
	}
	if got.Name != job.Name || got.Elapsed != job.Elapsed ||
		got.SummaryFields.CreatedBy.Username != "ann" ||
		got.Started == nil || !got.Started.Equal(started) {
		t.Errorf("patch touched unrelated fields: %+v", got)
	}
}

func TestEngine_MissQueuesOneBatchFetch(t *testing.T) {
	fx := newEngineFixture(t)
	fx.fetch.results = []api.Job{{ID: 5}, {ID: 6}}
	fx.engine.SetSnapshot(nil)

	fx.msgs <- ws.Message{UnifiedJobID: 5, Status: api.StatusPending}
	fx.msgs <- ws.Message{UnifiedJobID: 6, Status: api.StatusPending}
	fx.msgs <- ws.Message{UnifiedJobID: 5, Status: api.StatusRunning} // duplicate id

	// Nothing is fetched before the window elapses.
	time.Sleep(10 * time.Millisecond)
	if n := fx.fetch.callCount(); n != 0 {
		t.Fatalf("fetch called %d times before window elapsed", n)
	}

	waitFor(t, "batch fetch", func() bool { return fx.fetch.callCount() >= 1 })

	if n := fx.fetch.callCount(); n != 1 {
		t.Errorf("fetch called %d times, want 1", n)
	}
	if got, want := fx.fetch.call(0), []int{5, 6}; !slices.Equal(got, want) {
		t.Errorf("batch = %v, want %v", got, want)
	}

	waitFor(t, "merge", func() bool { return len(fx.engine.Jobs()) == 2 })
}

func TestEngine_MergeDiscardsDuplicates(t *testing.T) {
	fx := newEngineFixture(t)
	fx.engine.SetSnapshot([]api.Job{{ID: 1, Name: "original"}})
	fx.fetch.results = []api.Job{{ID: 1, Name: "stale copy"}, {ID: 2, Name: "new"}}

	fx.msgs <- ws.Message{UnifiedJobID: 2, Status: api.StatusPending}

	waitFor(t, "merge", func() bool { return len(fx.engine.Jobs()) == 2 })

	jobs := fx.engine.Jobs()
	seen := map[int]int{}
	for _, j := range jobs {
		seen[j.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %d appears %d times", id, n)
		}
	}
	for _, j := range jobs {
		if j.ID == 1 && j.Name != "original" {
			t.Errorf("batch result replaced existing row: %+v", j)
		}
	}
}

func TestEngine_FilteredViewDropsNonTerminalEvents(t *testing.T) {
	fx := newEngineFixture(t)
	fx.setState(FilterState{OrderBy: "id", FilterActive: true})
	fx.fetch.results = []api.Job{{ID: 9, Status: api.StatusFailed}}
	fx.engine.SetSnapshot(nil)

	// Non-terminal event for an unknown id is dropped outright.
	fx.msgs <- ws.Message{UnifiedJobID: 8, Status: api.StatusRunning}
	time.Sleep(100 * time.Millisecond)
	if n := fx.fetch.callCount(); n != 0 {
		t.Fatalf("dropped event still triggered %d fetches", n)
	}
	if len(fx.engine.Jobs()) != 0 {
		t.Fatal("dropped event mutated the list")
	}

	// A terminal event passes the filter.
	fx.msgs <- ws.Message{UnifiedJobID: 9, Status: api.StatusFailed}
	waitFor(t, "terminal event fetched", func() bool { return fx.fetch.callCount() >= 1 })
	if got := fx.fetch.call(0); !slices.Equal(got, []int{9}) {
		t.Errorf("batch = %v, want [9]", got)
	}
}

func TestEngine_FetchFailureRequeuesIDs(t *testing.T) {
	fx := newEngineFixture(t)
	fx.fetch.err = context.DeadlineExceeded
	fx.fetch.results = []api.Job{{ID: 3}}
	fx.engine.SetSnapshot(nil)

	fx.msgs <- ws.Message{UnifiedJobID: 3, Status: api.StatusPending}

	// First window fails, second window retries the same id.
	waitFor(t, "retry fetch", func() bool { return fx.fetch.callCount() >= 2 })
	if got := fx.fetch.call(1); !slices.Equal(got, []int{3}) {
		t.Errorf("retry batch = %v, want [3]", got)
	}
	waitFor(t, "merge after retry", func() bool { return len(fx.engine.Jobs()) == 1 })
}

func TestEngine_PatchResortsByCurrentOrder(t *testing.T) {
	fx := newEngineFixture(t)
	fx.setState(FilterState{OrderBy: "-finished"})

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fx.engine.SetSnapshot([]api.Job{
		{ID: 1, Status: api.StatusRunning},
		{ID: 2, Status: api.StatusSuccessful, Finished: &t1},
	})

	t2 := t1.Add(time.Hour)
	fx.msgs <- ws.Message{UnifiedJobID: 1, Status: api.StatusSuccessful, Finished: &t2}

	waitFor(t, "resort", func() bool {
		jobs := fx.engine.Jobs()
		return len(jobs) == 2 && jobs[0].ID == 1
	})
}

func TestEngine_EventWithoutJobIDIsIgnored(t *testing.T) {
	fx := newEngineFixture(t)
	fx.engine.SetSnapshot([]api.Job{{ID: 1, Status: api.StatusRunning}})

	fx.msgs <- ws.Message{GroupName: "schedules", Status: "changed"}
	time.Sleep(50 * time.Millisecond)

	if n := fx.fetch.callCount(); n != 0 {
		t.Errorf("fetch called %d times for a non-job message", n)
	}
	if got := fx.engine.Jobs(); len(got) != 1 || got[0].Status != api.StatusRunning {
		t.Errorf("non-job message mutated the list: %+v", got)
	}
}
