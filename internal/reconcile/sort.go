// Package reconcile keeps an in-memory job list consistent with the server:
// a REST snapshot seeds the list, live websocket events patch known rows or
// queue unknown ids for a coalesced batch fetch, and every mutation re-sorts
// by the caller's current ordering.
package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"github.com/awxmon/awxmon/internal/api"
)

type compareFunc func(a, b api.Job) int

// sortFields maps an order_by field name to its comparator. Unknown fields
// are a deliberate no-op in SortJobs, not an error.
var sortFields = map[string]compareFunc{
	"finished":   compareFinished,
	"started":    compareStarted,
	"id":         func(a, b api.Job) int { return cmp.Compare(a.ID, b.ID) },
	"name":       func(a, b api.Job) int { return strings.Compare(a.Name, b.Name) },
	"created_by": func(a, b api.Job) int { return strings.Compare(a.SummaryFields.CreatedBy.Username, b.SummaryFields.CreatedBy.Username) },
	"project":    func(a, b api.Job) int { return cmp.Compare(a.SummaryFields.Project.ID, b.SummaryFields.Project.ID) },
}

// SortJobs returns a new slice ordered by orderBy, which is a field name with
// an optional "-" prefix for descending order. Descending is always the exact
// negation of ascending, so null handling and tie-breaks stay identical in
// both directions. An unrecognized field returns the input unchanged.
func SortJobs(jobs []api.Job, orderBy string) []api.Job {
	field := strings.TrimPrefix(orderBy, "-")
	compare, ok := sortFields[field]
	if !ok {
		return jobs
	}
	if strings.HasPrefix(orderBy, "-") {
		ascending := compare
		compare = func(a, b api.Job) int { return -ascending(a, b) }
	}

	out := slices.Clone(jobs)
	slices.SortStableFunc(out, compare)
	return out
}

// A job without a finished timestamp has not finished yet, so it sorts after
// every job that has. The rule for started is the opposite: a job that never
// started sorts before every job that did.

func compareFinished(a, b api.Job) int {
	switch {
	case a.Finished == nil && b.Finished == nil:
		return 0
	case a.Finished == nil:
		return 1
	case b.Finished == nil:
		return -1
	default:
		return a.Finished.Compare(*b.Finished)
	}
}

func compareStarted(a, b api.Job) int {
	switch {
	case a.Started == nil && b.Started == nil:
		return 0
	case a.Started == nil:
		return -1
	case b.Started == nil:
		return 1
	default:
		return a.Started.Compare(*b.Started)
	}
}
