package api

import "time"

// Job represents a unified job as returned by the controller's REST API.
// ID is stable for the job's lifetime; Started and Finished are nil until the
// corresponding transition has happened. Display fields (Name, SummaryFields)
// are passed through to callers unchanged.
type Job struct {
	ID       int        `json:"id"`
	Type     string     `json:"type,omitempty"`
	URL      string     `json:"url,omitempty"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	Started  *time.Time `json:"started"`
	Finished *time.Time `json:"finished"`
	Elapsed  float64    `json:"elapsed,omitempty"`

	SummaryFields SummaryFields `json:"summary_fields,omitempty"`
}

// SummaryFields carries the denormalized display data the API attaches to
// each job row.
type SummaryFields struct {
	CreatedBy struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"created_by"`
	Project struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	JobTemplate struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"job_template"`
}

// JobEvent represents one stdout event of a job. Counter orders events within
// a job; StartLine and EndLine delimit the contiguous range of output line
// numbers the event spans.
type JobEvent struct {
	ID        int        `json:"id"`
	Counter   int        `json:"counter"`
	Event     string     `json:"event"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Stdout    string     `json:"stdout"`
	Created   *time.Time `json:"created,omitempty"`
}

// LineCount returns the number of output lines the event spans.
func (e JobEvent) LineCount() int {
	if e.EndLine > e.StartLine {
		return e.EndLine - e.StartLine
	}
	return 0
}

// JobPage is one page of a job list response.
type JobPage struct {
	Count   int   `json:"count"`
	Results []Job `json:"results"`
}

// EventPage is one page of a job event list response.
type EventPage struct {
	Count   int        `json:"count"`
	Results []JobEvent `json:"results"`
}
