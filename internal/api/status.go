package api

// Job status values owned by the controller's API contract.
const (
	StatusNew        = "new"
	StatusPending    = "pending"
	StatusWaiting    = "waiting"
	StatusRunning    = "running"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusErrored    = "error"
	StatusCanceled   = "canceled"
	StatusCompleted  = "completed"
)

// terminalStatuses are the statuses after which a job will not change state
// again. The event stream uses "completed" as a synthetic terminal marker in
// addition to the failure statuses.
var terminalStatuses = map[string]bool{
	StatusCompleted: true,
	StatusFailed:    true,
	StatusErrored:   true,
}

// IsTerminalStatus reports whether status indicates the job is done changing
// state.
func IsTerminalStatus(status string) bool {
	return terminalStatuses[status]
}

// IsRunningStatus reports whether the job is still queued or executing.
func IsRunningStatus(status string) bool {
	switch status {
	case StatusNew, StatusPending, StatusWaiting, StatusRunning:
		return true
	}
	return false
}
