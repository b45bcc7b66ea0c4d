package api

import "testing"

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
		running  bool
	}{
		{StatusNew, false, true},
		{StatusPending, false, true},
		{StatusWaiting, false, true},
		{StatusRunning, false, true},
		{StatusSuccessful, false, false},
		{StatusFailed, true, false},
		{StatusErrored, true, false},
		{StatusCanceled, false, false},
		{StatusCompleted, true, false},
		{"unknown", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := IsTerminalStatus(tt.status); got != tt.terminal {
				t.Errorf("IsTerminalStatus(%q) = %v, want %v", tt.status, got, tt.terminal)
			}
			if got := IsRunningStatus(tt.status); got != tt.running {
				t.Errorf("IsRunningStatus(%q) = %v, want %v", tt.status, got, tt.running)
			}
		})
	}
}

func TestStatusErroredValue(t *testing.T) {
	if StatusErrored != "error" {
		t.Errorf("StatusErrored = %q, want %q", StatusErrored, "error")
	}
	var err error = &StatusError{Code: 500}
	if err.Error() != "server returned 500" {
		t.Errorf("unexpected StatusError message: %q", err.Error())
	}
}
