package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a test run on the execution service.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// ParseRunStatus validates s as a known run status.
func ParseRunStatus(s string) (RunStatus, error) {
	switch st := RunStatus(s); st {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown run status %q", s)
	}
}

// IsTerminal reports whether no further progress will be made. Callers
// polling a run stop once this returns true.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// TestRun is the test run resource exposed by the execution service.
// Progress is a percentage in [0, 100].
type TestRun struct {
	ID              string            `json:"id"`
	Name            *string           `json:"name"`
	PromptIDs       []string          `json:"prompt_ids"`
	DatasetID       string            `json:"dataset_id"`
	ModelIDs        []string          `json:"model_ids"`
	ResolvedMapping map[string]string `json:"resolved_mapping"`
	Status          RunStatus         `json:"status"`
	Progress        float64           `json:"progress"`
	TotalCases      int               `json:"total_cases"`
	PassedCases     int               `json:"passed_cases"`
	FailedCases     int               `json:"failed_cases"`
	CreatedAt       time.Time         `json:"created_at"`
	StartedAt       *time.Time        `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
	ErrorMessage    *string           `json:"error_message,omitempty"`
}

// DisplayName returns the run name, falling back to the ID.
func (r *TestRun) DisplayName() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return r.ID
}

// Duration returns how long the run took, or zero when it has not both
// started and completed.
func (r *TestRun) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}
