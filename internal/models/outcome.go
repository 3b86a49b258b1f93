package models

import (
	"time"
)

// Status represents the status of a single evaluation outcome as shown in
// listings.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
	// StatusNA is used in comparison reports when a case has no outcome for a
	// given model.
	StatusNA Status = "n/a"
)

// TokenUsage is the token accounting reported by the execution service.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AssertionResult is the result of checking one assertion against a model
// output.
type AssertionResult struct {
	Type    AssertionType `json:"type"`
	Passed  bool          `json:"passed"`
	Value   *string       `json:"value,omitempty"`
	Message *string       `json:"message,omitempty"`
}

// EvaluationOutcome is one executed (prompt, model, dataset case) triple.
// Outcomes are produced by the execution service and are read-only here.
type EvaluationOutcome struct {
	ID               string            `json:"id"`
	TestRunID        string            `json:"test_run_id"`
	PromptID         string            `json:"prompt_id"`
	PromptVersion    string            `json:"prompt_version_id,omitempty"`
	ModelID          string            `json:"model_id"`
	DatasetCaseID    string            `json:"test_case_id"`
	InputMapped      map[string]any    `json:"input_mapped,omitempty"`
	InputRendered    string            `json:"input_rendered,omitempty"`
	Output           string            `json:"output"`
	LatencyMs        float64           `json:"latency_ms"`
	TokenUsage       *TokenUsage       `json:"token_usage,omitempty"`
	AssertionResults []AssertionResult `json:"assertion_results"`
	Passed           bool              `json:"passed"`
	Error            *string           `json:"error,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Status derives the listing status. An outcome with a non-empty error is
// reported as [StatusError] regardless of Passed.
func (o *EvaluationOutcome) Status() Status {
	if o.HasError() {
		return StatusError
	}
	if o.Passed {
		return StatusPassed
	}
	return StatusFailed
}

// HasError reports whether the execution service recorded an error.
func (o *EvaluationOutcome) HasError() bool {
	return o.Error != nil && *o.Error != ""
}

// FailedAssertions returns the assertion results that did not pass, in
// their original order.
func (o *EvaluationOutcome) FailedAssertions() []AssertionResult {
	var failed []AssertionResult
	for _, a := range o.AssertionResults {
		if !a.Passed {
			failed = append(failed, a)
		}
	}
	return failed
}
