package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEvaluationOutcome_Status(t *testing.T) {
	tests := []struct {
		name    string
		outcome EvaluationOutcome
		want    Status
	}{
		{"passed", EvaluationOutcome{Passed: true}, StatusPassed},
		{"failed", EvaluationOutcome{}, StatusFailed},
		{"error wins over passed", EvaluationOutcome{Passed: true, Error: strPtr("timeout")}, StatusError},
		{"empty error ignored", EvaluationOutcome{Error: strPtr("")}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Status())
		})
	}
}

func TestEvaluationOutcome_FailedAssertions(t *testing.T) {
	o := EvaluationOutcome{AssertionResults: []AssertionResult{
		{Type: AssertionContains, Passed: true},
		{Type: AssertionRegex, Passed: false},
		{Type: AssertionIsJSON, Passed: false},
	}}
	failed := o.FailedAssertions()
	require.Len(t, failed, 2)
	assert.Equal(t, AssertionRegex, failed[0].Type)
	assert.Equal(t, AssertionIsJSON, failed[1].Type)
	assert.Nil(t, (&EvaluationOutcome{}).FailedAssertions())
}

func TestEvaluationOutcome_JSONFieldNames(t *testing.T) {
	raw := `{
		"id": "r1",
		"test_run_id": "run-1",
		"prompt_id": "p1",
		"model_id": "gpt-4o",
		"test_case_id": "case-1",
		"latency_ms": 123.5,
		"passed": true,
		"assertion_results": [{"type": "contains", "passed": true, "value": "42"}]
	}`
	var o EvaluationOutcome
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, "case-1", o.DatasetCaseID)
	assert.Equal(t, "gpt-4o", o.ModelID)
	assert.InDelta(t, 123.5, o.LatencyMs, 1e-9)
	require.Len(t, o.AssertionResults, 1)
	require.NotNil(t, o.AssertionResults[0].Value)
	assert.Equal(t, "42", *o.AssertionResults[0].Value)
}

func TestRunStatus(t *testing.T) {
	for _, s := range []string{"pending", "running", "completed", "failed", "cancelled"} {
		st, err := ParseRunStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s == "completed" || s == "failed" || s == "cancelled", st.IsTerminal(), s)
	}
	_, err := ParseRunStatus("paused")
	assert.Error(t, err)
}

func TestTestRun_DisplayNameAndDuration(t *testing.T) {
	r := TestRun{ID: "run-1"}
	assert.Equal(t, "run-1", r.DisplayName())
	assert.Zero(t, r.Duration())

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	r.Name = strPtr("nightly")
	r.StartedAt, r.CompletedAt = &start, &end
	assert.Equal(t, "nightly", r.DisplayName())
	assert.Equal(t, 90*time.Second, r.Duration())
}

func TestPromptVersion_Version(t *testing.T) {
	v := PromptVersion{Major: 2, Minor: 0, Patch: 13}
	assert.Equal(t, "2.0.13", v.Version())
}

func TestParseAssertionType(t *testing.T) {
	for _, at := range AssertionTypes {
		got, err := ParseAssertionType(string(at))
		require.NoError(t, err)
		assert.Equal(t, at, got)
	}
	_, err := ParseAssertionType("similar")
	assert.ErrorContains(t, err, "unknown assertion type")
}

func TestTestCase_Columns(t *testing.T) {
	c := TestCase{RawInput: map[string]any{"b": 1, "a": 2, "c": 3}}
	assert.Equal(t, []string{"a", "b", "c"}, c.Columns())
	assert.Empty(t, (&TestCase{}).Columns())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name      string
		page      int
		size      int
		wantItems []int
		wantPages int
	}{
		{"first page", 1, 2, []int{1, 2}, 3},
		{"last partial page", 3, 2, []int{5}, 3},
		{"past the end", 4, 2, []int{}, 3},
		{"far past the end", math.MaxInt, 2, []int{}, 3},
		{"page below one clamps", 0, 2, []int{1, 2}, 3},
		{"size zero returns all", 1, 0, []int{1, 2, 3, 4, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, 5, p.Total)
		})
	}

	empty := Paginate([]int{}, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}
