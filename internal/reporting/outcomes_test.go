package reporting

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/assertions"
	"github.com/promptlab/promptlab/internal/models"
)

func testOutcomeView(page, size int) OutcomeView {
	all := testOutcomes()
	run := models.TestRun{ID: "run-1", Status: models.RunStatusCompleted, TotalCases: 5, PassedCases: 3, FailedCases: 2}
	return NewOutcomeView(run, models.Paginate(all, page, size), all)
}

func TestNewOutcomeView(t *testing.T) {
	v := testOutcomeView(1, 2)

	assert.Equal(t, 60, v.PassRate)
	assert.Equal(t, 3, v.Page.TotalPages)
	assert.Equal(t, map[models.AssertionType]assertions.Tally{
		models.AssertionContains: {Passed: 0, Failed: 1},
		models.AssertionIsJSON:   {Passed: 1, Failed: 0},
	}, v.Assertions, "breakdown covers every outcome, not just the page")
}

func TestWriteOutcomes_Table(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOutcomes(&buf, testOutcomeView(2, 2), Options{Format: FormatTable, Thresholds: aggregate.DefaultThresholds})
	require.NoError(t, err)

	assert.Equal(t, "Run: run-1 (completed), 3/5 passed, pass rate 60%\n\n"+
		"CASE  MODEL   PROMPT   STATUS  LATENCY  FAILED ASSERTIONS\n"+
		"c3    gpt-4o  support  error       0ms  timeout\n"+
		"c1    claude  support  passed    200ms  \n"+
		"\nPage 2 of 3 (5 outcomes)\n\n"+
		"ASSERTION  PASSED  FAILED\n"+
		"contains        0       1\n"+
		"is-json         1       0\n", buf.String())
}

func TestWriteOutcomes_EmptyRun(t *testing.T) {
	run := models.TestRun{ID: "run-0", Status: models.RunStatusPending}
	v := NewOutcomeView(run, models.Paginate([]models.EvaluationOutcome{}, 1, 20), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, v, Options{Thresholds: aggregate.DefaultThresholds}))
	assert.Contains(t, buf.String(), "0/0 passed, pass rate 0%")
	assert.Contains(t, buf.String(), "Page 1 of 1 (0 outcomes)\n")
	assert.NotContains(t, buf.String(), "ASSERTION")
}

func TestWriteOutcomes_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, testOutcomeView(1, 2), Options{Format: FormatJSON}))

	var got struct {
		PassRate int `json:"pass_rate"`
		Page     struct {
			Items []json.RawMessage `json:"items"`
			Total int               `json:"total"`
		} `json:"page"`
		Assertions map[string]assertions.Tally `json:"assertions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 60, got.PassRate)
	assert.Len(t, got.Page.Items, 2)
	assert.Equal(t, 5, got.Page.Total)
	assert.Equal(t, 1, got.Assertions["contains"].Failed)
}

func TestWriteOutcomes_UnsupportedFormat(t *testing.T) {
	err := WriteOutcomes(&bytes.Buffer{}, testOutcomeView(1, 2), Options{Format: FormatJUnit})
	assert.ErrorContains(t, err, `format "junit" is not supported`)
}
