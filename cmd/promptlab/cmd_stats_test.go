package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/reporting"
)

const nightlyRun = `{
	"run": {"id": "run-1", "name": "nightly", "status": "completed", "created_at": "2026-03-01T10:00:00Z"},
	"results": [
		{"id": "o1", "prompt_id": "support", "model_id": "gpt-4o", "test_case_id": "c1", "passed": true, "latency_ms": 100},
		{"id": "o2", "prompt_id": "support", "model_id": "gpt-4o", "test_case_id": "c2", "passed": false, "latency_ms": 300,
		 "assertion_results": [{"type": "contains", "passed": false, "value": "refund", "message": "not found"}]},
		{"id": "o3", "prompt_id": "support", "model_id": "claude", "test_case_id": "c1", "passed": true, "latency_ms": 200},
		{"id": "o4", "prompt_id": "support", "model_id": "claude", "test_case_id": "c2", "passed": true, "latency_ms": 400}
	]
}`

const smokeRun = `{"test_run_id":"run-2","prompt_id":"greeting","model_id":"gpt-4o","test_case_id":"s1","passed":true,"latency_ms":50,"created_at":"2026-03-02T08:00:00Z"}
`

// resultsDir writes both runs under results/ in dir.
func resultsDir(t *testing.T, dir string) {
	t.Helper()
	writeTestFile(t, dir, "results/nightly.json", nightlyRun)
	writeTestFile(t, dir, "results/smoke.jsonl", smokeRun)
}

func TestStatsCommand_Table(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	out, _, err := runCLI(t, "", "stats", "results/nightly.json")
	require.NoError(t, err)

	assert.Contains(t, out, "Outcomes:  4 total, 3 passed, 1 failed, 0 errors\n")
	assert.Contains(t, out, "Pass rate: 75.0%\n")
	assert.Contains(t, out, "gpt-4o      2       1       1        50%        200ms  fair\n")
	assert.Contains(t, out, "claude      2       2       0       100%        300ms  good\n")
	assert.Contains(t, out, "=== Interpretation ===")
}

func TestStatsCommand_JSON(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	out, _, err := runCLI(t, "", "stats", "--format", "json", "--models", "claude")
	require.NoError(t, err)

	var r reporting.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Len(t, r.Runs, 2, "both runs are read from the default results directory")
	assert.Equal(t, 5, r.Summary.Total)
	assert.Equal(t, []string{"claude"}, r.Summary.ModelIDs)
	assert.Equal(t, 100, r.Summary.ByModel["claude"].PassRate)
	assert.Equal(t, aggregate.GradeGood, r.Grades["claude"])
}

func TestStatsCommand_JUnit(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	out, _, err := runCLI(t, "", "stats", "--run", "run-1", "--format", "junit")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<testsuite name="gpt-4o"`)
	assert.Contains(t, out, "1 of 1 assertions failed")
}

func TestStatsCommand_MinPassRate(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	tests := []struct {
		name    string
		config  string
		args    []string
		wantErr string
	}{
		{
			name:    "flag below",
			args:    []string{"--min-pass-rate", "80"},
			wantErr: "pass rate 75% is below the required 80% (gpt-4o 50%)",
		},
		{
			name: "flag met",
			args: []string{"--min-pass-rate", "75"},
		},
		{
			name:    "config gate",
			config:  "thresholds:\n  min_pass_rate: 90\n",
			wantErr: "pass rate 75% is below the required 90%",
		},
		{
			name:   "flag zero disables config gate",
			config: "thresholds:\n  min_pass_rate: 90\n",
			args:   []string{"--min-pass-rate", "0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			if cfg == "" {
				cfg = "defaults:\n  format: json\n"
			}
			writeTestFile(t, dir, ".promptlab.yaml", cfg)

			args := append([]string{"stats", "--run", "run-1"}, tt.args...)
			_, _, err := runCLI(t, "", args...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var failure *TestFailureError
			require.ErrorAs(t, err, &failure)
			assert.Contains(t, failure.Message, tt.wantErr)
		})
	}
}

func TestStatsCommand_Errors(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown format", []string{"stats", "--format", "pdf"}, `unknown format "pdf"`},
		{"unknown run", []string{"stats", "--run", "nope"}, "results: run not found: nope"},
		{"missing path", []string{"stats", "absent.json"}, "results:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var failure *TestFailureError
			assert.NotErrorAs(t, err, &failure)
		})
	}
}

func TestCasesCommand(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	out, _, err := runCLI(t, "", "cases", "--run", "run-1")
	require.NoError(t, err)
	assert.Equal(t, "CASE  gpt-4o  claude\nc1    passed  passed\nc2    failed  passed\n\n2 cases\n", out)

	out, _, err = runCLI(t, "", "cases", "--run", "run-1", "--filter", "failed")
	require.NoError(t, err)
	assert.Equal(t, "CASE  gpt-4o  claude\nc2    failed  n/a\n\n1 cases\n", out)

	_, _, err = runCLI(t, "", "cases", "--filter", "broken")
	assert.ErrorContains(t, err, `unknown filter "broken"`)
}

func TestOutcomesCommand(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	t.Run("defaults to newest run", func(t *testing.T) {
		out, _, err := runCLI(t, "", "outcomes")
		require.NoError(t, err)
		assert.Contains(t, out, "Run: run-2")
		assert.Contains(t, out, "s1")
		assert.Contains(t, out, "Page 1 of 1 (1 outcomes)")
	})

	t.Run("paged and filtered", func(t *testing.T) {
		out, _, err := runCLI(t, "", "outcomes", "--run", "run-1", "--filter", "passed", "--page-size", "2", "--page", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Page 2 of 2 (3 outcomes)")
		assert.Contains(t, out, "contains")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := runCLI(t, "", "outcomes", "--run", "run-1", "--format", "json")
		require.NoError(t, err)
		var v reporting.OutcomeView
		require.NoError(t, json.Unmarshal([]byte(out), &v))
		assert.Equal(t, "run-1", v.Run.ID)
		assert.Equal(t, 75, v.PassRate)
		assert.Len(t, v.Page.Items, 4)
	})

	t.Run("markdown unsupported", func(t *testing.T) {
		_, _, err := runCLI(t, "", "outcomes", "--format", "markdown")
		assert.ErrorContains(t, err, "not supported for outcome listings")
	})
}

func TestOutcomesCommand_NoRuns(t *testing.T) {
	dir := inTempDir(t)
	writeTestFile(t, dir, "results/README.md", "nothing here")

	_, _, err := runCLI(t, "", "outcomes")
	assert.ErrorContains(t, err, "run not found")
}

func TestCompareCommand(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	out, _, err := runCLI(t, "", "compare", "--run", "run-1",
		"--baseline", "gpt-4o", "--candidate", "claude", "--seed", "7", "--iterations", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "Changed cases (1):")
	assert.Contains(t, out, "c2    failed  passed")

	out, _, err = runCLI(t, "", "compare", "--run", "run-1",
		"--baseline", "gpt-4o", "--candidate", "claude", "--seed", "7", "--format", "json")
	require.NoError(t, err)
	var cmp aggregate.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	assert.Equal(t, 50, cmp.Baseline.PassRate)
	assert.Equal(t, 100, cmp.Candidate.PassRate)
	assert.InDelta(t, 0.5, cmp.Difference.Mean, 1e-9)
	assert.Len(t, cmp.Cases, 2)
}

func TestCompareCommand_FailOnRegression(t *testing.T) {
	dir := inTempDir(t)
	var lines strings.Builder
	for i := range 10 {
		fmt.Fprintf(&lines, `{"test_run_id":"r","prompt_id":"p","model_id":"steady","test_case_id":"c%d","passed":true}`+"\n", i)
		fmt.Fprintf(&lines, `{"test_run_id":"r","prompt_id":"p","model_id":"flaky","test_case_id":"c%d","passed":false}`+"\n", i)
	}
	writeTestFile(t, dir, "results/r.jsonl", lines.String())

	out, _, err := runCLI(t, "", "compare", "--baseline", "steady", "--candidate", "flaky",
		"--seed", "1", "--iterations", "100", "--fail-on-regression")
	var failure *TestFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "flaky regressed against steady: 0% vs 100%", failure.Message)
	assert.Contains(t, out, "flaky is worse than steady by -100.0 points")

	_, _, err = runCLI(t, "", "compare", "--baseline", "steady", "--candidate", "flaky", "--seed", "1", "--iterations", "100")
	assert.NoError(t, err, "regressions only fail with --fail-on-regression")
}

func TestCompareCommand_Errors(t *testing.T) {
	dir := inTempDir(t)
	resultsDir(t, dir)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"same model", []string{"--baseline", "a", "--candidate", "a"}, `baseline and candidate must differ, both are "a"`},
		{"unknown model", []string{"--baseline", "gpt-4o", "--candidate", "llama"}, `model "llama" has no outcomes`},
		{"missing candidate", []string{"--baseline", "gpt-4o"}, `required flag(s) "candidate" not set`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", append([]string{"compare"}, tt.args...)...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
