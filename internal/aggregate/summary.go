package aggregate

import (
	"github.com/promptlab/promptlab/internal/metrics"
	"github.com/promptlab/promptlab/internal/models"
)

// LatencySummary describes the latency distribution of a set of outcomes.
// All fields are zero when there are no outcomes.
type LatencySummary struct {
	AvgMs    float64 `json:"avg_ms"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	StdDevMs float64 `json:"stddev_ms"`
}

// Summary is the run-level overview of a set of outcomes. Errors counts
// outcomes with a recorded execution error; those are also counted in
// Failed unless marked passed. ModelIDs and PromptIDs list the ids seen,
// in first-seen order.
type Summary struct {
	TestRunID string         `json:"test_run_id"`
	Total     int            `json:"total"`
	Passed    int            `json:"passed"`
	Failed    int            `json:"failed"`
	Errors    int            `json:"errors"`
	PassRate  float64        `json:"pass_rate"`
	Latency   LatencySummary `json:"latency"`

	ModelIDs  []string               `json:"model_ids"`
	ByModel   map[string]ModelStats  `json:"by_model"`
	PromptIDs []string               `json:"prompt_ids"`
	ByPrompt  map[string]PromptStats `json:"by_prompt"`
}

// Summarize builds a Summary for runID over outcomes.
func Summarize(runID string, outcomes []models.EvaluationOutcome) Summary {
	s := Summary{
		TestRunID: runID,
		Total:     len(outcomes),
		ModelIDs:  SeenModelIDs(outcomes),
		PromptIDs: SeenPromptIDs(outcomes),
	}

	latencies := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Passed {
			s.Passed++
		}
		if o.HasError() {
			s.Errors++
		}
		latencies = append(latencies, o.LatencyMs)
	}
	s.Failed = s.Total - s.Passed
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}

	lo, hi := metrics.MinMax(latencies)
	s.Latency = LatencySummary{
		AvgMs:    metrics.Mean(latencies),
		MinMs:    lo,
		MaxMs:    hi,
		P50Ms:    metrics.Quantile(latencies, 0.50),
		P95Ms:    metrics.Quantile(latencies, 0.95),
		StdDevMs: metrics.StdDev(latencies),
	}

	s.ByModel = ComputeModelStats(outcomes, s.ModelIDs)
	s.ByPrompt = ComputePromptStats(outcomes, s.PromptIDs)
	return s
}

// SeenModelIDs lists distinct model ids in first-seen order.
func SeenModelIDs(outcomes []models.EvaluationOutcome) []string {
	return seen(outcomes, func(o *models.EvaluationOutcome) string { return o.ModelID })
}

// SeenPromptIDs lists distinct prompt ids in first-seen order.
func SeenPromptIDs(outcomes []models.EvaluationOutcome) []string {
	return seen(outcomes, func(o *models.EvaluationOutcome) string { return o.PromptID })
}

func seen(outcomes []models.EvaluationOutcome, key func(*models.EvaluationOutcome) string) []string {
	ids := []string{}
	set := make(map[string]bool)
	for i := range outcomes {
		k := key(&outcomes[i])
		if !set[k] {
			set[k] = true
			ids = append(ids, k)
		}
	}
	return ids
}

// RunPassRate is the integer pass rate of a run from its counters, 0 when
// the run has no cases.
func RunPassRate(run models.TestRun) int {
	return metrics.Percent(run.PassedCases, run.TotalCases)
}
