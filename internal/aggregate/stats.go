// Package aggregate derives pass/fail statistics and case groupings from
// evaluation outcomes recorded by the execution service.
//
// Every function here is pure: inputs are never modified and repeated
// calls on the same input return equal values.
package aggregate

import (
	"github.com/promptlab/promptlab/internal/metrics"
	"github.com/promptlab/promptlab/internal/models"
)

// ModelStats is the per-model breakdown shown in comparison tables.
type ModelStats struct {
	Total        int `json:"total"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	PassRate     int `json:"pass_rate"`
	AvgLatencyMs int `json:"avg_latency_ms"`
}

// PromptStats is the per-prompt breakdown. It carries no latency.
type PromptStats struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	PassRate int `json:"pass_rate"`
}

type tally struct {
	total, passed int
	latency       float64
}

func (t *tally) add(o *models.EvaluationOutcome) {
	t.total++
	if o.Passed {
		t.passed++
	}
	t.latency += o.LatencyMs
}

func (t tally) avgLatency() int {
	if t.total == 0 {
		return 0
	}
	return metrics.RoundHalfUp(t.latency / float64(t.total))
}

// ComputeModelStats returns stats for every id in modelIDs, including ids
// with no outcomes. Outcomes for models not listed are ignored.
func ComputeModelStats(outcomes []models.EvaluationOutcome, modelIDs []string) map[string]ModelStats {
	tallies := tallyBy(outcomes, modelIDs, func(o *models.EvaluationOutcome) string { return o.ModelID })

	stats := make(map[string]ModelStats, len(tallies))
	for id, t := range tallies {
		stats[id] = ModelStats{
			Total:        t.total,
			Passed:       t.passed,
			Failed:       t.total - t.passed,
			PassRate:     metrics.Percent(t.passed, t.total),
			AvgLatencyMs: t.avgLatency(),
		}
	}
	return stats
}

// ComputePromptStats is ComputeModelStats keyed by prompt id.
func ComputePromptStats(outcomes []models.EvaluationOutcome, promptIDs []string) map[string]PromptStats {
	tallies := tallyBy(outcomes, promptIDs, func(o *models.EvaluationOutcome) string { return o.PromptID })

	stats := make(map[string]PromptStats, len(tallies))
	for id, t := range tallies {
		stats[id] = PromptStats{
			Total:    t.total,
			Passed:   t.passed,
			Failed:   t.total - t.passed,
			PassRate: metrics.Percent(t.passed, t.total),
		}
	}
	return stats
}

func tallyBy(outcomes []models.EvaluationOutcome, ids []string, key func(*models.EvaluationOutcome) string) map[string]*tally {
	tallies := make(map[string]*tally, len(ids))
	for _, id := range ids {
		tallies[id] = &tally{}
	}
	for i := range outcomes {
		if t, ok := tallies[key(&outcomes[i])]; ok {
			t.add(&outcomes[i])
		}
	}
	return tallies
}
