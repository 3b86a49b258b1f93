package aggregate

import (
	"github.com/promptlab/promptlab/internal/models"
	"github.com/promptlab/promptlab/internal/statistics"
)

// CaseComparison is the per-case status of the two compared models.
// A model with no outcome for the case reports models.StatusNA.
type CaseComparison struct {
	CaseID    string        `json:"case_id"`
	Baseline  models.Status `json:"baseline"`
	Candidate models.Status `json:"candidate"`
}

// Changed reports whether the two models disagree on the case.
func (c CaseComparison) Changed() bool {
	return c.Baseline != c.Candidate
}

// Comparison is the result of CompareModels. Difference is the bootstrap
// interval of candidate minus baseline pass rate, as fractions in [-1, 1].
type Comparison struct {
	BaselineID     string                        `json:"baseline_id"`
	CandidateID    string                        `json:"candidate_id"`
	Baseline       ModelStats                    `json:"baseline"`
	Candidate      ModelStats                    `json:"candidate"`
	Difference     statistics.ConfidenceInterval `json:"difference"`
	Significant    bool                          `json:"significant"`
	NormalizedGain float64                       `json:"normalized_gain"`
	Cases          []CaseComparison              `json:"cases"`
}

// CompareModels compares the pass rates of two models over the same
// outcomes. The last outcome per case wins when a model has several.
func CompareModels(outcomes []models.EvaluationOutcome, baselineID, candidateID string, opts statistics.Options) Comparison {
	stats := ComputeModelStats(outcomes, []string{baselineID, candidateID})
	cmp := Comparison{
		BaselineID:  baselineID,
		CandidateID: candidateID,
		Baseline:    stats[baselineID],
		Candidate:   stats[candidateID],
		Cases:       []CaseComparison{},
	}

	var base, cand []float64
	for _, g := range GroupByDatasetCase(outcomes) {
		cc := CaseComparison{CaseID: g.CaseID, Baseline: models.StatusNA, Candidate: models.StatusNA}
		for _, o := range g.Outcomes {
			switch o.ModelID {
			case baselineID:
				cc.Baseline = o.Status()
			case candidateID:
				cc.Candidate = o.Status()
			}
		}
		if cc.Baseline == models.StatusNA && cc.Candidate == models.StatusNA {
			continue
		}
		cmp.Cases = append(cmp.Cases, cc)
	}
	for _, o := range outcomes {
		switch o.ModelID {
		case baselineID:
			base = append(base, score(o))
		case candidateID:
			cand = append(cand, score(o))
		}
	}

	cmp.Difference = statistics.DifferenceCI(base, cand, opts)
	cmp.Significant = statistics.IsSignificant(cmp.Difference)
	cmp.NormalizedGain = statistics.NormalizedGain(
		float64(cmp.Baseline.PassRate)/100,
		float64(cmp.Candidate.PassRate)/100,
	)
	return cmp
}

func score(o models.EvaluationOutcome) float64 {
	if o.Passed {
		return 1
	}
	return 0
}
