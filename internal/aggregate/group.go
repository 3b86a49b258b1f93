package aggregate

import (
	"fmt"

	"github.com/promptlab/promptlab/internal/models"
)

// CaseGroup holds every outcome recorded for one dataset case.
type CaseGroup struct {
	CaseID   string                     `json:"case_id"`
	Outcomes []models.EvaluationOutcome `json:"outcomes"`
}

// GroupByDatasetCase groups outcomes by dataset case. Groups appear in the
// order their case id was first seen and outcomes keep their input order
// within a group.
func GroupByDatasetCase(outcomes []models.EvaluationOutcome) []CaseGroup {
	groups := []CaseGroup{}
	index := make(map[string]int)
	for _, o := range outcomes {
		i, ok := index[o.DatasetCaseID]
		if !ok {
			i = len(groups)
			index[o.DatasetCaseID] = i
			groups = append(groups, CaseGroup{CaseID: o.DatasetCaseID})
		}
		groups[i].Outcomes = append(groups[i].Outcomes, o)
	}
	return groups
}

// Filter selects outcomes by pass state.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterPassed Filter = "passed"
	FilterFailed Filter = "failed"
)

// ParseFilter accepts "all", "passed" or "failed". An empty string means
// all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPassed, FilterFailed:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, passed or failed)", s)
	}
}

// FilterOutcomes returns a new slice holding the outcomes matching f, in
// input order. Unknown filters behave like FilterAll.
func FilterOutcomes(outcomes []models.EvaluationOutcome, f Filter) []models.EvaluationOutcome {
	out := make([]models.EvaluationOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		switch f {
		case FilterPassed:
			if !o.Passed {
				continue
			}
		case FilterFailed:
			if o.Passed {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}
