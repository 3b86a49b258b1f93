// Package results loads evaluation outcomes recorded by the execution
// service and serves them to the aggregation commands.
package results

import (
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/models"
)

// normalize fills what a result file may omit. Outcomes without an id get
// a random one; ids already present are never changed.
func (rf *RunFile) normalize(fallbackID string) {
	run := &rf.Run
	if run.ID == "" {
		run.ID = firstRunID(rf.Results)
	}
	if run.ID == "" {
		run.ID = fallbackID
	}
	if run.Status == "" {
		run.Status = models.RunStatusCompleted
	}
	if rf.Results == nil {
		rf.Results = []models.EvaluationOutcome{}
	}

	for i := range rf.Results {
		o := &rf.Results[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.TestRunID == "" {
			o.TestRunID = run.ID
		}
	}

	if len(run.ModelIDs) == 0 {
		run.ModelIDs = aggregate.SeenModelIDs(rf.Results)
	}
	if len(run.PromptIDs) == 0 {
		run.PromptIDs = aggregate.SeenPromptIDs(rf.Results)
	}
	if run.TotalCases == 0 && len(rf.Results) > 0 {
		s := aggregate.Summarize(run.ID, rf.Results)
		run.TotalCases, run.PassedCases, run.FailedCases = s.Total, s.Passed, s.Failed
		if run.Status == models.RunStatusCompleted {
			run.Progress = 100
		}
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = earliest(rf.Results)
	}
}

func firstRunID(outcomes []models.EvaluationOutcome) string {
	for _, o := range outcomes {
		if o.TestRunID != "" {
			return o.TestRunID
		}
	}
	return ""
}

func earliest(outcomes []models.EvaluationOutcome) time.Time {
	var t time.Time
	for _, o := range outcomes {
		if !o.CreatedAt.IsZero() && (t.IsZero() || o.CreatedAt.Before(t)) {
			t = o.CreatedAt
		}
	}
	return t
}
