package reporting

import (
	"fmt"
	"strings"

	"github.com/promptlab/promptlab/internal/aggregate"
)

// InterpretGrade returns a plain-language label for a grade.
func InterpretGrade(g aggregate.Grade, t aggregate.Thresholds) string {
	switch g {
	case aggregate.GradeGood:
		return fmt.Sprintf("Good (>=%d%%)", t.Good)
	case aggregate.GradeFair:
		return fmt.Sprintf("Needs Work (%d-%d%%)", t.Fair, t.Good)
	default:
		return fmt.Sprintf("Poor (<%d%%)", t.Fair)
	}
}

// InterpretPassRate returns a human-readable explanation of a pass rate
// given as a percentage.
func InterpretPassRate(pct float64) string {
	switch {
	case pct >= 100:
		return fmt.Sprintf("All outcomes passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most outcomes passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the outcomes passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few outcomes passed (%.0f%%)", pct)
	}
}

// InterpretComparison explains the pass-rate difference of a comparison
// and whether its confidence interval excludes zero.
func InterpretComparison(cmp aggregate.Comparison) string {
	d := cmp.Difference
	diff := fmt.Sprintf("%+.1f points (%.0f%% CI %+.1f to %+.1f)",
		d.Mean*100, d.ConfidenceLevel*100, d.Lower*100, d.Upper*100)

	switch {
	case cmp.Baseline.Total == 0 || cmp.Candidate.Total == 0:
		return fmt.Sprintf("Not enough outcomes to compare %s and %s.", cmp.BaselineID, cmp.CandidateID)
	case !cmp.Significant:
		return fmt.Sprintf("No significant difference: %s vs %s is %s.", cmp.CandidateID, cmp.BaselineID, diff)
	case d.Mean > 0:
		return fmt.Sprintf("%s is better than %s by %s, normalized gain %.2f.", cmp.CandidateID, cmp.BaselineID, diff, cmp.NormalizedGain)
	default:
		return fmt.Sprintf("%s is worse than %s by %s.", cmp.CandidateID, cmp.BaselineID, diff)
	}
}

// FormatSummaryReport produces a plain-language interpretation of r.
func FormatSummaryReport(r *Report) string {
	var b strings.Builder
	s := r.Summary

	b.WriteString("=== Interpretation ===\n\n")
	fmt.Fprintf(&b, "Pass Rate: %s\n", InterpretPassRate(s.PassRate))
	if s.Errors > 0 {
		fmt.Fprintf(&b, "Errors:    %d outcomes recorded an execution error\n", s.Errors)
	}

	if len(s.ModelIDs) > 0 {
		b.WriteString("\nPer-Model Interpretation:\n")
		for _, id := range s.ModelIDs {
			st := s.ByModel[id]
			g := r.Grades[id]
			icon := "✓"
			if g != aggregate.GradeGood {
				icon = "✗"
			}
			fmt.Fprintf(&b, "  %s %s: %d/%d passed, %s\n", icon, id, st.Passed, st.Total, InterpretGrade(g, r.Thresholds))
		}
	}
	return b.String()
}
