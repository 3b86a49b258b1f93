package aggregate

import "fmt"

// Grade buckets a pass rate for colouring.
type Grade string

const (
	GradeGood Grade = "good"
	GradeFair Grade = "fair"
	GradePoor Grade = "poor"
)

// Thresholds are the inclusive lower bounds, in percent, of the good and
// fair grades.
type Thresholds struct {
	Good int `yaml:"good" json:"good"`
	Fair int `yaml:"fair" json:"fair"`
}

// DefaultThresholds matches the dashboard colours.
var DefaultThresholds = Thresholds{Good: 80, Fair: 50}

// Grade classifies passRate.
func (t Thresholds) Grade(passRate int) Grade {
	switch {
	case passRate >= t.Good:
		return GradeGood
	case passRate >= t.Fair:
		return GradeFair
	default:
		return GradePoor
	}
}

// Validate checks that both bounds are percentages and fair does not
// exceed good.
func (t Thresholds) Validate() error {
	if t.Good < 0 || t.Good > 100 || t.Fair < 0 || t.Fair > 100 {
		return fmt.Errorf("thresholds must be within 0-100, got good=%d fair=%d", t.Good, t.Fair)
	}
	if t.Fair > t.Good {
		return fmt.Errorf("fair threshold %d exceeds good threshold %d", t.Fair, t.Good)
	}
	return nil
}
