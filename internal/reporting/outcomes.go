package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/assertions"
	"github.com/promptlab/promptlab/internal/models"
)

// OutcomeView is the detail view of one run: a page of its outcomes and
// the per-assertion-type breakdown over the whole run.
type OutcomeView struct {
	Run        models.TestRun                            `json:"run"`
	PassRate   int                                       `json:"pass_rate"`
	Page       models.Page[models.EvaluationOutcome]     `json:"page"`
	Assertions map[models.AssertionType]assertions.Tally `json:"assertions"`
}

// NewOutcomeView assembles an OutcomeView. all is every outcome of the
// run and feeds the assertion breakdown.
func NewOutcomeView(run models.TestRun, page models.Page[models.EvaluationOutcome], all []models.EvaluationOutcome) OutcomeView {
	return OutcomeView{
		Run:        run,
		PassRate:   aggregate.RunPassRate(run),
		Page:       page,
		Assertions: assertions.SummarizeOutcomes(all),
	}
}

// WriteOutcomes renders v as a table or JSON.
func WriteOutcomes(w io.Writer, v OutcomeView, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, v)
	case FormatTable, "":
		return writeOutcomesTable(w, v, opts)
	default:
		return fmt.Errorf("reporting: format %q is not supported for outcome listings", opts.Format)
	}
}

func writeOutcomesTable(w io.Writer, v OutcomeView, opts Options) error {
	g := opts.Thresholds.Grade(v.PassRate)
	header := fmt.Sprintf("Run: %s (%s), %d/%d passed, pass rate %s\n\n",
		v.Run.DisplayName(), v.Run.Status, v.Run.PassedCases, v.Run.TotalCases,
		paint(fmt.Sprintf("%d%%", v.PassRate), gradeColors[g], opts.Color))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	t := newTable("CASE", "MODEL", "PROMPT", "STATUS", "LATENCY", "FAILED ASSERTIONS").alignRight(4)
	for i := range v.Page.Items {
		o := &v.Page.Items[i]
		st := o.Status()
		var failed []string
		for _, a := range o.FailedAssertions() {
			failed = append(failed, string(a.Type))
		}
		detail := strings.Join(failed, ", ")
		if o.HasError() {
			detail = *o.Error
		}
		t.add(
			plain(o.DatasetCaseID),
			plain(o.ModelID),
			plain(o.PromptID),
			cell{text: string(st), attr: statusColors[st]},
			plain(formatLatency(o.LatencyMs)),
			plain(detail),
		)
	}
	if err := t.write(w, opts.Color); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\nPage %d of %d (%d outcomes)\n", v.Page.Page, max(v.Page.TotalPages, 1), v.Page.Total); err != nil {
		return err
	}

	if len(v.Assertions) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	at := newTable("ASSERTION", "PASSED", "FAILED").alignRight(1, 2)
	for _, typ := range models.AssertionTypes {
		tally, ok := v.Assertions[typ]
		if !ok {
			continue
		}
		at.add(plain(string(typ)), plain(fmt.Sprint(tally.Passed)), plain(fmt.Sprint(tally.Failed)))
	}
	return at.write(w, opts.Color)
}
