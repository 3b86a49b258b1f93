package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/models"
)

var gradeColors = map[aggregate.Grade]color.Attribute{
	aggregate.GradeGood: color.FgGreen,
	aggregate.GradeFair: color.FgYellow,
	aggregate.GradePoor: color.FgRed,
}

var statusColors = map[models.Status]color.Attribute{
	models.StatusPassed: color.FgGreen,
	models.StatusFailed: color.FgRed,
	models.StatusError:  color.FgMagenta,
	models.StatusNA:     color.FgHiBlack,
}

// cell is one table cell. A zero attr leaves the text unstyled.
type cell struct {
	text string
	attr color.Attribute
}

func plain(s string) cell { return cell{text: s} }

type table struct {
	headers []string
	right   []bool
	rows    [][]cell
}

func newTable(headers ...string) *table {
	return &table{headers: headers, right: make([]bool, len(headers))}
}

// alignRight right-aligns the given column indexes.
func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

// write pads every column to its widest cell by display width, so CJK
// ids line up, then applies colour to the padded text.
func (t *table) write(w io.Writer, colored bool) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c.text))
		}
	}

	var b strings.Builder
	header := make([]cell, len(t.headers))
	for i, h := range t.headers {
		header[i] = plain(h)
	}
	t.writeRow(&b, header, widths, colored)
	for _, row := range t.rows {
		t.writeRow(&b, row, widths, colored)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *table) writeRow(b *strings.Builder, row []cell, widths []int, colored bool) {
	for i, c := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		var text string
		switch {
		case t.right[i]:
			text = padLeft(c.text, widths[i])
		case i == len(row)-1:
			text = c.text
		default:
			text = padRight(c.text, widths[i])
		}
		b.WriteString(paint(text, c.attr, colored))
	}
	b.WriteString("\n")
}

func paint(s string, attr color.Attribute, colored bool) string {
	if attr == 0 {
		return s
	}
	c := color.New(attr)
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

func writeReportTable(w io.Writer, r *Report, colored bool) error {
	s := r.Summary
	var b strings.Builder
	if len(r.Runs) > 0 {
		ids := make([]string, len(r.Runs))
		for i := range r.Runs {
			ids[i] = r.Runs[i].DisplayName()
		}
		fmt.Fprintf(&b, "Runs:      %s\n", strings.Join(ids, ", "))
	}
	fmt.Fprintf(&b, "Outcomes:  %d total, %d passed, %d failed, %d errors\n", s.Total, s.Passed, s.Failed, s.Errors)
	fmt.Fprintf(&b, "Pass rate: %.1f%%\n", s.PassRate)
	fmt.Fprintf(&b, "Latency:   avg %s, p50 %s, p95 %s, min %s, max %s\n\n",
		formatLatency(s.Latency.AvgMs), formatLatency(s.Latency.P50Ms), formatLatency(s.Latency.P95Ms),
		formatLatency(s.Latency.MinMs), formatLatency(s.Latency.MaxMs))
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	mt := newTable("MODEL", "TOTAL", "PASSED", "FAILED", "PASS RATE", "AVG LATENCY", "GRADE").alignRight(1, 2, 3, 4, 5)
	for _, id := range s.ModelIDs {
		st := s.ByModel[id]
		g := r.Grades[id]
		mt.add(
			plain(id),
			plain(fmt.Sprint(st.Total)),
			plain(fmt.Sprint(st.Passed)),
			plain(fmt.Sprint(st.Failed)),
			cell{text: fmt.Sprintf("%d%%", st.PassRate), attr: gradeColors[g]},
			plain(formatLatency(float64(st.AvgLatencyMs))),
			cell{text: string(g), attr: gradeColors[g]},
		)
	}
	if err := mt.write(w, colored); err != nil {
		return err
	}

	if len(s.PromptIDs) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		pt := newTable("PROMPT", "TOTAL", "PASSED", "FAILED", "PASS RATE").alignRight(1, 2, 3, 4)
		for _, id := range s.PromptIDs {
			st := s.ByPrompt[id]
			pt.add(
				plain(id),
				plain(fmt.Sprint(st.Total)),
				plain(fmt.Sprint(st.Passed)),
				plain(fmt.Sprint(st.Failed)),
				cell{text: fmt.Sprintf("%d%%", st.PassRate), attr: gradeColors[r.Thresholds.Grade(st.PassRate)]},
			)
		}
		if err := pt.write(w, colored); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "\n"+FormatSummaryReport(r))
	return err
}

func writeCasesTable(w io.Writer, groups []aggregate.CaseGroup, modelIDs []string, colored bool) error {
	headers := append([]string{"CASE"}, modelIDs...)
	t := newTable(headers...)
	for _, g := range groups {
		row := []cell{plain(g.CaseID)}
		for _, id := range modelIDs {
			st := caseStatus(g, id)
			row = append(row, cell{text: string(st), attr: statusColors[st]})
		}
		t.add(row...)
	}
	if err := t.write(w, colored); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d cases\n", len(groups))
	return err
}

// caseStatus is the status of the last outcome of modelID in g, or
// StatusNA when the model has none.
func caseStatus(g aggregate.CaseGroup, modelID string) models.Status {
	st := models.StatusNA
	for i := range g.Outcomes {
		if g.Outcomes[i].ModelID == modelID {
			st = g.Outcomes[i].Status()
		}
	}
	return st
}

func writeComparisonTable(w io.Writer, cmp aggregate.Comparison, opts Options) error {
	t := newTable("MODEL", "TOTAL", "PASSED", "FAILED", "PASS RATE", "AVG LATENCY").alignRight(1, 2, 3, 4, 5)
	for _, m := range []struct {
		id string
		st aggregate.ModelStats
	}{{cmp.BaselineID, cmp.Baseline}, {cmp.CandidateID, cmp.Candidate}} {
		t.add(
			plain(m.id),
			plain(fmt.Sprint(m.st.Total)),
			plain(fmt.Sprint(m.st.Passed)),
			plain(fmt.Sprint(m.st.Failed)),
			cell{text: fmt.Sprintf("%d%%", m.st.PassRate), attr: gradeColors[opts.Thresholds.Grade(m.st.PassRate)]},
			plain(formatLatency(float64(m.st.AvgLatencyMs))),
		)
	}
	if err := t.write(w, opts.Color); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", InterpretComparison(cmp)); err != nil {
		return err
	}

	var changed []aggregate.CaseComparison
	for _, c := range cmp.Cases {
		if c.Changed() {
			changed = append(changed, c)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\nChanged cases (%d):\n", len(changed)); err != nil {
		return err
	}
	ct := newTable("CASE", cmp.BaselineID, cmp.CandidateID)
	for _, c := range changed {
		ct.add(
			plain(c.CaseID),
			cell{text: string(c.Baseline), attr: statusColors[c.Baseline]},
			cell{text: string(c.Candidate), attr: statusColors[c.Candidate]},
		)
	}
	return ct.write(w, opts.Color)
}
