package reporting

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/promptlab/promptlab/internal/aggregate"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// ReportMarkdown renders r as a GitHub-flavoured Markdown document.
func ReportMarkdown(r *Report) string {
	s := r.Summary
	var b strings.Builder

	b.WriteString("# Evaluation report\n\n")
	if len(r.Runs) > 0 {
		ids := make([]string, len(r.Runs))
		for i := range r.Runs {
			ids[i] = "`" + r.Runs[i].ID + "`"
		}
		fmt.Fprintf(&b, "Runs: %s\n\n", strings.Join(ids, ", "))
	}

	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Outcomes | %d |\n", s.Total)
	fmt.Fprintf(&b, "| Passed | %d |\n", s.Passed)
	fmt.Fprintf(&b, "| Failed | %d |\n", s.Failed)
	fmt.Fprintf(&b, "| Errors | %d |\n", s.Errors)
	fmt.Fprintf(&b, "| Pass rate | %.1f%% |\n", s.PassRate)
	fmt.Fprintf(&b, "| Avg latency | %s |\n", formatLatency(s.Latency.AvgMs))
	fmt.Fprintf(&b, "| p95 latency | %s |\n\n", formatLatency(s.Latency.P95Ms))

	if len(s.ModelIDs) > 0 {
		b.WriteString("## Models\n\n")
		b.WriteString("| Model | Total | Passed | Failed | Pass rate | Avg latency | Grade |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---|\n")
		for _, id := range s.ModelIDs {
			st := s.ByModel[id]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d%% | %s | %s |\n",
				escapeCell(id), st.Total, st.Passed, st.Failed, st.PassRate,
				formatLatency(float64(st.AvgLatencyMs)), r.Grades[id])
		}
		b.WriteString("\n")
	}

	if len(s.PromptIDs) > 0 {
		b.WriteString("## Prompts\n\n")
		b.WriteString("| Prompt | Total | Passed | Failed | Pass rate |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, id := range s.PromptIDs {
			st := s.ByPrompt[id]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d%% |\n",
				escapeCell(id), st.Total, st.Passed, st.Failed, st.PassRate)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CasesMarkdown renders the per-case status grid.
func CasesMarkdown(groups []aggregate.CaseGroup, modelIDs []string) string {
	var b strings.Builder
	b.WriteString("# Cases\n\n| Case |")
	for _, id := range modelIDs {
		fmt.Fprintf(&b, " %s |", escapeCell(id))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(modelIDs)))
	b.WriteString("\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "| %s |", escapeCell(g.CaseID))
		for _, id := range modelIDs {
			fmt.Fprintf(&b, " %s |", caseStatus(g, id))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ComparisonMarkdown renders a two-model comparison.
func ComparisonMarkdown(cmp aggregate.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s vs %s\n\n", escapeCell(cmp.BaselineID), escapeCell(cmp.CandidateID))
	b.WriteString("| Model | Total | Passed | Failed | Pass rate | Avg latency |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, m := range []struct {
		id string
		st aggregate.ModelStats
	}{{cmp.BaselineID, cmp.Baseline}, {cmp.CandidateID, cmp.Candidate}} {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d%% | %s |\n",
			escapeCell(m.id), m.st.Total, m.st.Passed, m.st.Failed, m.st.PassRate,
			formatLatency(float64(m.st.AvgLatencyMs)))
	}
	fmt.Fprintf(&b, "\n%s\n", InterpretComparison(cmp))

	var changed []aggregate.CaseComparison
	for _, c := range cmp.Cases {
		if c.Changed() {
			changed = append(changed, c)
		}
	}
	if len(changed) > 0 {
		b.WriteString("\n## Changed cases\n\n")
		fmt.Fprintf(&b, "| Case | %s | %s |\n|---|---|---|\n", escapeCell(cmp.BaselineID), escapeCell(cmp.CandidateID))
		for _, c := range changed {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(c.CaseID), c.Baseline, c.Candidate)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// writeHTML converts markdown to a standalone HTML page.
func writeHTML(w io.Writer, title, markdown string) error {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("reporting: rendering HTML: %w", err)
	}
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String())
	return err
}
