// Package reporting renders aggregated evaluation results as terminal
// tables, JSON, Markdown, HTML and JUnit XML.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/models"
)

// Format selects an output renderer.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJUnit    Format = "junit"
)

// Formats lists every accepted format.
var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown, FormatHTML, FormatJUnit}

// ParseFormat validates s as an output format. An empty string selects
// the table format; "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case FormatTable, FormatJSON, FormatMarkdown, FormatHTML, FormatJUnit:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want one of %s)", s, joinFormats(Formats))
	}
}

func joinFormats(fs []Format) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// Options controls rendering. Color is honoured by the table format only.
type Options struct {
	Format     Format
	Color      bool
	Thresholds aggregate.Thresholds
}

// Report is the stats view over one or more runs.
type Report struct {
	ID          string                     `json:"id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Runs        []models.TestRun           `json:"runs"`
	Summary     aggregate.Summary          `json:"summary"`
	Grades      map[string]aggregate.Grade `json:"grades"`
	Thresholds  aggregate.Thresholds       `json:"thresholds"`
	Outcomes    []models.EvaluationOutcome `json:"-"`
}

// BuildOptions narrows a report to selected models and prompts. Empty
// lists keep every id seen in the outcomes.
type BuildOptions struct {
	ModelIDs   []string
	PromptIDs  []string
	Thresholds aggregate.Thresholds
	Now        func() time.Time
}

// Build aggregates outcomes into a Report. Grades are computed per model
// from the model pass rate.
func Build(runs []models.TestRun, outcomes []models.EvaluationOutcome, opts BuildOptions) *Report {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	runID := ""
	if len(runs) == 1 {
		runID = runs[0].ID
	}

	summary := aggregate.Summarize(runID, outcomes)
	if len(opts.ModelIDs) > 0 {
		summary.ModelIDs = opts.ModelIDs
		summary.ByModel = aggregate.ComputeModelStats(outcomes, opts.ModelIDs)
	}
	if len(opts.PromptIDs) > 0 {
		summary.PromptIDs = opts.PromptIDs
		summary.ByPrompt = aggregate.ComputePromptStats(outcomes, opts.PromptIDs)
	}

	grades := make(map[string]aggregate.Grade, len(summary.ModelIDs))
	for _, id := range summary.ModelIDs {
		grades[id] = opts.Thresholds.Grade(summary.ByModel[id].PassRate)
	}

	if runs == nil {
		runs = []models.TestRun{}
	}
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: now().UTC(),
		Runs:        runs,
		Summary:     summary,
		Grades:      grades,
		Thresholds:  opts.Thresholds,
		Outcomes:    outcomes,
	}
}

// WriteReport renders r to w in the requested format.
func WriteReport(w io.Writer, r *Report, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatMarkdown:
		_, err := io.WriteString(w, ReportMarkdown(r))
		return err
	case FormatHTML:
		return writeHTML(w, "Evaluation report", ReportMarkdown(r))
	case FormatJUnit:
		return WriteJUnitXML(w, r)
	case FormatTable, "":
		return writeReportTable(w, r, opts.Color)
	default:
		return fmt.Errorf("reporting: unsupported format %q", opts.Format)
	}
}

// WriteCases renders outcomes grouped by dataset case with one status
// column per model. HTML and JUnit are not available for this view.
func WriteCases(w io.Writer, groups []aggregate.CaseGroup, modelIDs []string, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, groups)
	case FormatMarkdown:
		_, err := io.WriteString(w, CasesMarkdown(groups, modelIDs))
		return err
	case FormatHTML:
		return writeHTML(w, "Cases", CasesMarkdown(groups, modelIDs))
	case FormatTable, "":
		return writeCasesTable(w, groups, modelIDs, opts.Color)
	default:
		return fmt.Errorf("reporting: format %q is not supported for case listings", opts.Format)
	}
}

// WriteComparison renders a two-model comparison.
func WriteComparison(w io.Writer, cmp aggregate.Comparison, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, cmp)
	case FormatMarkdown:
		_, err := io.WriteString(w, ComparisonMarkdown(cmp))
		return err
	case FormatHTML:
		return writeHTML(w, "Model comparison", ComparisonMarkdown(cmp))
	case FormatTable, "":
		return writeComparisonTable(w, cmp, opts)
	default:
		return fmt.Errorf("reporting: format %q is not supported for comparisons", opts.Format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("reporting: encoding JSON: %w", err)
	}
	return nil
}

func formatLatency(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}
