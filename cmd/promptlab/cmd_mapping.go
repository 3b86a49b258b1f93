package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/promptlab/promptlab/internal/dataset"
	"github.com/promptlab/promptlab/internal/mapping"
	"github.com/promptlab/promptlab/internal/template"
)

func newMappingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect how dataset columns feed template variables",
	}
	cmd.AddCommand(newMappingPreviewCommand())
	cmd.AddCommand(newMappingSuggestCommand())
	return cmd
}

type mappingPreviewOptions struct {
	templatePath string
	datasetPath  string
	maps         []string
	samples      int
	format       string
	check        bool
}

func newMappingPreviewCommand() *cobra.Command {
	opts := &mappingPreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview --template <file> --dataset <file>",
		Short: "Render the first cases of a dataset through a template",
		Long: `Resolve the column mapping for a dataset, check it against the
template's variables and render the first few cases.

The mapping is taken from --map, then the dataset's column_mapping, then
the mapping in .promptlab.yaml, and finally matches columns to variables
by name. With --check the command exits with code 1 when a variable has
no column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMappingPreview(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "Template file, or - for stdin")
	cmd.Flags().StringVarP(&opts.datasetPath, "dataset", "d", "", "Dataset file (.yaml, .json, .csv)")
	cmd.Flags().StringArrayVar(&opts.maps, "map", nil, "Column mapping column=variable (repeatable)")
	cmd.Flags().IntVarP(&opts.samples, "samples", "n", 0, "Number of cases to render (default from .promptlab.yaml)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Exit with code 1 when the mapping is invalid")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runMappingPreview(cmd *cobra.Command, opts *mappingPreviewOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", opts.format)
	}
	tmpl, err := readSource(cmd, opts.templatePath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runMap, err := parseMapping(opts.maps)
	if err != nil {
		return err
	}
	f, err := dataset.Load(opts.datasetPath)
	if err != nil {
		return err
	}

	ds := f.Dataset
	if len(ds.ColumnMapping) == 0 {
		ds.ColumnMapping = cfg.Mapping
	}
	samples := opts.samples
	if samples <= 0 {
		samples = cfg.Defaults.Samples
	}

	res, err := mapping.Preview(tmpl, ds, f.Cases, runMap, samples)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if err := writePreview(w, res, len(f.Cases)); err != nil {
		return err
	}

	if opts.check && !res.Validation.IsValid {
		return &TestFailureError{
			Message: "mapping leaves variables unbound: " + strings.Join(res.Validation.MissingVariables, ", "),
		}
	}
	return nil
}

func writePreview(w io.Writer, res mapping.PreviewResult, caseCount int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset:   %s (%d cases)\n", res.DatasetID, caseCount)
	fmt.Fprintf(&b, "Variables: %s\n", joinOrNone(res.Variables))
	fmt.Fprintf(&b, "Mapping (%s):\n", res.MappingSource)
	for _, c := range slices.Sorted(maps.Keys(res.ResolvedMapping)) {
		fmt.Fprintf(&b, "  %s -> %s\n", c, res.ResolvedMapping[c])
	}

	v := res.Validation
	if v.IsValid {
		b.WriteString("Validation: valid\n")
	} else {
		b.WriteString("Validation: invalid\n")
		fmt.Fprintf(&b, "  missing variables: %s\n", strings.Join(v.MissingVariables, ", "))
	}
	if len(v.UnusedColumns) > 0 {
		fmt.Fprintf(&b, "  unused columns: %s\n", strings.Join(v.UnusedColumns, ", "))
	}
	for _, warn := range v.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", warn)
	}

	for i, s := range res.Samples {
		if s.Error != nil {
			fmt.Fprintf(&b, "\n--- Sample %d: %s (error) ---\n%s\n", i+1, s.CaseID, *s.Error)
			continue
		}
		fmt.Fprintf(&b, "\n--- Sample %d: %s ---\n%s\n", i+1, s.CaseID, strings.TrimRight(*s.Rendered, "\n"))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

type mappingSuggestOptions struct {
	templatePath string
	datasetPath  string
	format       string
}

func newMappingSuggestCommand() *cobra.Command {
	opts := &mappingSuggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest --template <file> --dataset <file>",
		Short: "Suggest a column mapping from column names",
		Long: `Propose a column_mapping for a dataset by matching its columns to the
template's variables: exact names first, then case-insensitive names,
then common aliases such as query for question.

With --format yaml the output is a column_mapping block ready to paste
into the dataset file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMappingSuggest(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "Template file, or - for stdin")
	cmd.Flags().StringVarP(&opts.datasetPath, "dataset", "d", "", "Dataset file (.yaml, .json, .csv)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runMappingSuggest(cmd *cobra.Command, opts *mappingSuggestOptions) error {
	tmpl, err := readSource(cmd, opts.templatePath)
	if err != nil {
		return err
	}
	f, err := dataset.Load(opts.datasetPath)
	if err != nil {
		return err
	}
	if len(f.Cases) == 0 {
		return mapping.ErrNoCases
	}

	vars := template.ExtractVariables(tmpl)
	suggested := mapping.Suggest(f.Cases[0].Columns(), vars)

	w := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"column_mapping": suggested})
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]mapping.Mapping{"column_mapping": suggested}); err != nil {
			return err
		}
		return enc.Close()
	case "text":
	default:
		return fmt.Errorf("unsupported format %q: must be text, json or yaml", opts.format)
	}

	for _, c := range slices.Sorted(maps.Keys(suggested)) {
		fmt.Fprintf(w, "%s -> %s\n", c, suggested[c]) //nolint:errcheck
	}
	var unmatched []string
	for _, v := range vars {
		if !mappedTo(suggested, v) {
			unmatched = append(unmatched, v)
		}
	}
	if len(unmatched) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "no column found for: %s\n", strings.Join(unmatched, ", ")) //nolint:errcheck
	}
	return nil
}

func mappedTo(m mapping.Mapping, variable string) bool {
	for _, v := range m {
		if v == variable {
			return true
		}
	}
	return false
}
