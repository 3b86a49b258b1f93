package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/assertions"
	"github.com/promptlab/promptlab/internal/dataset"
	"github.com/promptlab/promptlab/internal/models"
)

func newAssertionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assertions",
		Short: "Inspect dataset assertions",
	}
	cmd.AddCommand(newAssertionsMergeCommand())
	return cmd
}

type assertionsMergeOptions struct {
	datasetPath string
	caseID      string
	format      string
}

// mergedCase is the JSON form of one case's effective assertions.
type mergedCase struct {
	CaseID     string             `json:"case_id"`
	Assertions []models.Assertion `json:"assertions"`
}

func newAssertionsMergeCommand() *cobra.Command {
	opts := &assertionsMergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge --dataset <file>",
		Short: "Show the assertions each case is evaluated with",
		Long: `Merge the dataset's default assertions with each case's own.

A case assertion replaces the default of the same type and value, and
llm-rubric replaces any default rubric. A case with an expected output
also gets a contains assertion for it unless one already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssertionsMerge(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.datasetPath, "dataset", "d", "", "Dataset file (.yaml, .json, .csv)")
	cmd.Flags().StringVar(&opts.caseID, "case", "", "Only show this case")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runAssertionsMerge(cmd *cobra.Command, opts *assertionsMergeOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", opts.format)
	}
	f, err := dataset.Load(opts.datasetPath)
	if err != nil {
		return err
	}

	merged := make([]mergedCase, 0, len(f.Cases))
	for _, tc := range f.Cases {
		if opts.caseID != "" && tc.ID != opts.caseID {
			continue
		}
		merged = append(merged, mergedCase{CaseID: tc.ID, Assertions: assertions.MergeCase(f.Dataset, tc)})
	}
	if opts.caseID != "" && len(merged) == 0 {
		return fmt.Errorf("case %q not found in %s", opts.caseID, opts.datasetPath)
	}

	w := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(merged)
	}

	var b strings.Builder
	for i, mc := range merged {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s (%d)\n", mc.CaseID, len(mc.Assertions))
		for _, a := range mc.Assertions {
			b.WriteString("  " + describeAssertion(a) + "\n")
		}
	}
	_, err = fmt.Fprint(w, b.String())
	return err
}

func describeAssertion(a models.Assertion) string {
	s := string(a.Type)
	if a.Value != "" {
		s += fmt.Sprintf(" %q", a.Value)
	}
	if a.Threshold != nil {
		s += fmt.Sprintf(" (threshold %g)", *a.Threshold)
	}
	return s
}
