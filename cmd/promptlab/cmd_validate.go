package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/validation"
)

func newValidateCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <file...>",
		Short: "Validate result, dataset and project files against their schemas",
		Long: `Validate files against the JSON schemas embedded in promptlab.

The file kind is detected from its name and content:
  - .promptlab.yaml is checked as project configuration
  - .yaml/.yml files and JSON objects with "cases" are datasets
  - other .json and .jsonl files are evaluation results
Result files may be gzip (.gz) or zstd (.zst) compressed.

Exits with code 1 when any file has schema errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	return cmd
}

func runValidate(cmd *cobra.Command, paths []string, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", format)
	}

	reports := make([]*validation.Report, 0, len(paths))
	invalid := 0
	for _, p := range paths {
		r, err := validation.ValidateFile(p)
		if err != nil {
			return err
		}
		if !r.Valid() {
			invalid++
		}
		reports = append(reports, r)
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		var b strings.Builder
		for _, r := range reports {
			if r.Valid() {
				fmt.Fprintf(&b, "✅ %s (%s)\n", r.Path, r.Kind)
				continue
			}
			fmt.Fprintf(&b, "❌ %s (%s)\n", r.Path, r.Kind)
			for _, e := range r.Errors {
				fmt.Fprintf(&b, "   %s\n", e)
			}
		}
		if _, err := fmt.Fprint(w, b.String()); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return &TestFailureError{Message: fmt.Sprintf("%d of %d files failed validation", invalid, len(paths))}
	}
	return nil
}
