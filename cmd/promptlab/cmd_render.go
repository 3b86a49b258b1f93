package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/dataset"
	"github.com/promptlab/promptlab/internal/mapping"
	"github.com/promptlab/promptlab/internal/projectconfig"
	"github.com/promptlab/promptlab/internal/template"
	"github.com/promptlab/promptlab/internal/wizard"
)

type renderOptions struct {
	vars        []string
	maps        []string
	csvPath     string
	row         int
	datasetPath string
	caseID      string
	strict      bool
	interactive bool
	format      string
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <template-file | ->",
		Short: "Render a prompt template with variable bindings",
		Long: `Render a prompt template by substituting {{variable}} placeholders.

Bindings come from, in increasing priority:
  1. A dataset row (--csv with --row, or --dataset with --case), mapped onto
     variables through --map, the dataset's column mapping or the project
     mapping, falling back to column names
  2. --var name=value flags
  3. Interactive prompts for anything still unbound (--interactive)

Placeholders without a binding are left in place and listed on stderr.
With --strict they are an error instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "Variable binding name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.maps, "map", nil, "Column mapping column=variable (repeatable)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV file to take a row of bindings from")
	cmd.Flags().IntVar(&opts.row, "row", 1, "1-based CSV data row to use with --csv")
	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Dataset file (.yaml, .json, .csv) to take a case from")
	cmd.Flags().StringVar(&opts.caseID, "case", "", "Case id to use with --dataset (default: first case)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when a placeholder has no binding")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for unbound variables")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.MarkFlagsMutuallyExclusive("csv", "dataset")

	return cmd
}

func runRender(cmd *cobra.Command, source string, opts *renderOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", opts.format)
	}

	tmpl, err := readSource(cmd, source)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bindings, err := rowBindings(opts, cfg)
	if err != nil {
		return err
	}
	explicit, err := wizard.ParseAssignments(opts.vars)
	if err != nil {
		return err
	}
	maps.Copy(bindings, explicit)

	if opts.interactive {
		in := cmd.InOrStdin()
		bindings, err = wizard.PromptBindings(in, cmd.ErrOrStderr(), template.ExtractVariables(tmpl), bindings,
			wizard.Options{Accessible: !wizard.IsTerminal(in)})
		if err != nil {
			return err
		}
	}

	if opts.strict {
		if _, err := template.RenderStrict(tmpl, bindings); err != nil {
			return err
		}
	}
	res := template.Render(tmpl, bindings)

	w := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if _, err := fmt.Fprint(w, res.Output); err != nil {
		return err
	}
	if !strings.HasSuffix(res.Output, "\n") {
		fmt.Fprintln(w) //nolint:errcheck
	}
	if len(res.Unresolved) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "unresolved: %s\n", strings.Join(res.Unresolved, ", ")) //nolint:errcheck
	}
	return nil
}

// rowBindings returns the bindings taken from the selected CSV row or
// dataset case, or an empty map when neither is requested.
func rowBindings(opts *renderOptions, cfg *projectconfig.ProjectConfig) (map[string]string, error) {
	runMap, err := parseMapping(opts.maps)
	if err != nil {
		return nil, err
	}

	var (
		row        map[string]any
		datasetMap mapping.Mapping
	)
	switch {
	case opts.csvPath != "":
		t, err := dataset.LoadCSV(opts.csvPath)
		if err != nil {
			return nil, err
		}
		r, err := t.Row(opts.row)
		if err != nil {
			return nil, err
		}
		row = make(map[string]any, len(r))
		for k, v := range r {
			row[k] = v
		}
	case opts.datasetPath != "":
		f, err := dataset.Load(opts.datasetPath)
		if err != nil {
			return nil, err
		}
		if len(f.Cases) == 0 {
			return nil, mapping.ErrNoCases
		}
		tc := f.Cases[0]
		if opts.caseID != "" {
			found := false
			for _, c := range f.Cases {
				if c.ID == opts.caseID {
					tc, found = c, true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("case %q not found in %s", opts.caseID, opts.datasetPath)
			}
		}
		row = tc.RawInput
		datasetMap = f.Dataset.ColumnMapping
	default:
		return map[string]string{}, nil
	}

	if len(datasetMap) == 0 {
		datasetMap = cfg.Mapping
	}
	columns := make([]string, 0, len(row))
	for k := range row {
		columns = append(columns, k)
	}
	resolved, src := mapping.Resolve(runMap, datasetMap, columns)
	slog.Debug("Resolved column mapping", "source", src, "columns", len(columns))
	return mapping.Bindings(mapping.Apply(row, resolved)), nil
}

// parseMapping parses column=variable pairs.
func parseMapping(pairs []string) (mapping.Mapping, error) {
	m, err := wizard.ParseAssignments(pairs)
	if err != nil {
		return nil, fmt.Errorf("--map: %w", err)
	}
	for col, v := range m {
		if v == "" {
			return nil, fmt.Errorf("--map: empty variable for column %q", col)
		}
	}
	return mapping.Mapping(m), nil
}
