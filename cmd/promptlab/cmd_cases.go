package main

import (
	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/reporting"
)

type casesOptions struct {
	runID    string
	modelIDs []string
	filter   string
	format   string
}

func newCasesCommand() *cobra.Command {
	opts := &casesOptions{}

	cmd := &cobra.Command{
		Use:   "cases [results...]",
		Short: "Show outcomes side by side per dataset case",
		Long: `Group evaluation outcomes by dataset case and show the status of every
model for each case. Cases appear in the order they were first recorded.

--filter keeps only passed or failed outcomes before grouping.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCases(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "Only include the run with this id")
	cmd.Flags().StringSliceVar(&opts.modelIDs, "models", nil, "Model columns, in order (default: every model seen)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Outcome filter: all, passed or failed")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table, json, markdown or html")

	return cmd
}

func runCases(cmd *cobra.Command, paths []string, opts *casesOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := outputOptions(cmd, opts.format, cfg)
	if err != nil {
		return err
	}
	filterName := opts.filter
	if filterName == "" {
		filterName = cfg.Defaults.Filter
	}
	filter, err := aggregate.ParseFilter(filterName)
	if err != nil {
		return err
	}

	_, outcomes, err := loadResults(cmd, paths, opts.runID, cfg)
	if err != nil {
		return err
	}

	modelIDs := opts.modelIDs
	if len(modelIDs) == 0 {
		modelIDs = aggregate.SeenModelIDs(outcomes)
	}
	groups := aggregate.GroupByDatasetCase(aggregate.FilterOutcomes(outcomes, filter))
	return reporting.WriteCases(cmd.OutOrStdout(), groups, modelIDs, out)
}
