package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/reporting"
	"github.com/promptlab/promptlab/internal/results"
	"github.com/promptlab/promptlab/internal/spinner"
)

type outcomesOptions struct {
	runID    string
	filter   string
	page     int
	pageSize int
	format   string
}

func newOutcomesCommand() *cobra.Command {
	opts := &outcomesOptions{}

	cmd := &cobra.Command{
		Use:   "outcomes [results...]",
		Short: "List the outcomes of one run, a page at a time",
		Long: `List the outcomes of a single run with their status, latency and failed
assertions, followed by a pass/fail breakdown per assertion type.

Without --run the newest run is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutcomes(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "Run id (default: newest run)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Outcome filter: all, passed or failed")
	cmd.Flags().IntVar(&opts.page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 20, "Outcomes per page (0 shows all)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table or json")

	return cmd
}

func runOutcomes(cmd *cobra.Command, paths []string, opts *outcomesOptions) error {
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

	store := openStore(paths, cfg)
	ctx := cmd.Context()

	var view reporting.OutcomeView
	err = spinner.While(cmd.ErrOrStderr(), "Loading results", func() error {
		runID := opts.runID
		if runID == "" {
			runs, err := store.ListRuns(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return results.ErrRunNotFound
			}
			runID = runs[0].ID
			slog.Debug("No run selected, using newest", "run", runID)
		}

		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		page, err := results.OutcomesPage(ctx, store, runID, filter, opts.page, opts.pageSize)
		if err != nil {
			return err
		}
		all, err := store.Outcomes(ctx, runID)
		if err != nil {
			return err
		}
		view = reporting.NewOutcomeView(*run, page, all)
		return nil
	})
	if err != nil {
		return err
	}

	return reporting.WriteOutcomes(cmd.OutOrStdout(), view, out)
}
