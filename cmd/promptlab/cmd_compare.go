package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/reporting"
	"github.com/promptlab/promptlab/internal/statistics"
)

type compareOptions struct {
	runID       string
	baseline    string
	candidate   string
	iterations  int
	confidence  float64
	seed        int64
	format      string
	failOnWorse bool
}

func newCompareCommand() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [results...] --baseline <model> --candidate <model>",
		Short: "Compare the pass rates of two models",
		Long: `Compare two models over the same evaluation outcomes.

Reports both models' statistics, a bootstrap confidence interval of the
pass-rate difference (candidate minus baseline), whether that interval
excludes zero, and the cases where the two models disagree.

With --fail-on-regression the command exits with code 1 when the
candidate is significantly worse than the baseline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "Only include the run with this id")
	cmd.Flags().StringVar(&opts.baseline, "baseline", "", "Baseline model id")
	cmd.Flags().StringVar(&opts.candidate, "candidate", "", "Candidate model id")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 0, "Bootstrap resamples (default from .promptlab.yaml)")
	cmd.Flags().Float64Var(&opts.confidence, "confidence", 0, "Confidence level in (0, 1) (default from .promptlab.yaml)")
	cmd.Flags().Int64Var(&opts.seed, "seed", -1, "Random seed for reproducible intervals (negative: random)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table, json, markdown or html")
	cmd.Flags().BoolVar(&opts.failOnWorse, "fail-on-regression", false, "Exit with code 1 when the candidate is significantly worse")
	_ = cmd.MarkFlagRequired("baseline")
	_ = cmd.MarkFlagRequired("candidate")

	return cmd
}

func runCompare(cmd *cobra.Command, paths []string, opts *compareOptions) error {
	if opts.baseline == opts.candidate {
		return fmt.Errorf("baseline and candidate must differ, both are %q", opts.baseline)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := outputOptions(cmd, opts.format, cfg)
	if err != nil {
		return err
	}

	_, outcomes, err := loadResults(cmd, paths, opts.runID, cfg)
	if err != nil {
		return err
	}
	seen := aggregate.SeenModelIDs(outcomes)
	for _, id := range []string{opts.baseline, opts.candidate} {
		if !slices.Contains(seen, id) {
			return fmt.Errorf("model %q has no outcomes (models seen: %v)", id, seen)
		}
	}

	stat := statistics.Options{
		Level:      cfg.Defaults.ConfidenceLevel,
		Iterations: cfg.Defaults.BootstrapIterations,
		Seed:       opts.seed,
	}
	if opts.iterations > 0 {
		stat.Iterations = opts.iterations
	}
	if opts.confidence > 0 {
		stat.Level = opts.confidence
	}

	cmp := aggregate.CompareModels(outcomes, opts.baseline, opts.candidate, stat)
	if err := reporting.WriteComparison(cmd.OutOrStdout(), cmp, out); err != nil {
		return err
	}

	if opts.failOnWorse && cmp.Significant && cmp.Difference.Mean < 0 {
		return &TestFailureError{
			Message: fmt.Sprintf("%s regressed against %s: %d%% vs %d%%",
				opts.candidate, opts.baseline, cmp.Candidate.PassRate, cmp.Baseline.PassRate),
		}
	}
	return nil
}
