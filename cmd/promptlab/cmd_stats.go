package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/metrics"
	"github.com/promptlab/promptlab/internal/reporting"
)

type statsOptions struct {
	runID       string
	modelIDs    []string
	promptIDs   []string
	format      string
	minPassRate int
}

func newStatsCommand() *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats [results...]",
		Short: "Show pass/fail statistics per model and prompt",
		Long: `Aggregate evaluation outcomes into run, model and prompt statistics.

Arguments are result files (.json, .jsonl, optionally .gz or .zst
compressed) or directories holding them. Without arguments the results
directory from .promptlab.yaml is read.

With --min-pass-rate the command exits with code 1 when the overall pass
rate, rounded to a whole percent, is below the given value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "Only include the run with this id")
	cmd.Flags().StringSliceVar(&opts.modelIDs, "models", nil, "Models to report on, in order (default: every model seen)")
	cmd.Flags().StringSliceVar(&opts.promptIDs, "prompts", nil, "Prompts to report on, in order (default: every prompt seen)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: table, json, markdown, html or junit")
	cmd.Flags().IntVar(&opts.minPassRate, "min-pass-rate", -1, "Fail with exit code 1 when the pass rate is below this percentage")

	return cmd
}

func runStats(cmd *cobra.Command, paths []string, opts *statsOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := outputOptions(cmd, opts.format, cfg)
	if err != nil {
		return err
	}

	runs, outcomes, err := loadResults(cmd, paths, opts.runID, cfg)
	if err != nil {
		return err
	}

	report := reporting.Build(runs, outcomes, reporting.BuildOptions{
		ModelIDs:   opts.modelIDs,
		PromptIDs:  opts.promptIDs,
		Thresholds: out.Thresholds,
	})
	if err := reporting.WriteReport(cmd.OutOrStdout(), report, out); err != nil {
		return err
	}

	gate := opts.minPassRate
	if gate < 0 {
		gate = cfg.Thresholds.MinPassRate
	}
	if gate <= 0 {
		return nil
	}
	rate := metrics.RoundHalfUp(report.Summary.PassRate)
	slog.Debug("Checking pass-rate gate", "pass_rate", rate, "min", gate)
	if rate < gate {
		return &TestFailureError{
			Message: fmt.Sprintf("pass rate %d%% is below the required %d%% (%s)", rate, gate, failingModels(report)),
		}
	}
	return nil
}

// failingModels names the models graded below good, for the gate message.
func failingModels(r *reporting.Report) string {
	var names []string
	for _, id := range r.Summary.ModelIDs {
		st := r.Summary.ByModel[id]
		if st.PassRate < r.Thresholds.Good {
			names = append(names, fmt.Sprintf("%s %d%%", id, st.PassRate))
		}
	}
	if len(names) == 0 {
		return "no model below the good threshold"
	}
	return strings.Join(names, ", ")
}
