package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/promptlab/promptlab/internal/aggregate"
	"github.com/promptlab/promptlab/internal/models"
	"github.com/promptlab/promptlab/internal/projectconfig"
	"github.com/promptlab/promptlab/internal/reporting"
	"github.com/promptlab/promptlab/internal/results"
	"github.com/promptlab/promptlab/internal/spinner"
)

// loadConfig loads .promptlab.yaml from the working directory or its
// parents, falling back to defaults.
func loadConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		slog.Debug("Loaded project config", "path", cfg.Path)
	}
	return cfg, nil
}

func thresholdsFrom(cfg *projectconfig.ProjectConfig) aggregate.Thresholds {
	return aggregate.Thresholds{Good: cfg.Thresholds.Good, Fair: cfg.Thresholds.Fair}
}

// outputOptions resolves --format against the project default and decides
// whether to colour output.
func outputOptions(cmd *cobra.Command, format string, cfg *projectconfig.ProjectConfig) (reporting.Options, error) {
	if format == "" {
		format = cfg.Defaults.Format
	}
	f, err := reporting.ParseFormat(format)
	if err != nil {
		return reporting.Options{}, err
	}
	th := thresholdsFrom(cfg)
	if err := th.Validate(); err != nil {
		return reporting.Options{}, err
	}
	return reporting.Options{
		Format:     f,
		Color:      useColor(cmd, cfg),
		Thresholds: th,
	}, nil
}

// useColor enables colour only for terminal output, unless disabled by
// --no-color, NO_COLOR or the project file.
func useColor(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	if cfg.Defaults.Color != nil && !*cfg.Defaults.Color {
		return false
	}
	if color.NoColor {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// openStore reads result files from paths, or from the configured results
// directory when paths is empty.
func openStore(paths []string, cfg *projectconfig.ProjectConfig) *results.FileStore {
	if len(paths) == 0 {
		paths = []string{cfg.Paths.Results}
	}
	return results.NewFileStore(paths, cfg.Defaults.Concurrency)
}

// loadResults reads every run from paths, or from the configured results
// directory when paths is empty. With runID set only that run is loaded.
func loadResults(cmd *cobra.Command, paths []string, runID string, cfg *projectconfig.ProjectConfig) ([]models.TestRun, []models.EvaluationOutcome, error) {
	store := openStore(paths, cfg)
	ctx := cmd.Context()

	var (
		runs     []models.TestRun
		outcomes []models.EvaluationOutcome
	)
	err := spinner.While(cmd.ErrOrStderr(), "Loading results", func() error {
		if runID != "" {
			run, err := store.GetRun(ctx, runID)
			if err != nil {
				return err
			}
			runs = []models.TestRun{*run}
			outcomes, err = store.Outcomes(ctx, runID)
			return err
		}
		var err error
		if runs, err = store.ListRuns(ctx); err != nil {
			return err
		}
		outcomes, err = results.AllOutcomes(ctx, store)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("Loaded results", "runs", len(runs), "outcomes", len(outcomes))
	return runs, outcomes, nil
}

// readSource reads a file, or stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
