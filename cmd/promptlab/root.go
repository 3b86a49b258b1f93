package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promptlab",
		Short: "promptlab - inspect and compare prompt evaluation results",
		Long: `promptlab reads the outcomes recorded by a prompt evaluation service and
reshapes them for comparison.

It extracts and renders {{variable}} placeholders in prompt templates,
previews how dataset columns map onto template variables, and aggregates
pass/fail statistics per model, per prompt and per dataset case.`,
		Version:      appVersion,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newVarsCommand())
	cmd.AddCommand(newRenderCommand())
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newCasesCommand())
	cmd.AddCommand(newOutcomesCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newMappingCommand())
	cmd.AddCommand(newAssertionsCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
