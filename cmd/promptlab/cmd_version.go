package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/version"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Manage semantic versions of prompts",
		Long: `Work with semantic versions of prompt templates.

A version history is a YAML file listing every revision of one prompt.
New revisions are drafts until activated; activating a version
deprecates the previously active one.`,
	}
	cmd.AddCommand(newVersionBumpCommand())
	cmd.AddCommand(newVersionListCommand())
	cmd.AddCommand(newVersionAddCommand())
	cmd.AddCommand(newVersionActivateCommand())
	return cmd
}

func newVersionBumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bump <version> [major|minor|patch]",
		Short: "Print the next version number",
		Long: `Print the version that follows <version> for a change kind.
A major bump resets minor and patch, a minor bump resets patch.
The change defaults to minor.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Parse(args[0])
			if err != nil {
				return err
			}
			change := ""
			if len(args) == 2 {
				change = args[1]
			}
			c, err := version.ParseChange(change)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), version.Bump(v, c))
			return err
		},
	}
}

func newVersionListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list <history.yaml>",
		Short: "List the versions in a history file, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be text or json", format)
			}
			h, err := version.LoadHistory(args[0])
			if err != nil {
				return err
			}
			sorted := version.Sort(h.Versions)

			w := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(sorted)
			}
			if len(sorted) == 0 {
				_, err := fmt.Fprintf(w, "No versions of %s\n", h.PromptID)
				return err
			}
			var b strings.Builder
			fmt.Fprintf(&b, "%-10s %-14s %-11s %s\n", "VERSION", "ID", "STATUS", "NOTE")
			for _, v := range sorted {
				marker := " "
				if v.IsActive {
					marker = "*"
				}
				note := ""
				if v.ChangeNote != nil {
					note = *v.ChangeNote
				}
				fmt.Fprintf(&b, "%s%-9s %-14s %-11s %s\n", marker, v.Version(), v.ID, v.Status, note)
			}
			_, err = fmt.Fprint(w, b.String())
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	return cmd
}

func newVersionAddCommand() *cobra.Command {
	var (
		change string
		note   string
	)

	cmd := &cobra.Command{
		Use:   "add <history.yaml> <template-file | ->",
		Short: "Record a new version of a prompt",
		Long: `Append the template as a new version to a history file, creating the
file when it does not exist. The first version is 1.0.0 and active; later
versions are drafts bumped from the latest by --change.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := version.ParseChange(change)
			if err != nil {
				return err
			}
			content, err := readSource(cmd, args[1])
			if err != nil {
				return err
			}
			h, err := version.LoadHistory(args[0])
			if err != nil {
				return err
			}
			var notePtr *string
			if note != "" {
				notePtr = &note
			}
			v := h.Add(content, c, notePtr, time.Now().UTC())
			if err := h.Save(args[0]); err != nil {
				return err
			}
			slog.Debug("Added prompt version", "prompt", v.PromptID, "version", v.Version(), "id", v.ID)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", v.Version(), v.ID, v.Status)
			return err
		},
	}
	cmd.Flags().StringVar(&change, "change", "minor", "Change kind: major, minor or patch")
	cmd.Flags().StringVarP(&note, "note", "m", "", "Change note")
	return cmd
}

func newVersionActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <history.yaml> <version-id>",
		Short: "Make a version the active one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := version.LoadHistory(args[0])
			if err != nil {
				return err
			}
			if err := h.Activate(args[1]); err != nil {
				return err
			}
			if err := h.Save(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Activated %s\n", args[1])
			return err
		},
	}
}
