package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/template"
)

func newVarsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "vars <template-file | ->",
		Short: "List the {{variables}} used by a prompt template",
		Long: `List every {{variable}} placeholder in a prompt template, once each, in
order of first appearance. Use "-" to read the template from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			vars := template.ExtractVariables(tmpl)

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string][]string{"variables": vars})
			case "text", "":
				for _, v := range vars {
					fmt.Fprintln(w, v) //nolint:errcheck
				}
				return nil
			default:
				return fmt.Errorf("unsupported format %q: must be text or json", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	return cmd
}
