package main

import (
	"encoding/json"
	"fmt"

	"github.com/jgillick/jwalk/internal/export"
	"github.com/spf13/cobra"
)

func newInspectCmd(opts *options) *cobra.Command {
	var (
		format string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "inspect PATH...",
		Short: "List the global variables, objects and functions of files",
		Long: `Prints every global variable, object and function in the given files or
directories, with notes for implicit globals, constructors and methods.

Examples:
  jwalk inspect app.js
  jwalk inspect src --format csv
  jwalk inspect src --all -e vendor,dist`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = opts.cfg.Format
			}
			files, err := opts.analyze(cmd, args)
			if err != nil {
				return err
			}

			var rows []export.InspectRow
			for _, sf := range files {
				rows = append(rows, export.BuildInspectRows(sf, export.InspectOptions{All: all})...)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "csv":
				return export.WriteCSV(out, rows)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if rows == nil {
					rows = []export.InspectRow{}
				}
				return enc.Encode(rows)
			case "table":
				return export.WriteTable(out, rows, isTerminal(out))
			default:
				return fmt.Errorf("unknown format %q (want table, csv or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, csv, json")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include cloaked functions and objects")
	return cmd
}
