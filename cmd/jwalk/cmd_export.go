package main

import (
	"io"
	"os"

	"github.com/jgillick/jwalk/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		output  string
		inspect bool
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "export PATH...",
		Short: "Write the symbol listing of files as JSON",
		Long: `Writes every file's symbols in source order, its comments and the edges
between them as JSON.

Examples:
  jwalk export src -o symbols.json
  jwalk export app.js --inspect`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := opts.analyze(cmd, args)
			if err != nil {
				return err
			}
			data, err := export.GenerateJSON(files, export.JSONOptions{Inspect: inspect, All: all})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "include the inspect report rows")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include cloaked symbols in the inspect rows")
	return cmd
}

func newDiagramCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "diagram PATH...",
		Short: "Print a Mermaid diagram of the scope trees",
		Long: `Prints a Mermaid "graph TD" diagram with one subgraph per file and an arrow
from each scope to the symbols it holds. Implicit globals are highlighted.

Example:
  jwalk diagram app.js > scopes.mmd`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := opts.analyze(cmd, args)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, []byte(export.GenerateMermaid(files)))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
