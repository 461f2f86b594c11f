package main

import (
	"fmt"

	"github.com/jgillick/jwalk/internal/export"
	"github.com/spf13/cobra"
)

func newTreeCmd(opts *options) *cobra.Command {
	var comments bool
	cmd := &cobra.Command{
		Use:   "tree PATH...",
		Short: "Print the scope tree of files",
		Long: `Prints a tree of the symbols in each file, one per line:

  [line:offset] name (params) <type> - constructor

Examples:
  jwalk tree app.js
  jwalk tree app.js --comments`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := opts.analyze(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			topts := export.TreeOptions{Comments: comments, Color: isTerminal(out)}
			for i, sf := range files {
				if len(files) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "%s\n", sf.Path)
				}
				if err := export.PrintTree(out, sf, topts); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&comments, "comments", "c", false, "print doc comments above their symbols")
	return cmd
}
