package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jgillick/jwalk/internal/graph"
	"github.com/spf13/cobra"
)

func newCommentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "comments PATH...",
		Short: "List comments with the symbols around them",
		Long: `Lists every comment in file order with its position and the symbols that
immediately precede and follow it.

Example:
  jwalk comments app.js`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.BindComments() {
				return fmt.Errorf("comment association is disabled")
			}
			files, err := opts.analyze(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, sf := range files {
				if len(files) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "%s\n", sf.Path)
				}
				writeComments(out, sf)
			}
			return nil
		},
	}
}

func writeComments(w io.Writer, sf *graph.ScriptFile) {
	g := sf.Graph
	for _, id := range sf.Comments {
		c := g.Comment(id)
		fmt.Fprintf(w, "[%d:%d] %s .. %s\n", c.Pos.Line, c.Pos.Offset,
			bracketName(g, c.PrevSibling, "<start>"), bracketName(g, c.NextSibling, "<end>"))
		for _, line := range strings.Split(c.Body(), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func bracketName(g *graph.Graph, id graph.NodeID, none string) string {
	if id == graph.NoNode {
		return none
	}
	if name := g.QualifiedName(id); name != "" {
		return name
	}
	return "[anonymous]"
}
