package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jgillick/jwalk/internal/analyzer"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Rebuild files as they change",
		Long: `Watches a directory and rebuilds every changed JavaScript file, printing a
summary line per file. Stop with Ctrl-C.

Example:
  jwalk watch src --debounce 300ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := opts.newAnalyzer(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			w, err := analyzer.NewWatcher(args[0], opts.cfg, a,
				func(_ context.Context, cs analyzer.ChangeSet) {
					for _, r := range cs.Results {
						fmt.Fprintln(out, watchLine(r))
					}
					for _, p := range cs.Removed {
						fmt.Fprintf(out, "  - %s (removed)\n", p)
					}
				},
				analyzer.WithDebounce(debounce),
				analyzer.WithWatchLogger(opts.logger))
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", analyzer.DefaultDebounce, "wait this long for more changes before rebuilding")
	return cmd
}

func watchLine(r analyzer.Result) string {
	if r.Err != nil {
		return analyzer.FormatProgress(analyzer.ProgressEvent{Path: r.Path, Status: analyzer.ProgressFailed, Message: r.Err.Error()})
	}
	sum := analyzer.Summarize(r.File)
	line := analyzer.FormatProgress(analyzer.ProgressEvent{Path: r.Path, Status: analyzer.ProgressComplete, Cached: r.Cached})
	return fmt.Sprintf("%s: %d symbols, %d comments, %d implicit globals",
		line, sum.Symbols, sum.Comments, sum.ImplicitGlobals)
}
