//go:build cgo

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jgillick/jwalk/internal/analyzer"
	"github.com/jgillick/jwalk/internal/graph"
	"github.com/spf13/cobra"
)

func init() {
	storeCommands = append(storeCommands, newIndexCmd, newQueryCmd, newServeCmd)
}

// dbPath resolves the --db flag against the configured index directory.
func (o *options) dbPath(flag string) string {
	if flag != "" {
		return flag
	}
	dir := o.cfg.IndexDir
	if dir == "" {
		dir = filepath.Join(".jwalk", "index")
	}
	return filepath.Join(dir, "jwalk.kuzu")
}

func newIndexCmd(opts *options) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "index PATH...",
		Short: "Build files into the persistent symbol index",
		Long: `Analyzes the given files or directories and writes their symbols, comments
and edges to the on-disk index. Files already in the index are replaced.

Examples:
  jwalk index src
  jwalk index src --db /tmp/jwalk.kuzu`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := opts.discover(args)
			if err != nil {
				return err
			}
			a, closeFn, err := opts.newAnalyzer(cmd)
			if err != nil {
				return err
			}
			results, err := a.AnalyzeFiles(cmd.Context(), paths)
			closeFn()
			if err != nil {
				return err
			}

			store, err := graph.NewKuzuFileStore(opts.dbPath(db))
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer store.Close()

			summary, err := analyzer.IndexResults(cmd.Context(), store, results)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					opts.logger.Warn("skipping file", "path", r.Path, "error", r.Err)
				}
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "indexed %d files (%d skipped)\n", summary.Files, summary.Skipped)
			fmt.Fprintf(out, "index: %d files, %d symbols, %d comments, %d edges\n",
				stats.FileCount, stats.SymbolCount, stats.CommentCount, stats.EdgeCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "index database path (default <index_dir>/jwalk.kuzu)")
	return cmd
}

func newQueryCmd(opts *options) *cobra.Command {
	var (
		db       string
		kind     string
		file     string
		limit    int
		globals  bool
		jsonMode bool
	)
	cmd := &cobra.Command{
		Use:   "query [NAME]",
		Short: "Search the symbol index",
		Long: `Searches indexed symbols by a case-insensitive substring of their qualified
name, optionally narrowed by kind and file.

Examples:
  jwalk query render --kind method
  jwalk query --globals`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := graph.NewKuzuFileStore(opts.dbPath(db))
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer store.Close()
			if err := store.InitSchema(cmd.Context()); err != nil {
				return err
			}

			var syms []graph.SymbolRecord
			if globals {
				syms, err = store.ImplicitGlobals(cmd.Context())
			} else {
				q := graph.SymbolQuery{Kind: graph.Kind(strings.ToLower(kind)), FilePath: file, Limit: limit}
				if len(args) > 0 {
					q.Name = args[0]
				}
				syms, err = store.QuerySymbols(cmd.Context(), q)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonMode {
				if syms == nil {
					syms = []graph.SymbolRecord{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(syms)
			}
			writeSymbols(out, syms)
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "index database path (default <index_dir>/jwalk.kuzu)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only symbols of this kind (function, variable, object, property, method)")
	cmd.Flags().StringVar(&file, "file", "", "only symbols from this file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&globals, "globals", false, "list implicit globals instead of searching")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "print results as JSON")
	return cmd
}

func writeSymbols(w io.Writer, syms []graph.SymbolRecord) {
	for _, s := range syms {
		name := s.QualifiedName
		if s.Kind.IsCallable() {
			name += "(" + strings.Join(s.Params, ", ") + ")"
		}
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s", s.FilePath, s.Line, s.Offset, s.Kind, name)
		if s.Constructor {
			fmt.Fprint(w, "\tconstructor")
		}
		if s.ImplicitGlobal {
			fmt.Fprint(w, "\timplicit global")
		}
		fmt.Fprintln(w)
	}
}
