//go:build cgo

package main

import (
	"fmt"

	"github.com/jgillick/jwalk/internal/graph"
	"github.com/jgillick/jwalk/internal/mcptools"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		db   string
		addr string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Exposes analyze_file, index_directory, query_symbols, get_symbol and
list_implicit_globals as MCP tools. Speaks stdio by default; with --http it
serves streamable HTTP on /mcp and Prometheus metrics on /metrics.

Examples:
  jwalk serve
  jwalk serve --http :8080 --db .jwalk/index/jwalk.kuzu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				store *graph.KuzuStore
				err   error
			)
			if db == "" {
				store, err = graph.NewKuzuStore()
			} else {
				store, err = graph.NewKuzuFileStore(db)
			}
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer store.Close()
			if err := store.InitSchema(cmd.Context()); err != nil {
				return err
			}

			a, closeFn, err := opts.newAnalyzer(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			server := mcptools.NewMCPServer(mcptools.NewJWalkService(store, a, opts.cfg, opts.logger))
			if addr == "" {
				return mcptools.RunStdio(cmd.Context(), server)
			}
			return mcptools.RunHTTP(cmd.Context(), server, addr, opts.logger)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "index database path (default in-memory)")
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}
