package mcptools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the five jwalk tools registered.
func NewMCPServer(svc *JWalkService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "jwalk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_file",
		Description: "Build the scope tree of one JavaScript or TypeScript file. Returns its symbols in source order (functions, variables, objects, properties, methods) with inferred literal types, constructors, implicit globals and doc comments.",
	}, svc.AnalyzeFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_directory",
		Description: "Analyze every JavaScript and TypeScript file under a directory and store the symbols in the index used by query_symbols, get_symbol and list_implicit_globals. Re-indexing a file replaces its previous symbols.",
	}, svc.IndexDirectory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_symbols",
		Description: "Search indexed symbols by case-insensitive name or qualified-name substring. Optionally filter by kind and file and limit results.",
	}, svc.QuerySymbols)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_symbol",
		Description: "Return one indexed symbol by ID together with its direct members.",
	}, svc.GetSymbol)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_implicit_globals",
		Description: "List indexed variables that were assigned without a declaration and therefore leak into the global scope.",
	}, svc.ListImplicitGlobals)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// NewHTTPHandler serves the MCP streamable HTTP transport on /mcp and
// Prometheus metrics on /metrics.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// RunHTTP starts an HTTP server exposing the MCP tools and metrics on addr.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
	}()

	logger.Info("serving MCP over HTTP", "addr", addr, "endpoint", "/mcp", "metrics", "/metrics")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
