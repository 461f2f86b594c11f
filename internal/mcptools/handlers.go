package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jgillick/jwalk/internal/analyzer"
	"github.com/jgillick/jwalk/internal/config"
	"github.com/jgillick/jwalk/internal/export"
	"github.com/jgillick/jwalk/internal/graph"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultQueryLimit caps query_symbols results when no limit is given.
const defaultQueryLimit = 20

// JWalkService holds the symbol index and analyzer used by MCP tool handlers.
type JWalkService struct {
	store    graph.Store
	analyzer *analyzer.Analyzer
	cfg      *config.ProjectConfig
	logger   *slog.Logger

	// mu serializes index writes; reads go straight to the store.
	mu sync.Mutex
}

// NewJWalkService creates a JWalkService. cfg supplies the discovery
// defaults for index_directory; nil means config.Default().
func NewJWalkService(store graph.Store, a *analyzer.Analyzer, cfg *config.ProjectConfig, logger *slog.Logger) *JWalkService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JWalkService{store: store, analyzer: a, cfg: cfg, logger: logger}
}

// AnalyzeFile builds one file and returns its flattened symbols, comments
// and inspect rows. The index is not touched.
func (s *JWalkService) AnalyzeFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeFileInput,
) (*mcp.CallToolResult, AnalyzeFileOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeFileOutput{}, fmt.Errorf("path is required")
	}

	res := s.analyzer.AnalyzeFile(ctx, input.Path)
	if res.Err != nil {
		return nil, AnalyzeFileOutput{}, fmt.Errorf("analyze %s: %w", input.Path, res.Err)
	}

	rec := graph.BuildRecords(res.File)
	return nil, AnalyzeFileOutput{
		Path:     rec.File.Path,
		Language: rec.File.Language,
		Cached:   res.Cached,
		Symbols:  orEmpty(rec.Symbols),
		Comments: orEmpty(rec.Comments),
		Inspect:  orEmpty(export.BuildInspectRows(res.File, export.InspectOptions{All: input.All})),
	}, nil
}

// IndexDirectory discovers source files under a path, analyzes them in
// parallel and writes the results to the symbol index.
func (s *JWalkService) IndexDirectory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexDirectoryInput,
) (*mcp.CallToolResult, IndexDirectoryOutput, error) {
	if input.Path == "" {
		return nil, IndexDirectoryOutput{}, fmt.Errorf("path is required")
	}

	cfg := *s.cfg
	if input.Exclude != nil {
		cfg.Exclude = input.Exclude
	}
	if len(input.Extensions) > 0 {
		cfg.Extensions = input.Extensions
	}

	paths, err := analyzer.Discover(input.Path, &cfg)
	if err != nil {
		return nil, IndexDirectoryOutput{}, err
	}
	results, err := s.analyzer.AnalyzeFiles(ctx, paths)
	if err != nil {
		return nil, IndexDirectoryOutput{}, fmt.Errorf("analyze: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum, err := analyzer.IndexResults(ctx, s.store, results)
	if err != nil {
		return nil, IndexDirectoryOutput{}, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, IndexDirectoryOutput{}, fmt.Errorf("stats: %w", err)
	}

	out := IndexDirectoryOutput{Indexed: sum.Files, Failed: []FileError{}, Stats: *stats}
	for _, r := range results {
		if r.Err != nil {
			out.Failed = append(out.Failed, FileError{Path: r.Path, Error: r.Err.Error()})
		}
	}
	s.logger.Info("indexed directory", "path", input.Path, "files", sum.Files, "failed", len(out.Failed))
	return nil, out, nil
}

// QuerySymbols searches the index by name, kind and file.
func (s *JWalkService) QuerySymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySymbolsInput,
) (*mcp.CallToolResult, QuerySymbolsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	symbols, err := s.store.QuerySymbols(ctx, graph.SymbolQuery{
		Name:     input.Query,
		Kind:     graph.Kind(strings.ToLower(input.Kind)),
		FilePath: input.FilePath,
		Limit:    limit,
	})
	if err != nil {
		return nil, QuerySymbolsOutput{}, fmt.Errorf("query symbols: %w", err)
	}

	return nil, QuerySymbolsOutput{
		Symbols: orEmpty(symbols),
		Total:   len(symbols),
	}, nil
}

// GetSymbol returns one symbol with its direct members.
func (s *JWalkService) GetSymbol(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetSymbolInput,
) (*mcp.CallToolResult, GetSymbolOutput, error) {
	if input.ID == "" {
		return nil, GetSymbolOutput{}, fmt.Errorf("id is required")
	}

	sym, err := s.store.GetSymbol(ctx, input.ID)
	if errors.Is(err, graph.ErrNotFound) {
		return nil, GetSymbolOutput{}, fmt.Errorf("symbol %q is not indexed", input.ID)
	}
	if err != nil {
		return nil, GetSymbolOutput{}, fmt.Errorf("get symbol: %w", err)
	}
	members, err := s.store.GetMembers(ctx, input.ID)
	if err != nil {
		return nil, GetSymbolOutput{}, fmt.Errorf("get members: %w", err)
	}

	return nil, GetSymbolOutput{Symbol: *sym, Members: orEmpty(members)}, nil
}

// ListImplicitGlobals returns every indexed implicit global.
func (s *JWalkService) ListImplicitGlobals(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListImplicitGlobalsInput,
) (*mcp.CallToolResult, ListImplicitGlobalsOutput, error) {
	symbols, err := s.store.ImplicitGlobals(ctx)
	if err != nil {
		return nil, ListImplicitGlobalsOutput{}, fmt.Errorf("implicit globals: %w", err)
	}
	return nil, ListImplicitGlobalsOutput{Symbols: orEmpty(symbols), Total: len(symbols)}, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
