package mcptools

import (
	"github.com/jgillick/jwalk/internal/export"
	"github.com/jgillick/jwalk/internal/graph"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// AnalyzeFileInput is the input for the analyze_file MCP tool.
type AnalyzeFileInput struct {
	Path string `json:"path" jsonschema:"path of the JavaScript or TypeScript file to analyze"`
	All  bool   `json:"all,omitempty" jsonschema:"include cloaked (not globally reachable) functions and objects in the inspect rows"`
}

// AnalyzeFileOutput is the result of the analyze_file MCP tool.
type AnalyzeFileOutput struct {
	Path     string                `json:"path"`
	Language graph.Language        `json:"language"`
	Cached   bool                  `json:"cached"`
	Symbols  []graph.SymbolRecord  `json:"symbols"`
	Comments []graph.CommentRecord `json:"comments"`
	Inspect  []export.InspectRow   `json:"inspect"`
}

// IndexDirectoryInput is the input for the index_directory MCP tool.
type IndexDirectoryInput struct {
	Path       string   `json:"path" jsonschema:"directory (or single file) to analyze and add to the symbol index"`
	Exclude    []string `json:"exclude,omitempty" jsonschema:"directory names to skip (default: node_modules, .git, dist, build, coverage, vendor)"`
	Extensions []string `json:"extensions,omitempty" jsonschema:"file extensions to analyze, e.g. .js (default: all JavaScript and TypeScript extensions)"`
}

// FileError describes a file that could not be analyzed.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// IndexDirectoryOutput is the result of the index_directory MCP tool.
type IndexDirectoryOutput struct {
	Indexed int              `json:"indexed"`
	Failed  []FileError      `json:"failed"`
	Stats   graph.IndexStats `json:"stats"`
}

// QuerySymbolsInput is the input for the query_symbols MCP tool.
type QuerySymbolsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"case-insensitive substring of the symbol name or qualified name (e.g. App.render)"`
	Kind     string `json:"kind,omitempty" jsonschema:"filter by symbol kind: function, variable, object, property, method"`
	FilePath string `json:"filePath,omitempty" jsonschema:"only symbols defined in this file"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QuerySymbolsOutput is the result of the query_symbols MCP tool.
type QuerySymbolsOutput struct {
	Symbols []graph.SymbolRecord `json:"symbols"`
	Total   int                  `json:"total"`
}

// GetSymbolInput is the input for the get_symbol MCP tool.
type GetSymbolInput struct {
	ID string `json:"id" jsonschema:"symbol ID as returned by query_symbols, e.g. app.js#App.render@120"`
}

// GetSymbolOutput is the result of the get_symbol MCP tool.
type GetSymbolOutput struct {
	Symbol  graph.SymbolRecord   `json:"symbol"`
	Members []graph.SymbolRecord `json:"members"`
}

// ListImplicitGlobalsInput is the input for the list_implicit_globals MCP tool.
type ListImplicitGlobalsInput struct{}

// ListImplicitGlobalsOutput is the result of the list_implicit_globals MCP tool.
type ListImplicitGlobalsOutput struct {
	Symbols []graph.SymbolRecord `json:"symbols"`
	Total   int                  `json:"total"`
}
