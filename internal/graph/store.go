package graph

import (
	"context"
	"io"
)

// Store is the interface for the symbol index backend.
// Implementations: KuzuStore (production), MemStore (testing, no cgo).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddFile(ctx context.Context, file FileRecord) error
	AddSymbol(ctx context.Context, sym SymbolRecord) error
	AddComment(ctx context.Context, c CommentRecord) error
	AddEdge(ctx context.Context, edge Edge) error

	// RemoveFile drops a file with all its symbols, comments and edges.
	// Removing an unknown path is not an error.
	RemoveFile(ctx context.Context, path string) error

	// Read operations. Lookups that match nothing return ErrNotFound.
	GetFile(ctx context.Context, path string) (*FileRecord, error)
	GetSymbol(ctx context.Context, id string) (*SymbolRecord, error)
	QuerySymbols(ctx context.Context, q SymbolQuery) ([]SymbolRecord, error)

	// Graph traversal.
	GetMembers(ctx context.Context, symbolID string) ([]SymbolRecord, error)
	ImplicitGlobals(ctx context.Context) ([]SymbolRecord, error)

	// Stats.
	Stats(ctx context.Context) (*IndexStats, error)
}
