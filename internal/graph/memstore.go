package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	files    map[string]FileRecord
	symbols  map[string]SymbolRecord
	comments map[string]CommentRecord
	edges    []Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		files:    make(map[string]FileRecord),
		symbols:  make(map[string]SymbolRecord),
		comments: make(map[string]CommentRecord),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddFile stores a file record keyed by its path.
func (m *MemStore) AddFile(_ context.Context, file FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[file.Path] = file
	return nil
}

// AddSymbol stores a symbol record keyed by its ID.
func (m *MemStore) AddSymbol(_ context.Context, sym SymbolRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[sym.ID] = sym
	return nil
}

// AddComment stores a comment record keyed by its ID.
func (m *MemStore) AddComment(_ context.Context, c CommentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = c
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// RemoveFile deletes every record belonging to path.
func (m *MemStore) RemoveFile(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	gone := map[string]bool{path: true}
	delete(m.files, path)
	for id, sym := range m.symbols {
		if sym.FilePath == path {
			gone[id] = true
			delete(m.symbols, id)
		}
	}
	for id, c := range m.comments {
		if c.FilePath == path {
			gone[id] = true
			delete(m.comments, id)
		}
	}

	kept := m.edges[:0]
	for _, e := range m.edges {
		if !gone[e.SourceID] && !gone[e.TargetID] {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	return nil
}

// GetFile returns the file record for the given path.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// GetSymbol returns the symbol record with the given ID.
func (m *MemStore) GetSymbol(_ context.Context, id string) (*SymbolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.symbols[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// QuerySymbols returns symbols whose name or qualified name contains q.Name
// (case-insensitive), filtered by kind and file, ordered by file and offset.
func (m *MemStore) QuerySymbols(_ context.Context, q SymbolQuery) ([]SymbolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lowerQuery := strings.ToLower(q.Name)
	var results []SymbolRecord
	for _, sym := range m.symbols {
		if q.Kind != "" && sym.Kind != q.Kind {
			continue
		}
		if q.FilePath != "" && sym.FilePath != q.FilePath {
			continue
		}
		if strings.Contains(strings.ToLower(sym.Name), lowerQuery) ||
			strings.Contains(strings.ToLower(sym.QualifiedName), lowerQuery) {
			results = append(results, sym)
		}
	}
	sortSymbols(results)
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// GetMembers follows CONTAINS edges one hop from symbolID.
func (m *MemStore) GetMembers(_ context.Context, symbolID string) ([]SymbolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.symbols[symbolID]; !ok {
		return nil, ErrNotFound
	}
	var out []SymbolRecord
	for _, e := range m.edges {
		if e.Kind != EdgeKindContains || e.SourceID != symbolID {
			continue
		}
		if sym, ok := m.symbols[e.TargetID]; ok {
			out = append(out, sym)
		}
	}
	sortSymbols(out)
	return out, nil
}

// ImplicitGlobals returns every symbol that leaked to the global scope.
func (m *MemStore) ImplicitGlobals(_ context.Context) ([]SymbolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []SymbolRecord
	for _, sym := range m.symbols {
		if sym.ImplicitGlobal {
			out = append(out, sym)
		}
	}
	sortSymbols(out)
	return out, nil
}

// Stats returns counts of all record types in the index.
func (m *MemStore) Stats(_ context.Context) (*IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &IndexStats{
		FileCount:    len(m.files),
		SymbolCount:  len(m.symbols),
		CommentCount: len(m.comments),
		EdgeCount:    len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// sortSymbols orders records by file path, then offset, then ID.
func sortSymbols(syms []SymbolRecord) {
	sort.Slice(syms, func(i, j int) bool {
		a, b := syms[i], syms[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return a.ID < b.ID
	})
}
