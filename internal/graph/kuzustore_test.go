//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx), "InitSchema should not fail")
	return s
}

func TestKuzuStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return newTestStore(t)
	})
}

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_UnsupportedEdgeKind(t *testing.T) {
	s := newTestStore(t)
	err := s.AddEdge(context.Background(), Edge{SourceID: "a", TargetID: "b", Kind: "CALLS"})
	assert.Error(t, err)
}

func TestKuzuStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "index", "jwalk.kuzu")

	s, err := NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddFile(ctx, FileRecord{Path: "a.js", Language: LangJavaScript, LOC: 3}))
	require.NoError(t, s.Close())

	s, err = NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(ctx))

	got, err := s.GetFile(ctx, "a.js")
	require.NoError(t, err)
	assert.Equal(t, 3, got.LOC)
}
