package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jgillick/jwalk/internal/config"
	"github.com/jgillick/jwalk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitChange returns the first change set matching ok. Editors and the
// kernel may split one write into several batches.
func waitChange(t *testing.T, ch <-chan ChangeSet, ok func(ChangeSet) bool) ChangeSet {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cs := <-ch:
			if ok(cs) {
				return cs
			}
		case <-deadline:
			t.Fatal("timed out waiting for a change set")
			return ChangeSet{}
		}
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))

	ch := make(chan ChangeSet, 8)
	w, err := NewWatcher(dir, config.Default(), New(graph.NewTreeSitterParser()),
		func(_ context.Context, cs ChangeSet) { ch <- cs },
		WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give Run a moment to register the directories.
	time.Sleep(100 * time.Millisecond)

	// Ignored: excluded directory and non-source file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "x.js"), []byte("var x;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	path := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("function hello(name) {}\n"), 0o644))

	cs := waitChange(t, ch, func(cs ChangeSet) bool { return len(cs.Results) > 0 })
	require.Len(t, cs.Results, 1)
	assert.Empty(t, cs.Removed)
	res := cs.Results[0]
	assert.Equal(t, path, res.Path)
	require.NoError(t, res.Err)
	hello := res.File.Graph.Lookup(graph.RootID, "hello")
	require.NotEqual(t, graph.NoNode, hello)
	assert.Equal(t, graph.KindFunction, res.File.Graph.Node(hello).Kind)

	require.NoError(t, os.Remove(path))
	cs = waitChange(t, ch, func(cs ChangeSet) bool { return len(cs.Removed) > 0 })
	assert.Empty(t, cs.Results)
	assert.Equal(t, []string{path}, cs.Removed)
}

func TestNewWatcher_RequiresDirectory(t *testing.T) {
	a := New(graph.NewTreeSitterParser())
	_, err := NewWatcher(fixture("app.js"), config.Default(), a, nil)
	assert.Error(t, err)

	_, err = NewWatcher(fixture("nope"), config.Default(), a, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
