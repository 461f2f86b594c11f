package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jgillick/jwalk/internal/config"
)

// Discover lists the source files under root selected by cfg, sorted by
// path. A root that is a file is returned as-is.
func Discover(root string, cfg *config.ProjectConfig) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	m := newMatcher(cfg)
	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !cfg.IsRecursive() || m.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.wanted(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk: %w", walkErr)
	}
	slices.Sort(files)
	return files, nil
}

// matcher applies the extension and exclude settings of a config.
type matcher struct {
	exts    map[string]bool
	exclude map[string]bool
}

func newMatcher(cfg *config.ProjectConfig) *matcher {
	m := &matcher{
		exts:    make(map[string]bool, len(cfg.Extensions)),
		exclude: make(map[string]bool, len(cfg.Exclude)),
	}
	for _, e := range cfg.Extensions {
		m.exts[strings.ToLower(e)] = true
	}
	for _, d := range cfg.Exclude {
		m.exclude[d] = true
	}
	return m
}

func (m *matcher) excluded(dirName string) bool {
	return m.exclude[dirName]
}

func (m *matcher) wanted(path string) bool {
	return m.exts[strings.ToLower(filepath.Ext(path))]
}

// excludedPath reports whether any directory of path (relative to root) is
// excluded.
func (m *matcher) excludedPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, p := range parts[:len(parts)-1] {
		if m.exclude[p] {
			return true
		}
	}
	return false
}
