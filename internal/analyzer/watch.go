package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jgillick/jwalk/internal/config"
)

// DefaultDebounce is how long the watcher waits for more events before it
// rebuilds the changed files.
const DefaultDebounce = 150 * time.Millisecond

// ChangeSet is one debounced batch of file changes.
type ChangeSet struct {
	// Results holds a fresh build for every created or modified file.
	Results []Result
	// Removed lists files that no longer exist.
	Removed []string
}

// ChangeHandler receives each batch. It is called from a single goroutine.
type ChangeHandler func(ctx context.Context, cs ChangeSet)

// Watcher rebuilds source files as they change on disk.
type Watcher struct {
	root     string
	cfg      *config.ProjectConfig
	match    *matcher
	analyzer *Analyzer
	handler  ChangeHandler
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher watches the directory root, selecting files with cfg and
// rebuilding them with a.
func NewWatcher(root string, cfg *config.ProjectConfig, a *Analyzer, handler ChangeHandler, opts ...WatchOption) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", root)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		cfg:      cfg,
		match:    newMatcher(cfg),
		analyzer: a,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is done. Pending changes are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.logger.Info("watching", "root", w.root, "debounce", w.debounce)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.track(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timerC:
			timer, timerC = nil, nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			if err := w.flush(ctx, paths); err != nil {
				return nil
			}
		}
	}
}

// track reports whether ev concerns a source file. New directories are
// added to the watch list as a side effect.
func (w *Watcher) track(ev fsnotify.Event) bool {
	if w.match.excludedPath(w.root, ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.cfg.IsRecursive() && !w.match.excluded(info.Name()) {
				if err := w.addRecursive(ev.Name); err != nil {
					w.logger.Warn("watch directory", "path", ev.Name, "error", err)
				}
			}
			return false
		}
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return w.match.wanted(ev.Name)
}

func (w *Watcher) flush(ctx context.Context, paths []string) error {
	var cs ChangeSet
	var changed []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			cs.Removed = append(cs.Removed, p)
			continue
		}
		changed = append(changed, p)
	}

	results, err := w.analyzer.AnalyzeFiles(ctx, changed)
	if err != nil {
		return err
	}
	cs.Results = results
	w.logger.Debug("changes", "changed", len(cs.Results), "removed", len(cs.Removed))
	if w.handler != nil && (len(cs.Results) > 0 || len(cs.Removed) > 0) {
		w.handler(ctx, cs)
	}
	return nil
}

// addRecursive adds dir and, when recursion is enabled, every
// non-excluded subdirectory to the watch list.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && (!w.cfg.IsRecursive() || w.match.excluded(d.Name())) {
			return filepath.SkipDir
		}
		if path == dir && dir != w.root && w.match.excluded(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
