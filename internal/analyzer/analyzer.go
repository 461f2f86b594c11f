// Package analyzer runs the symbol-graph builder over many files: it
// discovers sources, fans work out to a bounded worker pool, consults the
// content cache and feeds results to the symbol index.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jgillick/jwalk/internal/cache"
	"github.com/jgillick/jwalk/internal/graph"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 8

// Cache stores built ScriptFiles by content key. *cache.BadgerCache
// implements it.
type Cache interface {
	Get(key string) (*graph.ScriptFile, bool, error)
	Put(key string, sf *graph.ScriptFile) error
}

// Result is the outcome of analyzing one file.
type Result struct {
	Path     string
	File     *graph.ScriptFile
	Err      error
	Cached   bool
	Duration time.Duration
}

// Analyzer builds ScriptFiles for batches of files.
type Analyzer struct {
	parser     graph.Parser
	logger     *slog.Logger
	workers    int
	cache      Cache
	onProgress func(ProgressEvent)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWorkers bounds the number of files analyzed at once.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithCache enables the content cache.
func WithCache(c Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithProgress registers a progress callback. It is called from worker
// goroutines and must be safe for concurrent use.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates an Analyzer that builds files with p.
func New(p graph.Parser, opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:  p,
		logger:  slog.New(slog.DiscardHandler),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeFile reads and builds a single file, going through the cache when
// one is configured. Cache failures are logged and otherwise ignored.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}
	res.File, res.Cached, res.Err = a.analyze(ctx, path)
	res.Duration = time.Since(start)

	switch {
	case res.Err != nil:
		filesAnalyzed.WithLabelValues("error").Inc()
	case res.Cached:
		filesAnalyzed.WithLabelValues("cached").Inc()
	default:
		filesAnalyzed.WithLabelValues("ok").Inc()
		analyzeDuration.Observe(res.Duration.Seconds())
		sum := Summarize(res.File)
		symbolsBuilt.Add(float64(sum.Symbols))
		commentsBound.Add(float64(sum.Comments))
	}
	return res
}

func (a *Analyzer) analyze(ctx context.Context, path string) (*graph.ScriptFile, bool, error) {
	lang, ok := graph.LanguageForPath(path)
	if !ok {
		return nil, false, &graph.ParseError{Path: path, Err: graph.ErrUnsupportedLanguage}
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read source: %w", err)
	}

	var key string
	if a.cache != nil {
		key = cache.Key(lang, source)
		sf, hit, err := a.cache.Get(key)
		if err != nil {
			a.logger.Warn("cache lookup failed", "path", path, "error", err)
		} else if hit {
			sf.Path = path
			sf.Source = source
			return sf, true, nil
		}
	}

	sf, err := a.parser.Parse(ctx, path, source, lang)
	if err != nil {
		return nil, false, err
	}
	if a.cache != nil {
		if err := a.cache.Put(key, sf); err != nil {
			a.logger.Warn("cache store failed", "path", path, "error", err)
		}
	}
	return sf, false, nil
}

// AnalyzeFiles builds every path using up to the configured number of
// workers. Results are returned in input order. A file that fails is
// recorded in its Result and does not stop the batch; the returned error
// is non-nil only when ctx is cancelled.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, path := range paths {
		a.emit(ProgressEvent{Path: path, Status: ProgressPending})
	}

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			a.emit(ProgressEvent{Path: path, Status: ProgressWorking})

			res := a.AnalyzeFile(gctx, path)
			results[i] = res
			if res.Err != nil {
				if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
					return res.Err
				}
				a.logger.Warn("analyze failed", "path", path, "error", res.Err)
				a.emit(ProgressEvent{Path: path, Status: ProgressFailed, Message: res.Err.Error()})
				return nil
			}
			a.logger.Debug("analyzed", "path", path,
				"nodes", len(res.File.Graph.Nodes),
				"comments", len(res.File.Comments),
				"cached", res.Cached,
				"duration", res.Duration)
			a.emit(ProgressEvent{Path: path, Status: ProgressComplete, Cached: res.Cached})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// emit sends a progress event if a callback is registered.
func (a *Analyzer) emit(ev ProgressEvent) {
	if a.onProgress != nil {
		a.onProgress(ev)
	}
}
