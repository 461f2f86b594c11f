package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/jgillick/jwalk/internal/analyzer"
	"github.com/jgillick/jwalk/internal/cache"
	"github.com/jgillick/jwalk/internal/config"
	"github.com/jgillick/jwalk/internal/graph"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// options holds the global flags and the resolved configuration shared by
// every command.
type options struct {
	configDir  string
	logLevel   string
	logFormat  string
	workers    int
	exclude    []string
	noRecurse  bool
	noComments bool
	cacheDir   string
	noCache    bool
	progress   bool

	cfg    *config.ProjectConfig
	logger *slog.Logger
}

// storeCommands are registered by files that need the kuzu index.
var storeCommands []func(*options) *cobra.Command

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "jwalk",
		Short: "Walk JavaScript scope trees",
		Long: `jwalk parses JavaScript and TypeScript files into scope trees of functions,
objects, variables, properties and methods, infers literal types, flags
implicit globals and associates comments with the symbols around them.

Settings are read from jwalk.yml in --config (default: current directory);
flags override the file.

In the inspect report:
  "cloaked"         describes an inner function that is not reachable from the
                    global scope.
  "implicit global" is a variable assigned without a declaration, which makes
                    it a property of the global scope.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configDir, "config", ".", "directory containing jwalk.yml")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: text, json")
	pf.IntVar(&opts.workers, "workers", 0, "files analyzed in parallel")
	pf.StringSliceVarP(&opts.exclude, "exclude", "e", nil, "directory names to skip (replaces the configured list)")
	pf.BoolVar(&opts.noRecurse, "no-recursive", false, "do not descend into subdirectories")
	pf.BoolVar(&opts.noComments, "no-comments", false, "skip comment association")
	pf.StringVar(&opts.cacheDir, "cache-dir", "", "directory of the build cache")
	pf.BoolVar(&opts.noCache, "no-cache", false, "disable the build cache")
	pf.BoolVar(&opts.progress, "progress", false, "print per-file progress to stderr")

	root.AddCommand(
		newInspectCmd(opts),
		newTreeCmd(opts),
		newCommentsCmd(opts),
		newExportCmd(opts),
		newDiagramCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	for _, fn := range storeCommands {
		root.AddCommand(fn(opts))
	}
	return root
}

// resolve loads the project config, applies flag overrides, validates the
// result and builds the logger.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("exclude") {
		cfg.Exclude = o.exclude
	}
	if o.noRecurse {
		recursive := false
		cfg.Recursive = &recursive
	}
	if o.noComments {
		comments := false
		cfg.Comments = &comments
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = o.cacheDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// newAnalyzer builds an Analyzer from the resolved config. The returned
// func releases the cache, if one was opened.
func (o *options) newAnalyzer(cmd *cobra.Command) (*analyzer.Analyzer, func(), error) {
	parser := graph.NewTreeSitterParser(
		graph.WithMaxFileSize(o.cfg.MaxFileSize),
		graph.WithComments(o.cfg.BindComments()),
	)
	aopts := []analyzer.Option{
		analyzer.WithLogger(o.logger),
		analyzer.WithWorkers(o.cfg.Workers),
	}

	closeFn := func() {}
	// Cached files always carry their comments, so the cache is bypassed
	// when comment association is off.
	if o.cfg.CacheDir != "" && !o.noCache && o.cfg.BindComments() {
		c, err := cache.Open(cache.Config{Dir: o.cfg.CacheDir, Logger: o.logger})
		if err != nil {
			return nil, nil, err
		}
		aopts = append(aopts, analyzer.WithCache(c))
		closeFn = func() {
			if err := c.Close(); err != nil {
				o.logger.Warn("close cache", "error", err)
			}
		}
	}

	if o.progress {
		pr := analyzer.NewProgressReporter()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range pr.Subscribe() {
				if ev.Status != analyzer.ProgressPending {
					fmt.Fprintln(cmd.ErrOrStderr(), analyzer.FormatProgress(ev))
				}
			}
		}()
		aopts = append(aopts, analyzer.WithProgress(pr.Emit))
		prev := closeFn
		closeFn = func() {
			pr.Close()
			wg.Wait()
			prev()
		}
	}

	return analyzer.New(parser, aopts...), closeFn, nil
}

// discover expands every argument into source files, keeping the first
// occurrence of each.
func (o *options) discover(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, arg := range args {
		found, err := analyzer.Discover(arg, o.cfg)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no source files found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

// analyze discovers and builds the files named by args. Files that fail
// are logged and left out; the error is non-nil only when nothing could be
// analyzed or the run was cancelled.
func (o *options) analyze(cmd *cobra.Command, args []string) ([]*graph.ScriptFile, error) {
	paths, err := o.discover(args)
	if err != nil {
		return nil, err
	}
	a, closeFn, err := o.newAnalyzer(cmd)
	if err != nil {
		return nil, err
	}
	results, err := a.AnalyzeFiles(cmd.Context(), paths)
	closeFn()
	if err != nil {
		return nil, err
	}
	return o.collect(results)
}

func (o *options) collect(results []analyzer.Result) ([]*graph.ScriptFile, error) {
	var files []*graph.ScriptFile
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			o.logger.Warn("skipping file", "path", r.Path, "error", r.Err)
			failed = append(failed, r.Path)
			continue
		}
		files = append(files, r.File)
	}
	if len(files) == 0 && len(failed) > 0 {
		return nil, fmt.Errorf("could not analyze %s", strings.Join(failed, ", "))
	}
	return files, nil
}

// isTerminal reports whether w is a terminal, for colored output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jwalk version",
		Args:  cobra.NoArgs,
		// The version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
