// Package cache persists built ScriptFiles in BadgerDB, keyed by a hash of
// the source so unchanged files are never rebuilt.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/jgillick/jwalk/internal/graph"
)

// SchemaVersion is mixed into every key. Bump it whenever the builder or
// the ScriptFile encoding changes so stale entries are never served.
const SchemaVersion = "jwalk-graph-1"

const keyPrefix = "sf/"

// Config controls where the cache lives.
type Config struct {
	// Dir is the on-disk location. Required unless InMemory is set.
	Dir string

	InMemory bool

	// Logger receives BadgerDB's internal logs. Nil silences them.
	Logger *slog.Logger
}

// BadgerCache is a content-addressed ScriptFile cache. It is safe for
// concurrent use.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens (creating if needed) the cache described by cfg.
func Open(cfg Config) (*BadgerCache, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("cache: dir is required for a persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("cache: create directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger: %w", err)
	}
	return &BadgerCache{db: db, logger: logger}, nil
}

// Key derives the cache key of a source in a language.
func Key(lang graph.Language, source []byte) string {
	h := sha256.New()
	h.Write([]byte(SchemaVersion))
	h.Write([]byte{0})
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the ScriptFile stored under key. ok is false on a miss. The
// returned file has no Source; callers attach the bytes they hashed.
func (c *BadgerCache) Get(key string) (sf *graph.ScriptFile, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sf = &graph.ScriptFile{}
			return json.Unmarshal(val, sf)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return sf, true, nil
}

// Put stores sf under key, replacing any previous entry.
func (c *BadgerCache) Put(key string, sf *graph.ScriptFile) error {
	data, err := json.Marshal(sf)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", sf.Path, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", key, err)
	}
	c.logger.Debug("cache stored", slog.String("path", sf.Path), slog.Int("bytes", len(data)))
	return nil
}

// Len counts the stored entries.
func (c *BadgerCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close flushes and closes the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
