package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Cache memoizes parsed tables keyed by file path, modification time and
// size. Entries are invalidated when the file changes on disk, either
// observed via stat on lookup or pushed by the filesystem watcher. Stale
// entries must never be served; a cache miss only costs a re-parse.
type Cache struct {
	parser *Parser
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry

	watcher *fsnotify.Watcher
	done    chan struct{}
}

type cacheEntry struct {
	table   *RawTable
	modTime time.Time
	size    int64
}

// NewCache constructs a Cache watching bound files for content changes.
// The watcher is best-effort: if it cannot be created the cache still works
// correctly off stat comparisons alone.
func NewCache(parser *Parser, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		parser:  parser,
		logger:  logger,
		entries: make(map[string]cacheEntry),
		done:    make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("file watcher unavailable, relying on stat checks", zap.Error(err))
		return c
	}
	c.watcher = watcher
	go c.watch()
	return c
}

// Get returns the parsed table for path, re-parsing when the cached entry no
// longer matches the file's modification time and size.
func (c *Cache) Get(path string) (*RawTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	c.mu.Lock()
	entry, ok := c.entries[path]
	c.mu.Unlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.table, nil
	}

	table, err := c.parser.Parse(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{table: table, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	if c.watcher != nil {
		if err := c.watcher.Add(path); err != nil {
			c.logger.Debug("cannot watch file", zap.String("path", path), zap.Error(err))
		}
	}
	return table, nil
}

// Invalidate drops the cached entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()

	if c.watcher != nil {
		_ = c.watcher.Remove(path)
	}
}

// Close stops the watcher.
func (c *Cache) Close() error {
	close(c.done)
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *Cache) watch() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) != 0 {
				c.logger.Debug("bound file changed, invalidating cache", zap.String("path", event.Name))
				c.Invalidate(event.Name)
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
