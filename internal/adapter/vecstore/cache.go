package vecstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache loads index files lazily and keeps them for the process lifetime.
// Indexes are immutable, so entries are never invalidated. Concurrent
// first loads of the same path collapse to a single deserialization.
type Cache struct {
	logger *zap.Logger

	mu     sync.RWMutex
	byPath map[string]*Index
	byDir  map[string][]*Index

	loads singleflight.Group
}

// NewCache creates an empty index cache. Construct one per process and
// inject it; tests get isolation from a fresh cache.
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		logger: logger,
		byPath: make(map[string]*Index),
		byDir:  make(map[string][]*Index),
	}
}

// Load opens the index at path, caching per absolute path. The first call
// pays the deserialization cost; later calls return the cached instance.
func (c *Cache) Load(path string) (*Index, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve index path %s: %w", path, err)
	}

	c.mu.RLock()
	idx, ok := c.byPath[abs]
	c.mu.RUnlock()
	if ok {
		return idx, nil
	}

	v, err, _ := c.loads.Do("path:"+abs, func() (interface{}, error) {
		idx, err := Open(abs)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.byPath[abs] = idx
		c.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

// LoadGroup loads every index file in a directory, skipping and logging
// files that fail to load so one bad file does not disable the rest of the
// group. The surviving list is cached per directory. A missing directory
// yields an empty group, not an error.
func (c *Cache) LoadGroup(dir string) ([]*Index, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group dir %s: %w", dir, err)
	}

	c.mu.RLock()
	indexes, ok := c.byDir[abs]
	c.mu.RUnlock()
	if ok {
		return indexes, nil
	}

	v, err, _ := c.loads.Do("dir:"+abs, func() (interface{}, error) {
		paths, err := c.groupFiles(abs)
		if err != nil {
			return nil, err
		}

		indexes := make([]*Index, 0, len(paths))
		for _, path := range paths {
			idx, err := c.Load(path)
			if err != nil {
				c.logger.Warn("skipping unloadable vector index",
					zap.String("path", path),
					zap.Error(err))
				continue
			}
			indexes = append(indexes, idx)
		}

		c.mu.Lock()
		c.byDir[abs] = indexes
		c.mu.Unlock()
		return indexes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Index), nil
}

// groupFiles lists the index files in a directory, sorted for stable
// group ordering.
func (c *Cache) groupFiles(dir string) ([]string, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "*.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
