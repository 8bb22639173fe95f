// Package store maps opaque dataset ids to file paths. Only paths are
// stored, never open dataset handles: the raster library's handles are not
// safe to share between concurrent requests, so every operation reopens
// its dataset from the path it looks up here.
package store

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the number of registered datasets; the least
// recently used entry is evicted beyond it.
const DefaultCapacity = 10

// ErrNotFound reports an id with no registered path, either never added
// or already evicted.
var ErrNotFound = errors.New("dataset not found")

// PathCache is the only shared mutable state between requests. It is safe
// for concurrent use.
type PathCache struct {
	paths *lru.Cache[string, string]
}

// NewPathCache builds a cache holding up to capacity entries;
// non-positive capacities fall back to DefaultCapacity.
func NewPathCache(capacity int) (*PathCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	paths, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &PathCache{paths: paths}, nil
}

// Get returns the path registered under id, marking it recently used.
func (c *PathCache) Get(id string) (string, error) {
	path, ok := c.paths.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	return path, nil
}

// Put registers a path under id, evicting the least recently used entry
// when the cache is full.
func (c *PathCache) Put(id, path string) {
	c.paths.Add(id, path)
}

// Remove drops the entry for id, if present.
func (c *PathCache) Remove(id string) {
	c.paths.Remove(id)
}

// Len reports the number of registered datasets.
func (c *PathCache) Len() int {
	return c.paths.Len()
}
