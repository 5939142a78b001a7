package offline

import (
	"context"
	"slices"
	"sync"
)

// Cache is one named set of request/response pairs.
type Cache interface {
	Match(ctx context.Context, key string) (*Response, bool, error)
	Put(ctx context.Context, key string, resp *Response) error
	Keys(ctx context.Context) ([]string, error)
}

// CacheStorage holds every named cache of the origin. Implementations must
// allow concurrent reads and idempotent concurrent writes of the same key.
type CacheStorage interface {
	// Open returns the named cache, creating it if needed.
	Open(ctx context.Context, name string) (Cache, error)
	// Keys lists cache names in creation order.
	Keys(ctx context.Context) ([]string, error)
	// Delete removes the named cache and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Match looks key up in every cache, oldest cache first.
	Match(ctx context.Context, key string) (*Response, bool, error)
}

// MemoryCacheStorage keeps caches in process memory.
type MemoryCacheStorage struct {
	mu     sync.RWMutex
	names  []string
	caches map[string]*memoryCache
}

func NewMemoryCacheStorage() *MemoryCacheStorage {
	return &MemoryCacheStorage{caches: make(map[string]*memoryCache)}
}

func (s *MemoryCacheStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.caches[name]; ok {
		return c, nil
	}
	c := &memoryCache{entries: make(map[string]*Response)}
	s.caches[name] = c
	s.names = append(s.names, name)
	return c, nil
}

func (s *MemoryCacheStorage) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.names), nil
}

func (s *MemoryCacheStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.caches[name]; !ok {
		return false, nil
	}
	delete(s.caches, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return true, nil
}

func (s *MemoryCacheStorage) Match(ctx context.Context, key string) (*Response, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range s.names {
		if resp, ok, _ := s.caches[name].Match(ctx, key); ok {
			return resp, true, nil
		}
	}
	return nil, false, nil
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Response
}

func (c *memoryCache) Match(_ context.Context, key string) (*Response, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resp, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return resp.Clone(), true, nil
}

func (c *memoryCache) Put(_ context.Context, key string, resp *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = resp.Clone()
	return nil
}

func (c *memoryCache) Keys(context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
