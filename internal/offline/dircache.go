package offline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// DirCacheStorage keeps each cache in its own directory under root, one
// JSON file per entry, so cached assets survive restarts.
type DirCacheStorage struct {
	root string
}

func NewDirCacheStorage(root string) (*DirCacheStorage, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("offline: init cache directory %s: %w", root, err)
	}
	return &DirCacheStorage{root: root}, nil
}

func (s *DirCacheStorage) dir(name string) string {
	return filepath.Join(s.root, url.PathEscape(name))
}

func (s *DirCacheStorage) Open(_ context.Context, name string) (Cache, error) {
	if name == "" {
		return nil, errors.New("offline: empty cache name")
	}
	dir := s.dir(name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("offline: open cache %s: %w", name, err)
	}
	return &dirCache{dir: dir}, nil
}

// Keys lists caches ordered by directory modification time.
func (s *DirCacheStorage) Keys(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("offline: list caches: %w", err)
	}

	type named struct {
		name string
		mod  int64
	}
	var found []named
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name, err := url.PathUnescape(e.Name())
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, named{name: name, mod: info.ModTime().UnixNano()})
	}
	slices.SortStableFunc(found, func(a, b named) int {
		switch {
		case a.mod < b.mod:
			return -1
		case a.mod > b.mod:
			return 1
		}
		return strings.Compare(a.name, b.name)
	})

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names, nil
}

func (s *DirCacheStorage) Delete(_ context.Context, name string) (bool, error) {
	dir := s.dir(name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("offline: delete cache %s: %w", name, err)
	}
	return true, nil
}

func (s *DirCacheStorage) Match(ctx context.Context, key string) (*Response, bool, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, name := range names {
		resp, ok, err := (&dirCache{dir: s.dir(name)}).Match(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return resp, true, nil
		}
	}
	return nil, false, nil
}

type dirEntry struct {
	Key      string    `json:"key"`
	Response *Response `json:"response"`
}

type dirCache struct {
	dir string
}

func (c *dirCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *dirCache) Match(_ context.Context, key string) (*Response, bool, error) {
	b, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("offline: read cache entry: %w", err)
	}

	var e dirEntry
	if err := json.Unmarshal(b, &e); err != nil || e.Key != key || e.Response == nil {
		// unreadable entries count as misses and get replaced on the next put
		return nil, false, nil
	}
	return e.Response, true, nil
}

// Put writes atomically, so concurrent puts of one key leave one whole entry.
func (c *dirCache) Put(_ context.Context, key string, resp *Response) error {
	b, err := json.Marshal(dirEntry{Key: key, Response: resp})
	if err != nil {
		return fmt.Errorf("offline: encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("offline: write cache entry: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("offline: write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("offline: write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("offline: commit cache entry: %w", err)
	}
	return nil
}

func (c *dirCache) Keys(context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("offline: list cache entries: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry dirEntry
		if err := json.Unmarshal(b, &entry); err != nil {
			continue
		}
		keys = append(keys, entry.Key)
	}
	slices.Sort(keys)
	return keys, nil
}
