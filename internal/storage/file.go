package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// FileStore keeps every key in a single JSON object on disk.
type FileStore struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// NewFileStore opens the store at path, loading existing data if present.
// If path is empty, defaults to ~/.spark/storage.json
//
// An undecodable file is copied to path+".corrupt" and the store starts
// empty. In that case both the store and an error wrapping ErrCorrupt are
// returned.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".spark", "storage.json")
	}

	s := &FileStore{path: path, data: make(map[string]string)}
	if err := s.load(); err != nil {
		if errors.Is(err, ErrCorrupt) {
			return s, err
		}
		return nil, err
	}
	return s, nil
}

// BackupPath is where an undecodable file is set aside.
func (s *FileStore) BackupPath() string {
	return s.path + ".corrupt"
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read storage file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}

	data := make(map[string]string)
	if err := json.Unmarshal(b, &data); err != nil {
		if berr := os.WriteFile(s.BackupPath(), b, 0o600); berr != nil {
			return fmt.Errorf("%w: %s: %v (backup failed: %v)", ErrCorrupt, s.path, err, berr)
		}
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	s.data = data
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.data[key]
	s.data[key] = value
	if err := s.flush(); err != nil {
		if existed {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.data[key]
	if !existed {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// flush writes the whole map atomically. Callers hold mu.
func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename storage file: %w", err)
	}
	return nil
}
