package memos

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/easycodehow/spark/internal/storage"
)

// corruptKey holds the raw blob of a snapshot that failed to load, so the
// next Persist does not destroy it.
const corruptKey = storage.KeyMemos + ".corrupt"

// Store is the ordered memo collection, newest first. Every mutation rewrites
// the whole snapshot under storage.KeyMemos before returning.
type Store struct {
	kv         storage.Storage
	now        func() time.Time
	dateLayout string

	mu     sync.RWMutex
	memos  []Memo
	lastID int64
}

type Option func(*Store)

// WithClock replaces time.Now for id and date assignment.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDateLayout sets the time layout used for the display date.
func WithDateLayout(layout string) Option {
	return func(s *Store) {
		if layout != "" {
			s.dateLayout = layout
		}
	}
}

func NewStore(kv storage.Storage, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		now:        time.Now,
		dateLayout: DefaultDateLayout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll replaces the in-memory collection with the persisted snapshot.
// A missing snapshot leaves the collection empty. A corrupt one also leaves
// it empty, backs the raw data up and returns an error wrapping
// ErrCorruptSnapshot.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memos = nil
	s.lastID = 0

	raw, ok, err := s.kv.Get(ctx, storage.KeyMemos)
	if err != nil {
		return fmt.Errorf("load memos: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}

	list, err := ParseSnapshot([]byte(raw))
	if err != nil {
		if berr := s.kv.Set(ctx, corruptKey, raw); berr != nil {
			return fmt.Errorf("%w: %v (backup failed: %v)", ErrCorruptSnapshot, err, berr)
		}
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	s.memos = list
	for _, m := range list {
		s.lastID = max(s.lastID, m.ID)
	}
	return nil
}

// Persist overwrites the durable snapshot with the current collection.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	list := s.memos
	if list == nil {
		list = []Memo{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode memos: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyMemos, string(b)); err != nil {
		return fmt.Errorf("persist memos: %w", err)
	}
	return nil
}

// commitLocked persists and, on failure, restores prev so memory never runs
// ahead of storage.
func (s *Store) commitLocked(ctx context.Context, prev []Memo, prevID int64) error {
	if err := s.persistLocked(ctx); err != nil {
		s.memos = prev
		s.lastID = prevID
		return err
	}
	return nil
}

func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Create prepends a new memo with trimmed content.
func (s *Store) Create(ctx context.Context, content string, important bool) (*Memo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, prevID := s.memos, s.lastID
	now := s.now()
	m := Memo{
		ID:          s.nextID(now),
		Content:     content,
		IsImportant: important,
		Date:        now.Format(s.dateLayout),
	}

	next := make([]Memo, 0, len(s.memos)+1)
	next = append(next, m)
	s.memos = append(next, s.memos...)

	if err := s.commitLocked(ctx, prev, prevID); err != nil {
		return nil, err
	}
	return &m, nil
}

// Update changes content and importance of the memo with id. It returns
// (nil, nil) when no such memo exists.
func (s *Store) Update(ctx context.Context, id int64, content string, important bool) (*Memo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, nil
	}

	prev := slices.Clone(s.memos)
	s.memos[i].Content = content
	s.memos[i].IsImportant = important

	if err := s.commitLocked(ctx, prev, s.lastID); err != nil {
		return nil, err
	}
	m := s.memos[i]
	return &m, nil
}

// Delete removes the memo with id and reports whether one was removed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}

	prev := s.memos
	s.memos = slices.Delete(slices.Clone(s.memos), i, i+1)

	if err := s.commitLocked(ctx, prev, s.lastID); err != nil {
		return false, err
	}
	return true, nil
}

// ImportMerge appends every candidate whose id is not yet present and
// returns how many were appended. Within candidates the first occurrence of
// an id wins. Candidates without a positive id get a fresh one, issued above
// every incoming id, and the current date if they carry none.
func (s *Store) ImportMerge(ctx context.Context, candidates []Memo) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, prevID := s.memos, s.lastID

	seen := make(map[int64]struct{}, len(s.memos)+len(candidates))
	for _, m := range s.memos {
		seen[m.ID] = struct{}{}
	}
	for _, c := range candidates {
		s.lastID = max(s.lastID, c.ID)
	}

	now := s.now()
	added := make([]Memo, 0, len(candidates))
	for _, c := range candidates {
		if c.ID <= 0 {
			c.ID = s.nextID(now)
			if c.Date == "" {
				c.Date = now.Format(s.dateLayout)
			}
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		added = append(added, c)
	}
	if len(added) == 0 {
		s.lastID = prevID
		return 0, nil
	}

	s.memos = append(slices.Clone(s.memos), added...)

	if err := s.commitLocked(ctx, prev, prevID); err != nil {
		return 0, err
	}
	return len(added), nil
}

// Get returns a copy of the memo with id.
func (s *Store) Get(id int64) (*Memo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	m := s.memos[i]
	return &m, true
}

// All returns a copy of the collection in display order.
func (s *Store) All() []Memo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Memo, len(s.memos))
	copy(out, s.memos)
	return out
}

// Len returns the number of memos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memos)
}

// Search returns memos whose content contains keyword, ignoring case.
func (s *Store) Search(keyword string) []Memo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SearchIn(s.memos, keyword)
}

// FilterImportant returns the starred memos.
func (s *Store) FilterImportant() []Memo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ImportantOf(s.memos)
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.memos, func(m Memo) bool { return m.ID == id })
}
