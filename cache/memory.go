package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/ZaguanLabs/wordcache"
)

// MemoryStore is a thread-safe in-process store. Entries live as long as the
// process; it backs tests and the "memory" driver.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[wordcache.Key]wordcache.CacheEntry
	opts    options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		entries: make(map[wordcache.Key]wordcache.CacheEntry),
		opts:    newOptions(opts),
	}
}

// EnsureSchema is a no-op; the map is created by NewMemoryStore.
func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

// Get returns the translation stored for key.
func (s *MemoryStore) Get(ctx context.Context, key wordcache.Key) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	return entry.TranslatedText, true, nil
}

// Put inserts or replaces the translation stored for key.
func (s *MemoryStore) Put(ctx context.Context, key wordcache.Key, translatedText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = wordcache.CacheEntry{
		Key:            key,
		TranslatedText: translatedText,
		CreatedAt:      s.opts.now(),
	}
	return nil
}

// Entry returns the full entry stored for key.
func (s *MemoryStore) Entry(ctx context.Context, key wordcache.Key) (wordcache.CacheEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok, nil
}

// Entries returns all entries ordered by language pair and source text.
func (s *MemoryStore) Entries(ctx context.Context) ([]wordcache.CacheEntry, error) {
	s.mu.RLock()
	result := make([]wordcache.CacheEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, entry)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return lessKey(result[i].Key, result[j].Key)
	})
	return result, nil
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func lessKey(a, b wordcache.Key) bool {
	if a.StudyLang != b.StudyLang {
		return a.StudyLang < b.StudyLang
	}
	if a.NativeLang != b.NativeLang {
		return a.NativeLang < b.NativeLang
	}
	return a.SourceText < b.SourceText
}

var (
	_ ClosableStore = (*MemoryStore)(nil)
	_ Lister        = (*MemoryStore)(nil)
)
