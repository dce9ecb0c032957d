package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/autoparts/storefront/internal/domain/profile"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps profile documents in process memory. Entries expire
// after the configured TTL unless the profile is touched.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	profiles map[profile.ID]map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		profiles: make(map[profile.ID]map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id profile.ID, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.profiles[id][key]
	if !ok {
		return nil, false, nil
	}
	if s.expired(entry) {
		s.deleteLocked(id, key)
		return nil, false, nil
	}
	return slices.Clone(entry.value), true, nil
}

func (s *MemoryStore) Put(ctx context.Context, id profile.ID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.profiles[id]
	if !ok {
		docs = make(map[string]memoryEntry)
		s.profiles[id] = docs
	}
	docs[key] = memoryEntry{value: slices.Clone(value), expiresAt: s.deadline(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id profile.ID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id, key)
	return nil
}

func (s *MemoryStore) Touch(ctx context.Context, id profile.ID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := s.deadline(ttl)
	for key, entry := range s.profiles[id] {
		entry.expiresAt = deadline
		s.profiles[id][key] = entry
	}
	return nil
}

// Len reports how many profiles hold at least one document
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) deleteLocked(id profile.ID, key string) {
	docs, ok := s.profiles[id]
	if !ok {
		return
	}
	delete(docs, key)
	if len(docs) == 0 {
		delete(s.profiles, id)
	}
}

// zero expiresAt means no expiry
func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

var _ profile.Store = (*MemoryStore)(nil)
