package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = time.Minute

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

func (e *memoryEntry) isExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryStore keeps cached queries in a sync.Map. A background goroutine
// drops expired entries until Close is called.
type MemoryStore struct {
	entries  sync.Map // map[string]*memoryEntry
	logger   *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	hits   atomic.Int64
	misses atomic.Int64
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

func WithMemoryLogger(logger *zap.Logger) MemoryOption {
	return func(s *MemoryStore) { s.logger = logger }
}

func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		logger:   zap.NewNop(),
		interval: defaultCleanupInterval,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	if value, ok := s.entries.Load(key); ok {
		e := value.(*memoryEntry)
		if !e.isExpired(time.Now()) {
			s.hits.Add(1)
			return e.entry, true, nil
		}
		s.entries.CompareAndDelete(key, value)
	}
	s.misses.Add(1)
	return Entry{}, false, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	s.entries.Store(key, &memoryEntry{entry: entry, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemoryStore) InvalidateGroups(ctx context.Context, groups ...Group) error {
	prefixes := make([]string, len(groups))
	for i, g := range groups {
		prefixes[i] = string(g) + ":"
	}

	removed := 0
	s.entries.Range(func(k, _ any) bool {
		key := k.(string)
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				s.entries.Delete(key)
				removed++
				break
			}
		}
		return true
	})

	s.logger.Debug("Invalidated query cache groups",
		zap.Any("groups", groups),
		zap.Int("removed", removed))
	return nil
}

// Stats returns lookup counters and the current size
func (s *MemoryStore) Stats() (hits, misses int64, size int) {
	s.entries.Range(func(_, _ any) bool {
		size++
		return true
	})
	return s.hits.Load(), s.misses.Load(), size
}

func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.entries.Range(func(k, v any) bool {
				if v.(*memoryEntry).isExpired(now) {
					s.entries.CompareAndDelete(k, v)
				}
				return true
			})
		}
	}
}

var _ Store = (*MemoryStore)(nil)
