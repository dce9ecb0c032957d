package cache

import (
	"context"
	"time"
)

// Entry is a cached query result as JSON plus the time it was fetched
type Entry struct {
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Age reports how old the entry is at now
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Store is the storage driver behind the query cache
type Store interface {
	// Get returns the entry under key; found=false on a miss
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores entry until ttl elapses
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// InvalidateGroups drops every entry of the given groups
	InvalidateGroups(ctx context.Context, groups ...Group) error
	// Close stops background work
	Close() error
}
