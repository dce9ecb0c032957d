// Package cache implements the storefront query cache: results of backend
// reads keyed by (resource group, parameters), served fresh for staleTime,
// served stale with a background refresh until gcTime, and dropped by
// group after mutations.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Defaults for freshness windows
const (
	DefaultStaleTime      = 10 * time.Minute
	DefaultGCTime         = 15 * time.Minute
	defaultRefreshTimeout = 10 * time.Second
)

// QueryCache coordinates a Store, request collapsing and invalidation
type QueryCache struct {
	store       Store
	invalidator Invalidator
	metrics     *telemetry.Metrics
	logger      *zap.Logger
	staleTime   time.Duration
	gcTime      time.Duration
	now         func() time.Time

	flights     singleflight.Group
	generations sync.Map // map[Group]*atomic.Uint64
	refreshes   sync.WaitGroup
	closed      atomic.Bool
}

// Option configures a QueryCache
type Option func(*QueryCache)

func WithFreshness(staleTime, gcTime time.Duration) Option {
	return func(c *QueryCache) {
		if staleTime > 0 {
			c.staleTime = staleTime
		}
		if gcTime >= c.staleTime {
			c.gcTime = gcTime
		}
	}
}

func WithInvalidator(inv Invalidator) Option {
	return func(c *QueryCache) { c.invalidator = inv }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *QueryCache) { c.metrics = m }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *QueryCache) { c.logger = logger }
}

func NewQueryCache(store Store, opts ...Option) *QueryCache {
	c := &QueryCache{
		store:     store,
		logger:    zap.NewNop(),
		staleTime: DefaultStaleTime,
		gcTime:    DefaultGCTime,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gcTime < c.staleTime {
		c.gcTime = c.staleTime
	}
	return c
}

// Fetch returns the cached value for key or loads it. Concurrent misses
// for the same key share one load. A stale value is returned immediately
// while a refresh runs in the background.
func Fetch[T any](ctx context.Context, c *QueryCache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	data, err := c.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("failed to decode cached %s: %w", key.Group, err)
	}
	return out, nil
}

type loader func(ctx context.Context) ([]byte, error)

func (c *QueryCache) fetch(ctx context.Context, key Key, load loader) ([]byte, error) {
	k := key.String()
	group := string(key.Group)

	entry, found, err := c.store.Get(ctx, k)
	if err != nil {
		c.logger.Warn("Query cache read failed, loading from backend", zap.String("key", k), zap.Error(err))
		found = false
	}

	if found {
		if entry.Age(c.now()) < c.staleTime {
			c.metrics.ObserveCache(group, telemetry.CacheHit)
			return entry.Value, nil
		}
		c.metrics.ObserveCache(group, telemetry.CacheStale)
		c.refreshInBackground(ctx, key, load)
		return entry.Value, nil
	}

	c.metrics.ObserveCache(group, telemetry.CacheMiss)
	return c.load(ctx, key, load)
}

// load runs at most one loader per key and generation
func (c *QueryCache) load(ctx context.Context, key Key, load loader) ([]byte, error) {
	gen := c.generation(key.Group)
	k := key.String()

	v, err, _ := c.flights.Do(k+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.put(ctx, k, key.Group, gen, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *QueryCache) refreshInBackground(ctx context.Context, key Key, load loader) {
	if c.closed.Load() {
		return
	}
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultRefreshTimeout)
		defer cancel()
		if _, err := c.load(refreshCtx, key, load); err != nil {
			c.logger.Warn("Background refresh failed",
				zap.String("group", string(key.Group)),
				zap.Error(err))
		}
	}()
}

// put stores data unless the group was invalidated while it was loading
func (c *QueryCache) put(ctx context.Context, k string, group Group, gen uint64, data []byte) {
	if c.generation(group) != gen {
		return
	}
	entry := Entry{Value: data, StoredAt: c.now()}
	if err := c.store.Set(ctx, k, entry, c.gcTime); err != nil {
		c.logger.Warn("Query cache write failed", zap.String("key", k), zap.Error(err))
	}
}

func (c *QueryCache) counter(group Group) *atomic.Uint64 {
	v, _ := c.generations.LoadOrStore(group, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

func (c *QueryCache) generation(group Group) uint64 {
	return c.counter(group).Load()
}

// Invalidate drops the groups locally and announces it to other instances
func (c *QueryCache) Invalidate(ctx context.Context, groups ...Group) error {
	if len(groups) == 0 {
		return nil
	}
	if err := c.invalidateLocal(ctx, groups); err != nil {
		return err
	}
	if c.invalidator != nil {
		if err := c.invalidator.Publish(ctx, groups...); err != nil {
			c.logger.Warn("Failed to broadcast cache invalidation", zap.Error(err))
		}
	}
	return nil
}

func (c *QueryCache) invalidateLocal(ctx context.Context, groups []Group) error {
	for _, g := range groups {
		c.counter(g).Add(1)
		c.metrics.ObserveInvalidation(string(g))
	}
	if err := c.store.InvalidateGroups(ctx, groups...); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Listen applies invalidations broadcast by other instances until ctx ends.
// Without an invalidator it returns immediately.
func (c *QueryCache) Listen(ctx context.Context) {
	if c.invalidator == nil {
		return
	}
	go func() {
		err := c.invalidator.Subscribe(ctx, func(groups []Group) {
			if err := c.invalidateLocal(context.Background(), groups); err != nil {
				c.logger.Warn("Failed to apply remote invalidation", zap.Error(err))
			}
		})
		if err != nil && ctx.Err() == nil {
			c.logger.Error("Cache invalidation subscription ended", zap.Error(err))
		}
	}()
}

// Close stops background work and releases the store
func (c *QueryCache) Close() error {
	c.closed.Store(true)
	if c.invalidator != nil {
		_ = c.invalidator.Close()
	}
	c.refreshes.Wait()
	return c.store.Close()
}
