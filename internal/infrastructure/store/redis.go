package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront:profile:"

// profileKeys are the documents a profile can hold; Touch refreshes each
var profileKeys = []string{profile.KeyAuth, profile.KeyCart, profile.KeyCheckout}

// RedisStore keeps one string value per profile document with a sliding TTL.
// The client is shared with the query cache and is closed by its owner.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, keyPrefix: defaultRedisPrefix, ttl: ttl}
}

// Key returns the redis key holding one profile document
func (s *RedisStore) Key(id profile.ID, key string) string {
	return s.keyPrefix + id.String() + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, id profile.ID, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.Key(id, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read profile document: %w", err)
	}
	return value, true, nil
}

func (s *RedisStore) Put(ctx context.Context, id profile.ID, key string, value []byte) error {
	if err := s.client.Set(ctx, s.Key(id, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write profile document: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id profile.ID, key string) error {
	if err := s.client.Del(ctx, s.Key(id, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete profile document: %w", err)
	}
	return nil
}

// Touch pushes the expiry of every existing document of the profile.
// EXPIRE on a missing key is a no-op.
func (s *RedisStore) Touch(ctx context.Context, id profile.ID, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range profileKeys {
			pipe.Expire(ctx, s.Key(id, key), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to refresh profile expiry: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return nil }

var _ profile.Store = (*RedisStore)(nil)
