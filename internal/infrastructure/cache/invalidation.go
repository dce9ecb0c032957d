package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultInvalidationChannel = "storefront:cache:invalidate"
	defaultCloseTimeout        = 5 * time.Second
)

// InvalidationMessage announces that groups changed on the backend
type InvalidationMessage struct {
	Groups    []Group `json:"groups"`
	Origin    string  `json:"origin"`
	Timestamp int64   `json:"timestamp"`
}

// Invalidator broadcasts group invalidations between storefront instances
type Invalidator interface {
	Publish(ctx context.Context, groups ...Group) error
	// Subscribe blocks, calling fn for messages from other instances
	Subscribe(ctx context.Context, fn func(groups []Group)) error
	Close() error
}

// RedisInvalidator uses Redis Pub/Sub. Messages carry the publishing
// instance's id so an instance ignores its own broadcasts.
type RedisInvalidator struct {
	client   redis.UniversalClient
	channel  string
	origin   string
	logger   *zap.Logger
	mu       sync.Mutex
	cancelFn context.CancelFunc
	running  bool
	doneCh   chan struct{}
}

func NewRedisInvalidator(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisInvalidator {
	if channel == "" {
		channel = DefaultInvalidationChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisInvalidator{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

func (i *RedisInvalidator) Publish(ctx context.Context, groups ...Group) error {
	data, err := json.Marshal(InvalidationMessage{
		Groups:    groups,
		Origin:    i.origin,
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

func (i *RedisInvalidator) Subscribe(ctx context.Context, fn func(groups []Group)) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return errors.New("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.running = true
	i.cancelFn = cancel
	i.doneCh = make(chan struct{})
	done := i.doneCh
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		close(done)
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.channel, err)
	}
	i.logger.Info("Subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				return nil
			}
			var m InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("Failed to decode invalidation message", zap.Error(err))
				continue
			}
			if m.Origin == i.origin {
				continue
			}
			i.dispatch(fn, m.Groups)
		}
	}
}

func (i *RedisInvalidator) dispatch(fn func([]Group), groups []Group) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in invalidation callback", zap.Any("panic", r))
		}
	}()
	fn(groups)
}

// Close stops a running subscription and waits briefly for it to exit
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancel, done := i.cancelFn, i.doneCh
	i.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("Timeout waiting for invalidation subscription to stop")
	}
	return nil
}

var _ Invalidator = (*RedisInvalidator)(nil)
