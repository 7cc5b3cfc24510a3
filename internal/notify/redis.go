package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is used when no channel is configured.
const DefaultRedisChannel = "catalog:events"

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisNotifier publishes events on a pub/sub channel.
type RedisNotifier struct {
	client  publisher
	channel string
}

// NewRedisNotifier connects lazily to the server at url
// (redis://[:password@]host:port/db).
func NewRedisNotifier(url, channel string) (*RedisNotifier, error) {
	if url == "" {
		return nil, errors.New("redis notifier requires a url")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return newRedisNotifier(redis.NewClient(opt), channel), nil
}

func newRedisNotifier(client publisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

// Notify publishes e as JSON.
func (n *RedisNotifier) Notify(ctx context.Context, e Event) error {
	data, err := e.encode()
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", n.channel, err)
	}
	return nil
}

func (n *RedisNotifier) Name() string { return TypeRedis }

// Close releases the connection pool.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
