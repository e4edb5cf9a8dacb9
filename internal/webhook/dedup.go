package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "cafebot:webhook:"

// Deduplicator remembers webhook event IDs so a redelivered event is not
// answered twice.
type Deduplicator interface {
	// Seen records eventID and reports whether it had already been recorded.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Forget drops a recorded ID so a later redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}

// RedisDeduplicator keeps event IDs in Redis with a TTL.
type RedisDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses a redis:// or rediss:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// NewRedisDeduplicator creates a deduplicator backed by client.
func NewRedisDeduplicator(client *redis.Client, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{client: client, ttl: ttl}
}

// Seen claims the event ID with SET NX. An empty ID is never a duplicate.
func (d *RedisDeduplicator) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	claimed, err := d.client.SetNX(ctx, dedupKeyPrefix+eventID, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim webhook event %s: %w", eventID, err)
	}
	return !claimed, nil
}

// Forget deletes the claim for eventID.
func (d *RedisDeduplicator) Forget(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	return d.client.Del(ctx, dedupKeyPrefix+eventID).Err()
}

// Ping checks that Redis is reachable.
func (d *RedisDeduplicator) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (d *RedisDeduplicator) Close() error {
	return d.client.Close()
}

// NoopDeduplicator treats every event as new.
type NoopDeduplicator struct{}

func (NoopDeduplicator) Seen(context.Context, string) (bool, error) { return false, nil }
func (NoopDeduplicator) Forget(context.Context, string) error       { return nil }
