package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"questlog/internal/models"

	"github.com/redis/go-redis/v9"
)

// ProjectionCache stores full game projections keyed by game id.
type ProjectionCache interface {
	Get(ctx context.Context, id int64) (*models.GameDocument, error)
	Set(ctx context.Context, doc *models.GameDocument) error
	Invalidate(ctx context.Context, id int64) error
}

// Noop caches nothing. Get always misses.
type Noop struct{}

func (Noop) Get(context.Context, int64) (*models.GameDocument, error) { return nil, nil }
func (Noop) Set(context.Context, *models.GameDocument) error { return nil }
func (Noop) Invalidate(context.Context, int64) error { return nil }

type RedisProjectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProjectionCache connects to redisURL (redis://host:port/db) and verifies
// the connection.
func NewRedisProjectionCache(redisURL, password string, ttl time.Duration) (*RedisProjectionCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProjectionCache{client: rdb, ttl: ttl}, nil
}

func gameKey(id int64) string {
	return fmt.Sprintf("questlog:game:%d", id)
}

// Get returns nil, nil on a miss.
func (c *RedisProjectionCache) Get(ctx context.Context, id int64) (*models.GameDocument, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc models.GameDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode cached game %d: %w", id, err)
	}
	return &doc, nil
}

func (c *RedisProjectionCache) Set(ctx context.Context, doc *models.GameDocument) error {
	if c == nil || c.client == nil || doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, gameKey(doc.ID), raw, c.ttl).Err()
}

func (c *RedisProjectionCache) Invalidate(ctx context.Context, id int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, gameKey(id)).Err()
}

func (c *RedisProjectionCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
