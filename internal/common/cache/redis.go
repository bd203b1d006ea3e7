// internal/common/cache/redis.go
package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"formbricks-seeder/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     2,
	})

	return &RedisClient{Client: rdb}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

const keyPrefix = "seeder:survey"

// LLMCache stores raw text-generation output per model and survey archetype
// so repeated generate runs do not hit the model again.
type LLMCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewLLMCache(client redis.Cmdable, ttl time.Duration) *LLMCache {
	return &LLMCache{client: client, ttl: ttl}
}

// Key builds the cache key for a model/archetype pair.
func Key(model, archetype string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(archetype), " ", "_"))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, model, slug)
}

// Get returns the cached output. A miss is reported as ok=false with a nil error.
func (c *LLMCache) Get(ctx context.Context, model, archetype string) (string, bool, error) {
	val, err := c.client.Get(ctx, Key(model, archetype)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get failed: %w", err)
	}
	return val, true, nil
}

// Put stores output with the configured TTL.
func (c *LLMCache) Put(ctx context.Context, model, archetype, raw string) error {
	if err := c.client.Set(ctx, Key(model, archetype), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}
