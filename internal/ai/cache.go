package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores generated results. Implementations are best-effort: failures are
// logged and reported as misses.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool)
	Set(ctx context.Context, key string, res Result)
}

// CacheKey identifies a title/author pair independent of case and surrounding spaces.
func CacheKey(title, author string) string {
	sum := sha256.Sum256([]byte(
		strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(author)),
	))
	return hex.EncodeToString(sum[:])
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: slog.Default()}
}

func redisKey(key string) string {
	return "ai:summary:" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (Result, bool) {
	raw, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("summary_cache_get_failed", "error", err)
		}
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("summary_cache_corrupt", "key", key, "error", err)
		return Result{}, false
	}
	return res, true
}

func (c *RedisCache) Set(ctx context.Context, key string, res Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKey(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("summary_cache_set_failed", "error", err)
	}
}

// MemoryCache is the in-process cache used when redis is unavailable.
type MemoryCache struct {
	lru *expirable.LRU[string, Result]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[string, Result](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Result, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key string, res Result) {
	c.lru.Add(key, res)
}
