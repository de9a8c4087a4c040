package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_Normalizes(t *testing.T) {
	assert.Equal(t, CacheKey("Dune", "Frank Herbert"), CacheKey(" dune ", "FRANK HERBERT"))
	assert.NotEqual(t, CacheKey("Dune", "Frank Herbert"), CacheKey("Dune Frank", "Herbert"))
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()
	key := CacheKey("Dune", "Frank Herbert")

	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)

	want := Result{Summary: "Spice.", Tags: []string{"sci-fi"}, Source: SourcePrimary}
	cache.Set(ctx, key, want)

	got, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, mr.Exists("ai:summary:"+key))

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, key)
	assert.False(t, ok)
}

func TestRedisCache_CorruptValueIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("ai:summary:k", "{not json"))

	_, ok := NewRedisCache(client, time.Minute).Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedisCache_UnavailableIsMiss(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisCache(client, time.Minute)
	cache.Set(context.Background(), "k", Result{Summary: "x"})
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache(2, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "a", Result{Summary: "A"})
	cache.Set(ctx, "b", Result{Summary: "B"})
	cache.Set(ctx, "c", Result{Summary: "C"})

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok, "oldest entry evicted")

	got, ok := cache.Get(ctx, "c")
	require.True(t, ok)
	assert.Equal(t, "C", got.Summary)
}
