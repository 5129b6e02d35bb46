package data

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedReport struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

func setupTestCache(t *testing.T) (CacheClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCacheClient(rdb), mr
}

func TestCache_SetGet(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()
	key := BuildCacheKey(CacheKeyAnalytics, "order-frequency")

	require.NoError(t, cache.Set(ctx, key, cachedReport{Name: "freq", Total: 3}, time.Minute))

	var got cachedReport
	require.NoError(t, cache.Get(ctx, key, &got))
	assert.Equal(t, cachedReport{Name: "freq", Total: 3}, got)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestCache_GetMissing(t *testing.T) {
	cache, _ := setupTestCache(t)

	var got cachedReport
	err := cache.Get(context.Background(), "analytics:none", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCache_GetCorrupted(t *testing.T) {
	cache, mr := setupTestCache(t)
	require.NoError(t, mr.Set("customer:1", "{not json"))

	var got cachedReport
	err := cache.Get(context.Background(), "customer:1", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheNotFound)
}

func TestCache_Expiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "customer:2", cachedReport{Name: "x"}, TTLCustomer))
	mr.FastForward(TTLCustomer + time.Second)

	var got cachedReport
	assert.ErrorIs(t, cache.Get(ctx, "customer:2", &got), ErrCacheNotFound)
}

func TestCache_Delete(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "customer:a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "customer:b", 2, time.Minute))

	require.NoError(t, cache.Delete(ctx, "customer:a", "customer:b"))
	assert.False(t, mr.Exists("customer:a"))
	assert.False(t, mr.Exists("customer:b"))
	assert.NoError(t, cache.Delete(ctx))
}

func TestCache_NilClient(t *testing.T) {
	cache := NewCacheClient(nil)
	ctx := context.Background()

	var got cachedReport
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheUnavailable)
	assert.ErrorIs(t, cache.Set(ctx, "k", got, time.Minute), ErrCacheUnavailable)
	assert.ErrorIs(t, cache.Delete(ctx, "k"), ErrCacheUnavailable)
}

func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{"customer", CacheKeyCustomer, []string{"5f7c"}, "customer:5f7c"},
		{"analytics", CacheKeyAnalytics, []string{"average-duration"}, "analytics:average-duration"},
		{"rate", CacheKeyRate, []string{"10.0.0.1", "28512345"}, "rate:10.0.0.1:28512345"},
		{"prefix only", CacheKeyRate, nil, "rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildCacheKey(tt.prefix, tt.parts...))
		})
	}
}
