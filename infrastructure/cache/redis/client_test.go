package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/interfaces"
	"webclipper-api/pkg/config"
)

// These are integration tests that need a Redis instance at REDIS_TEST_ADDR.
// The JSON cases also need the RedisJSON module (set REDIS_TEST_JSON=1).

func testConfig(t *testing.T, jsonMode bool) config.RedisConfig {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration tests - set REDIS_TEST_ADDR to run")
	}
	if jsonMode && os.Getenv("REDIS_TEST_JSON") == "" {
		t.Skip("Skipping RedisJSON tests - set REDIS_TEST_JSON=1 to run")
	}
	return config.RedisConfig{Address: addr, JSON: jsonMode}
}

func newTestCache(t *testing.T, jsonMode bool) *RedisCache {
	t.Helper()
	c, err := NewRedisCache(testConfig(t, jsonMode), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewRedisCache_InvalidAddress(t *testing.T) {
	c, err := NewRedisCache(config.RedisConfig{}, nil)

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	c, err := NewRedisCache(config.RedisConfig{Address: "127.0.0.1:1"}, nil)

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	for name, jsonMode := range map[string]bool{"plain": false, "json": true} {
		t.Run(name, func(t *testing.T) {
			c := newTestCache(t, jsonMode)
			ctx := context.Background()
			key := "webclipper:test:" + name

			_, err := c.Get(ctx, key)
			require.ErrorIs(t, err, interfaces.ErrCacheMiss)

			value := []byte(`[{"text":"The quick brown fox jumps","url":"https://example.com/"}]`)
			require.NoError(t, c.Set(ctx, key, value, time.Minute))
			got, err := c.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, string(value), string(got))

			require.NoError(t, c.Set(ctx, key, []byte("not json"), 0))
			got, err = c.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "not json", string(got))

			require.NoError(t, c.Delete(ctx, key))
			require.NoError(t, c.Delete(ctx, key))
			_, err = c.Get(ctx, key)
			assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
		})
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c := newTestCache(t, false)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "webclipper:test:ttl", []byte("v"), time.Second))
	time.Sleep(1500 * time.Millisecond)

	_, err := c.Get(ctx, "webclipper:test:ttl")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}
