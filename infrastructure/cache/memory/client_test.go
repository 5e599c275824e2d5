package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/interfaces"
)

func TestMemoryCache_SetThenGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "collectedItems", []byte(`[]`), 0))

	got, err := cache.Get(ctx, "collectedItems")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestMemoryCache_MissingKey(t *testing.T) {
	cache := NewMemoryCache()

	got, err := cache.Get(context.Background(), "non-existent")

	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	assert.Nil(t, got)
}

func TestMemoryCache_ExpiredKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))

	time.Sleep(20 * time.Millisecond)

	got, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))
}

func TestMemoryCache_OverwriteAndDelete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("one"), 0))
	require.NoError(t, cache.Set(ctx, "key", []byte("two"), 0))
	got, _ := cache.Get(ctx, "key")
	assert.Equal(t, "two", string(got))

	require.NoError(t, cache.Delete(ctx, "key"))
	require.NoError(t, cache.Delete(ctx, "key"), "deleting a missing key is fine")
	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	value := []byte("original")
	require.NoError(t, cache.Set(ctx, "key", value, 0))

	value[0] = 'X'
	got, _ := cache.Get(ctx, "key")
	assert.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "key")
	assert.Equal(t, "original", string(again))
}

func TestMemoryCache_CancelledContext(t *testing.T) {
	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, cache.Set(ctx, "key", []byte("v"), 0), context.Canceled)
	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, cache.Delete(ctx, "key"), context.Canceled)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			_ = cache.Set(ctx, key, []byte(key), 0)
			_, _ = cache.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, cache.Len())
}
