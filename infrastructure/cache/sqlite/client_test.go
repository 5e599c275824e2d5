package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/interfaces"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewSQLiteCache(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_SetThenGet(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	value := []byte(`[{"text":"The quick brown fox","domain":"example.com"}]`)

	require.NoError(t, client.Set(ctx, "collectedItems", value, 0))

	got, err := client.Get(ctx, "collectedItems")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestClient_MissingKey(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Get(context.Background(), "absent")

	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestClient_TTL(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	require.NoError(t, client.Set(ctx, "forever", []byte("v"), 0))
	time.Sleep(20 * time.Millisecond)

	_, err := client.Get(ctx, "short")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	_, err = client.Get(ctx, "forever")
	assert.NoError(t, err)

	client.cleanup()
	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats["total_entries"])
}

func TestClient_OverwriteAndDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", []byte("one"), 0))
	require.NoError(t, client.Set(ctx, "k", []byte("two"), 0))
	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	require.NoError(t, client.Delete(ctx, "k"))
	require.NoError(t, client.Delete(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestClient_EmptyValueRoundTrips(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", nil, 0))

	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_KeyValidation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	assert.Error(t, client.Set(ctx, "", []byte("v"), 0))
	assert.Error(t, client.Set(ctx, strings.Repeat("k", MaxKeyLength+1), []byte("v"), 0))
	_, err := client.Get(ctx, "")
	assert.Error(t, err)
	assert.Error(t, client.Delete(ctx, ""))
}

func TestClient_KeysAreParameters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	hostile := "items';DROP TABLE kv;--"

	require.NoError(t, client.Set(ctx, hostile, []byte("v"), 0))
	require.NoError(t, client.Set(ctx, "collectedItems", []byte("[]"), 0))

	got, err := client.Get(ctx, hostile)
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	_, err = client.Get(ctx, "collectedItems")
	assert.NoError(t, err, "table survives")
}

func TestClient_BinaryAndLargeValues(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	binary := []byte{0, 1, 2, 0xff, 0xfe, 0}
	large := []byte(strings.Repeat("data:image/png;base64,AAAA", 100000))

	require.NoError(t, client.Set(ctx, "binary", binary, 0))
	require.NoError(t, client.Set(ctx, "large", large, 0))

	got, err := client.Get(ctx, "binary")
	require.NoError(t, err)
	assert.Equal(t, binary, got)
	got, err = client.Get(ctx, "large")
	require.NoError(t, err)
	assert.Equal(t, len(large), len(got))
}

func TestClient_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipper.db")
	ctx := context.Background()

	first, err := NewSQLiteCache(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "hiddenDomains", []byte(`["example.com"]`), 0))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(path, nil)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "hiddenDomains")
	require.NoError(t, err)
	assert.Equal(t, `["example.com"]`, string(got))
}

func FuzzClient_Key(f *testing.F) {
	for _, seed := range []string{"collectedItems", "imageData:https://example.com/a.png", "'; DROP TABLE kv; --", "ключ"} {
		f.Add(seed)
	}
	client, err := NewSQLiteCache(":memory:", nil)
	if err != nil {
		f.Fatal(err)
	}
	defer client.Close()

	f.Fuzz(func(t *testing.T, key string) {
		ctx := context.Background()
		if err := client.Set(ctx, key, []byte("v"), 0); err != nil {
			return
		}
		got, err := client.Get(ctx, key)
		if err != nil || string(got) != "v" {
			t.Fatalf("round trip of %q failed: %v", key, err)
		}
		_ = client.Delete(ctx, key)
	})
}
