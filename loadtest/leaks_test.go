package loadtest

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/core/collection"
	"webclipper-api/core/domain"
	"webclipper-api/core/tabs"
	"webclipper-api/core/workers"
	"webclipper-api/infrastructure/cache/memory"
)

// TestCheckGoroutineLeaks starts and stops the background repeatedly
func TestCheckGoroutineLeaks(t *testing.T) {
	// go-cache runs a janitor per instance, so one cache serves every round
	cache := memory.NewMemoryCache()
	initialGoroutines := runtime.NumGoroutine()

	for round := 0; round < 20; round++ {
		registry := tabs.NewRegistry(nil)
		dispatcher := workers.NewDispatcher(registry.Deliver, workers.DefaultWorkerConfig(), nil)
		require.NoError(t, dispatcher.Start())
		store := collection.New(collection.Config{Cache: cache, Tabs: registry, Broadcaster: dispatcher})
		store.Start(context.Background())

		_, _ = registry.Upsert("1", "https://example.com/", tabs.StatusComplete)
		require.NoError(t, registry.Attach("1", &countingReceiver{}))
		for i := 0; i < 10; i++ {
			_, err := store.Add(context.Background(), domain.Item{
				Text: fmt.Sprintf("round %02d capture %02d of the page", round, i),
				URL:  "https://example.com/post",
			})
			require.NoError(t, err)
		}

		store.Stop()
		require.NoError(t, dispatcher.Stop())
	}

	// Wait for goroutines to finish
	time.Sleep(100 * time.Millisecond)

	finalGoroutines := runtime.NumGoroutine()
	goroutineGrowth := finalGoroutines - initialGoroutines
	t.Logf("Goroutine count - Initial: %d, Final: %d, Growth: %d",
		initialGoroutines, finalGoroutines, goroutineGrowth)

	assert.LessOrEqual(t, goroutineGrowth, 5, "Potential goroutine leak detected")
}
