// ABOUTME: Load tests for the /messages endpoint
// ABOUTME: Checks that concurrent captures are all kept and pushed under load

package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webclipper-api/api"
	"webclipper-api/api/dto/requests"
	"webclipper-api/api/handlers"
	"webclipper-api/core/collection"
	"webclipper-api/core/domain"
	"webclipper-api/core/host"
	"webclipper-api/core/tabs"
	"webclipper-api/core/visibility"
	"webclipper-api/core/workers"
	"webclipper-api/infrastructure/cache/memory"
)

// countingReceiver counts the pushes one tab gets
type countingReceiver struct {
	pushes int64
	last   atomic.Value
}

func (r *countingReceiver) Deliver(ctx context.Context, msg domain.Message) (domain.Response, error) {
	atomic.AddInt64(&r.pushes, 1)
	r.last.Store(len(msg.Items))
	return domain.EmptyResponse(), nil
}

// LoadTestMetrics tracks performance metrics
type LoadTestMetrics struct {
	TotalRequests  int64
	SuccessfulReqs int64
	FailedReqs     int64
	TotalDuration  time.Duration
	MinLatency     time.Duration
	MaxLatency     time.Duration
	AvgLatency     time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration
	RequestsPerSec float64
}

type background struct {
	server     *httptest.Server
	store      *collection.Store
	registry   *tabs.Registry
	dispatcher *workers.Dispatcher
}

func newBackground(t *testing.T) *background {
	t.Helper()
	registry := tabs.NewRegistry(nil)
	dispatcher := workers.NewDispatcher(registry.Deliver, workers.DefaultWorkerConfig(), nil)
	require.NoError(t, dispatcher.Start())
	t.Cleanup(func() { _ = dispatcher.Stop() })

	cache := memory.NewMemoryCache()
	store := collection.New(collection.Config{Cache: cache, Tabs: registry, Broadcaster: dispatcher, QueueSize: 256})
	store.Start(context.Background())
	t.Cleanup(store.Stop)

	h := host.New(host.Config{
		Store:       store,
		Tabs:        registry,
		Visibility:  visibility.New(cache, nil),
		Broadcaster: dispatcher,
	})

	apiInstance, router := api.NewAPI()
	handlers.NewMessageHandler(h).RegisterRoutes(apiInstance)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &background{server: server, store: store, registry: registry, dispatcher: dispatcher}
}

func TestMessagesEndpoint_100ConcurrentCaptures(t *testing.T) {
	if testing.Short() {
		t.Skip("load test")
	}
	bg := newBackground(t)

	receivers := map[string]*countingReceiver{}
	for _, d := range []string{"a.example.com", "b.example.com", "c.example.com"} {
		rcv := &countingReceiver{}
		receivers[d] = rcv
		_, err := bg.registry.Upsert(d, "https://"+d+"/", tabs.StatusComplete)
		require.NoError(t, err)
		require.NoError(t, bg.registry.Attach(d, rcv))
	}

	// Test configuration
	concurrency := 100
	requestsPerWorker := 10
	totalRequests := concurrency * requestsPerWorker

	var (
		successCount int64
		failCount    int64
		latencies    []time.Duration
		mu           sync.Mutex
	)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	startTime := time.Now()

	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()

			client := &http.Client{Timeout: 30 * time.Second}
			for j := 0; j < requestsPerWorker; j++ {
				host := []string{"a", "b", "c"}[(workerID+j)%3] + ".example.com"
				reqBody := requests.MessageRequest{
					Action: string(domain.ActionAddText),
					Data: &requests.ItemRequest{
						Text: fmt.Sprintf("Captured paragraph %03d from worker %03d", j, workerID),
						URL:  fmt.Sprintf("https://%s/post/%d", host, workerID),
					},
				}
				body, _ := json.Marshal(reqBody)

				reqStart := time.Now()
				req, _ := http.NewRequest(http.MethodPost, bg.server.URL+"/messages", bytes.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Tab-ID", host)
				resp, err := client.Do(req)
				latency := time.Since(reqStart)

				mu.Lock()
				latencies = append(latencies, latency)
				mu.Unlock()

				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}
				_, _ = io.ReadAll(resp.Body)
				resp.Body.Close()

				if resp.StatusCode == http.StatusOK {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
			}
		}(i)
	}

	wg.Wait()
	totalDuration := time.Since(startTime)
	bg.dispatcher.Flush()

	metrics := calculateMetrics(latencies, totalDuration, totalRequests)
	metrics.SuccessfulReqs = successCount
	metrics.FailedReqs = failCount

	t.Logf("Load Test Results - 100 Concurrent Capture Workers")
	t.Logf("==================================================")
	t.Logf("Total Requests: %d", metrics.TotalRequests)
	t.Logf("Successful: %d", metrics.SuccessfulReqs)
	t.Logf("Failed: %d", metrics.FailedReqs)
	t.Logf("Total Duration: %v", metrics.TotalDuration)
	t.Logf("Requests/sec: %.2f", metrics.RequestsPerSec)
	t.Logf("Avg Latency: %v", metrics.AvgLatency)
	t.Logf("P95 Latency: %v", metrics.P95Latency)
	t.Logf("P99 Latency: %v", metrics.P99Latency)

	assert.Zero(t, metrics.FailedReqs)
	assert.Less(t, metrics.P95Latency, 2*time.Second)

	all, err := bg.store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, totalRequests, "no capture may be lost")

	// every commit pushes every web-page tab, and the last push carries the final view
	for d, rcv := range receivers {
		assert.Equal(t, int64(totalRequests), atomic.LoadInt64(&rcv.pushes), d)
		assert.Equal(t, domain.CountForDomain(all, d), rcv.last.Load(), d)
		tab, _ := bg.registry.Get(d)
		assert.Equal(t, domain.CountForDomain(all, d), tab.Badge.Count, d)
	}
}

// calculateMetrics computes performance metrics from latency data
func calculateMetrics(latencies []time.Duration, totalDuration time.Duration, totalRequests int) LoadTestMetrics {
	if len(latencies) == 0 {
		return LoadTestMetrics{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	return LoadTestMetrics{
		TotalRequests:  int64(totalRequests),
		TotalDuration:  totalDuration,
		MinLatency:     sorted[0],
		MaxLatency:     sorted[len(sorted)-1],
		AvgLatency:     sum / time.Duration(len(latencies)),
		P95Latency:     sorted[int(float64(len(sorted))*0.95)],
		P99Latency:     sorted[int(float64(len(sorted))*0.99)],
		RequestsPerSec: float64(totalRequests) / totalDuration.Seconds(),
	}
}
