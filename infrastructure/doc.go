// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: in-memory store backed by go-cache
// - cache/sqlite: file-backed store on go-sqlite3
// - cache/redis: Redis store, optionally keeping JSON values as RedisJSON documents
// - http/standard: HTTP client with retry and backoff
// - images: fetches page images and re-encodes them as data URIs
// - logger/standard: logrus logger with optional lumberjack rotation
// - logger/zap: zap logger with the same interface
// - page: fetches pages with colly, narrows them with go-readability, exports Markdown
// - summarizer/http: calls an external summarization service
//
// # Cache Implementations
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "collectedItems", data, 0)
//	value, err := cache.Get(ctx, "collectedItems")
//
//	cache, err := redis.NewRedisCache(config.RedisConfig{Address: "localhost:6379", JSON: true}, logger)
//
// # Logger
//
//	logger, err := logger.New(config.LogConfig{Level: "info", Format: "json", Backend: "zap"})
//	logger.Info("Item collected", map[string]interface{}{"domain": "example.com"})
package infrastructure
