// ABOUTME: Main entry point for the Web Clipper API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webclipper-api/api"
	"webclipper-api/api/handlers"
	"webclipper-api/api/middleware"
	"webclipper-api/core/collection"
	"webclipper-api/core/host"
	"webclipper-api/core/interfaces"
	"webclipper-api/core/tabs"
	"webclipper-api/core/visibility"
	"webclipper-api/core/workers"
	"webclipper-api/infrastructure/cache/memory"
	"webclipper-api/infrastructure/cache/redis"
	"webclipper-api/infrastructure/cache/sqlite"
	stdhttp "webclipper-api/infrastructure/http/standard"
	"webclipper-api/infrastructure/logger"
	httpsummarizer "webclipper-api/infrastructure/summarizer/http"
	"webclipper-api/pkg/config"
	"webclipper-api/pkg/featureflags"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Close()

	flags := featureflags.NewEnvManager("", nil)
	appLogger.Info("Starting Web Clipper API", map[string]interface{}{
		"port":         cfg.Server.Port,
		"persist_type": cfg.Persist.Type,
		"log_backend":  cfg.Log.Backend,
		"flags":        flags.GetAllFlags(),
	})

	cache, closeCache := openCache(cfg, appLogger)
	defer closeCache()

	ctx := context.Background()

	registry := tabs.NewRegistry(appLogger)
	dispatcher := workers.NewDispatcher(registry.Deliver, workers.WorkerConfig{
		MaxWorkers:      cfg.Broadcast.Workers,
		QueueSize:       cfg.Broadcast.QueueSize,
		DeliveryTimeout: cfg.Broadcast.Timeout,
	}, appLogger)
	if err := dispatcher.Start(); err != nil {
		log.Fatalf("Failed to start dispatcher: %v", err)
	}

	store := collection.New(collection.Config{
		Cache:       cache,
		Tabs:        registry,
		Broadcaster: dispatcher,
		Logger:      appLogger,
	})
	store.Start(ctx)

	var summarizer interfaces.Summarizer
	if cfg.Summarizer.URL != "" && flags.IsEnabled(ctx, featureflags.SummarizeEnabled) {
		summarizer = httpsummarizer.New(cfg.Summarizer.URL, interfaces.Dependencies{
			HTTPClient: stdhttp.NewStandardHTTPClient(cfg.Summarizer.Timeout, stdhttp.WithLogger(appLogger)),
			Logger:     appLogger,
		})
		appLogger.Info("Summarizer enabled", map[string]interface{}{"url": cfg.Summarizer.URL})
	}

	background := host.New(host.Config{
		Store:       store,
		Tabs:        registry,
		Visibility:  visibility.New(cache, appLogger),
		Broadcaster: dispatcher,
		Summarizer:  summarizer,
		Logger:      appLogger,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	defer limiter.Stop()

	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
		Logger:         appLogger,
		RateLimiter:    limiter,
		Flags:          flags,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	handlers.RegisterHealth(humaAPI)
	handlers.NewMessageHandler(background).RegisterRoutes(humaAPI)
	handlers.NewTabHandler(registry, background).RegisterRoutes(humaAPI)
	if flags.IsEnabled(ctx, featureflags.RemoteTabs) {
		handlers.NewEventsHandler(registry, appLogger).RegisterRoutes(humaAPI)
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// no write timeout: event streams stay open
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// pending summaries may still push; drain them before the workers go
	background.Wait()
	store.Stop()
	if err := dispatcher.Stop(); err != nil {
		appLogger.Warn("Dispatcher did not stop cleanly", map[string]interface{}{"error": err.Error()})
	}

	appLogger.Info("Server stopped", nil)
}

// openCache builds the configured persistence backend. Redis falls back to
// memory when the server is unreachable.
func openCache(cfg *config.Config, appLogger interfaces.Logger) (interfaces.Cache, func()) {
	noop := func() {}
	closeWith := func(c io.Closer) func() {
		return func() {
			if err := c.Close(); err != nil {
				appLogger.Warn("Failed to close cache", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	switch cfg.Persist.Type {
	case config.PersistSQLite:
		c, err := sqlite.NewSQLiteCache(cfg.Persist.SQLitePath, appLogger)
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		appLogger.Info("Using SQLite persistence", map[string]interface{}{"path": cfg.Persist.SQLitePath})
		return c, closeWith(c)

	case config.PersistRedis:
		c, err := redis.NewRedisCache(cfg.Persist.Redis, appLogger)
		if err != nil {
			appLogger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCache(), noop
		}
		appLogger.Info("Using Redis persistence", map[string]interface{}{
			"address": cfg.Persist.Redis.Address,
			"json":    cfg.Persist.Redis.JSON,
		})
		return c, closeWith(c)

	default:
		appLogger.Info("Using memory persistence", nil)
		return memory.NewMemoryCache(), noop
	}
}

func init() {
	fmt.Println(`
 _    _      _      _____ _ _
| |  | |    | |    /  __ \ (_)
| |  | | ___| |__  | /  \/ |_ _ __  _ __   ___ _ __
| |/\| |/ _ \ '_ \ | |   | | | '_ \| '_ \ / _ \ '__|
\  /\  /  __/ |_) || \__/\ | | |_) | |_) |  __/ |
 \/  \/ \___|_.__/  \____/_|_| .__/| .__/ \___|_|
                             | |   | |
                             |_|   |_|
	`)
}
