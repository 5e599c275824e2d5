// ABOUTME: Redis cache implementation using go-redis client
// ABOUTME: Stores JSON values as RedisJSON documents when the JSON module is enabled

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nitishm/go-rejson/v4"
	"github.com/redis/go-redis/v9"

	"webclipper-api/core/interfaces"
	"webclipper-api/pkg/config"
)

const redisJSONType = "ReJSON-RL"

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client  *redis.Client
	handler *rejson.Handler
	logger  interfaces.Logger
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(cfg config.RedisConfig, logger interfaces.Logger) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", map[string]interface{}{
			"address":  cfg.Address,
			"database": cfg.DB,
			"error":    err.Error(),
		})
		_ = client.Close()
		return nil, err
	}

	c := &RedisCache{client: client, logger: logger}
	if cfg.JSON {
		c.handler = rejson.NewReJSONHandler()
		c.handler.SetGoRedisClient(client)
	}
	return c, nil
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.handler != nil {
		kind, err := c.client.Type(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		switch kind {
		case "none":
			return nil, interfaces.ErrCacheMiss
		case redisJSONType:
			val, err := c.handler.JSONGet(key, ".")
			if err != nil {
				c.logger.Error("Failed to get key from Redis", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
				return nil, err
			}
			raw, ok := val.([]byte)
			if !ok {
				return nil, fmt.Errorf("redis: unexpected JSON reply %T for %s", val, key)
			}
			return raw, nil
		}
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis with the given TTL. Values that are valid JSON
// become RedisJSON documents in JSON mode; anything else is a plain string.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if c.handler == nil || !json.Valid(value) {
		// Redis SET with 0 TTL means no expiration
		return c.client.Set(ctx, key, value, ttl).Err()
	}

	// JSON.SET cannot replace a plain string in place
	c.client.Del(ctx, key)
	if _, err := c.handler.JSONSet(key, ".", json.RawMessage(value)); err != nil {
		c.logger.Error("Failed to set key in Redis", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	if ttl > 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			c.logger.Error("Failed to set expiration for key in Redis", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			return err
		}
	}
	return nil
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	// deleting a missing key is not an error
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
