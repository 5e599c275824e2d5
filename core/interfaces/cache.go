// ABOUTME: Key-value persistence contract shared by the collection store and visibility
// ABOUTME: Backed by go-cache, SQLite or Redis depending on configuration

// Package interfaces holds the contracts between the core packages and their adapters.
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the key-value persistence facility. Values are opaque bytes,
// usually JSON. There are no transactions: the last write wins.
//
//	data, err := cache.Get(ctx, "collectedItems")
//	if errors.Is(err, interfaces.ErrCacheMiss) {
//		// start empty
//	}
type Cache interface {
	// Get returns the stored bytes or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl keeps it until overwritten.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key; a missing key is not an error
	Delete(ctx context.Context, key string) error
}
