// Package cache provides the key/value cache the registry uses for raw
// definition blobs. Entries carry an expiry; an expired entry reads as a miss.
package cache

import (
	"context"
	"time"
)

// Entry is a cached value and the moment it expires. A zero ExpiresAt never expires.
type Entry struct {
	Value     []byte
	ExpiresAt time.Time
}

// Cache stores byte values with a time-to-live
type Cache interface {
	// Get returns the entry and true on a hit, or a zero Entry and false on a miss
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
