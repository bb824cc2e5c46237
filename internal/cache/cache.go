// Package cache provides the volatile tier of the cache-aside store:
// a TTL-bound key-value layer in front of the durable snapshot store.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the volatile key-value layer. Implementations are selected by
// configuration; writes are last-writer-wins so concurrent writers for the
// same key are tolerated without locking.
type Cache interface {
	// Get returns the value for key, or ok=false when absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReturnsKey builds the cache key for a normalized fund series. The key
// includes the organization id so tenants never observe each other's
// cached series.
func ReturnsKey(ticker, organizationID string) string {
	return fmt.Sprintf("fund:%s:%s:returns", ticker, organizationID)
}
