// Package cache stores solved payments so repeated requests with the same
// loan parameters skip the search.
package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store with per-entry expiry. A zero ttl
// keeps the entry until it is evicted by the backend.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
