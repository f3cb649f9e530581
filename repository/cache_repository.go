package repository

import (
	"context"
	"time"
)

// CacheRepository is a small string cache with per-entry TTL. A zero TTL
// means no expiry.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
