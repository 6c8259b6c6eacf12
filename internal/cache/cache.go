package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a generated result stays valid.
const DefaultTTL = 5 * time.Minute

// Cache stores generated payloads by key.
// Get reports (nil, false, nil) on a clean miss; errors are for callers to
// log and treat as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
