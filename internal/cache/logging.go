package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"promptswitcher/internal/metrics"
	"promptswitcher/pkg/logging/logging"
)

// LoggingCache wraps a Cache with logging + metrics.
type LoggingCache struct {
	inner Cache
}

// NewLoggingCache returns a cache that logs every access and counts hits
// and misses.
func NewLoggingCache(inner Cache) *LoggingCache {
	return &LoggingCache{inner: inner}
}

func (c *LoggingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	default:
		metrics.CacheMissesTotal.Inc()
	}

	fields := append(keyFields(key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	fields := append(keyFields(key),
		zap.Int("value_bytes", len(value)),
		zap.Duration("ttl", ttl),
		zap.Float64("latency_ms", latencyMs),
	)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("cache_set", fields...)
	}

	return err
}

func keyFields(key string) []zap.Field {
	fields := []zap.Field{zap.String("cache_key", key)}
	if k, ok := parseIdeaKey(key); ok {
		fields = append(fields,
			zap.String("version_id", k.VersionID),
			zap.String("hash", k.Hash),
		)
	}
	return fields
}
