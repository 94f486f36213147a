package catalog2pdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered PDFs by key.
// Get reports ok=false on a miss; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (pdf []byte, ok bool, err error)
	Set(ctx context.Context, key string, pdf []byte) error
}

// CacheKey derives the cache key from the composed HTML. The HTML embeds
// every input that affects the PDF (images included), so equal HTML means
// an equal document.
func CacheKey(htmlContent string) string {
	sum := sha256.Sum256([]byte(htmlContent))
	return hex.EncodeToString(sum[:])
}

// DefaultCachePrefix namespaces cache entries in Redis.
const DefaultCachePrefix = "catalog2pdf:pdf:"

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a RedisCache. ttl <= 0 stores entries without expiry.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: DefaultCachePrefix}
}

// Get returns the PDF stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores pdf under key.
func (c *RedisCache) Set(ctx context.Context, key string, pdf []byte) error {
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.prefix+key, pdf, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ Cache = (*RedisCache)(nil)
