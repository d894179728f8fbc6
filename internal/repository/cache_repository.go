package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/section-portal-api/pkg/errors"
)

const directoryKeyPrefix = "directory:"

// CoursesKey is the cache key for the top-level course listing.
func CoursesKey() string { return directoryKeyPrefix + "courses" }

// YearsKey is the cache key for the years under a course.
func YearsKey(course string) string {
	return fmt.Sprintf("%syears:%s", directoryKeyPrefix, course)
}

// SectionsKey is the cache key for the sections under a course and year.
func SectionsKey(course, year string) string {
	return fmt.Sprintf("%ssections:%s/%s", directoryKeyPrefix, course, year)
}

// DirectoryCache keeps course, year and section listings in Redis so tree
// walks of the data directory stay off the hot path. A nil client turns
// every operation into a no-op.
type DirectoryCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDirectoryCache constructs the directory cache.
func NewDirectoryCache(client *redis.Client, logger *zap.Logger) *DirectoryCache {
	return &DirectoryCache{client: client, logger: logger}
}

// Listing returns the cached names stored under key, or ErrCacheMiss.
func (c *DirectoryCache) Listing(ctx context.Context, key string) ([]string, error) {
	if c.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("unmarshal listing for %s: %w", key, err)
	}
	return names, nil
}

// StoreListing caches the names under key with the given TTL.
func (c *DirectoryCache) StoreListing(ctx context.Context, key string, names []string, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	payload, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal listing for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached directory listing. Structural changes at any
// level can shift the listings below it, so the whole prefix goes.
func (c *DirectoryCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, directoryKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s*: %w", directoryKeyPrefix, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (c *DirectoryCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
