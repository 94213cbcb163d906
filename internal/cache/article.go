// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// articleKeyPrefix is the Valkey key prefix for cached articles.
	articleKeyPrefix = "article:"

	// DefaultArticleTTL is how long a rendered article response stays cached.
	DefaultArticleTTL = 5 * time.Minute
)

// ArticleCache stores encoded article responses keyed by slug. A nil
// *ArticleCache is valid and behaves as a cache that never hits, so callers
// can run without Valkey.
type ArticleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArticleCache creates an article cache backed by the given Valkey client.
func NewArticleCache(client *redis.Client, ttl time.Duration) *ArticleCache {
	if ttl <= 0 {
		ttl = DefaultArticleTTL
	}
	return &ArticleCache{client: client, ttl: ttl}
}

// Key returns the Valkey key for an article slug.
func Key(slug string) string {
	return articleKeyPrefix + slug
}

// Get returns the cached body for slug. Errors are logged and reported as a miss.
func (c *ArticleCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, Key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("article cache get error", "slug", slug, "error", err)
		return nil, false
	}
	slog.Debug("article cache hit", "slug", slug)
	return val, true
}

// Set stores body for slug with the configured TTL.
func (c *ArticleCache) Set(ctx context.Context, slug string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, Key(slug), body, c.ttl).Err(); err != nil {
		slog.Warn("article cache set error", "slug", slug, "error", err)
	}
}

// Invalidate removes a single article from the cache.
func (c *ArticleCache) Invalidate(ctx context.Context, slug string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, Key(slug)).Err(); err != nil {
		slog.Warn("article cache invalidate error", "slug", slug, "error", err)
		return
	}
	slog.Debug("article cache invalidated", "slug", slug)
}

// InvalidateAll removes every cached article by scanning for the prefix.
// Category writes use it since embedded category summaries may be stale.
func (c *ArticleCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := c.client.Scan(ctx, cursor, articleKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("article cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("article cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("article cache cleared", "deleted", deleted)
	}
}
