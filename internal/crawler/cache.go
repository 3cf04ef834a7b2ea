package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache stores fetched page HTML keyed by URL.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Set(ctx context.Context, url, html string) error
}

type RedisPageCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func pageKey(url string) string {
	return "page:" + url
}

func (c *RedisPageCache) Get(ctx context.Context, url string) (string, bool, error) {
	val, err := c.Client.Get(ctx, pageKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, url, html string) error {
	return c.Client.Set(ctx, pageKey(url), html, c.TTL).Err()
}
