package redis

import (
	"context"
	"errors"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	goredis "github.com/redis/go-redis/v9"
)

const KeyPrefix = "link:"

// LinkCache stores slug -> destination URL under link:<slug>.
type LinkCache struct {
	client goredis.Cmdable
}

func NewLinkCache(client goredis.Cmdable) *LinkCache {
	return &LinkCache{client: client}
}

func (c *LinkCache) Get(ctx context.Context, slug string) (string, error) {
	url, err := c.client.Get(ctx, Key(slug)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", links.ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

func (c *LinkCache) Set(ctx context.Context, slug, url string, ttl time.Duration) error {
	return c.client.Set(ctx, Key(slug), url, ttl).Err()
}

func Key(slug string) string {
	return KeyPrefix + slug
}
