// Package upstash talks to an Upstash Redis REST endpoint. Commands are sent
// as JSON arrays and answered with {"result": ...} or {"error": "..."}.
package upstash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/storage/redis"
	"github.com/IgorGrieder/shortlink/pkg/httpclient"
)

// placeholderMarker appears in the sample credentials shipped in example env files.
const placeholderMarker = "upstash-redis-"

var ErrNotConfigured = errors.New("upstash credentials not configured")

type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Configured reports whether the credentials look real.
func (c Config) Configured() bool {
	if c.URL == "" || c.Token == "" {
		return false
	}
	return !strings.Contains(c.URL, placeholderMarker) && !strings.Contains(c.Token, placeholderMarker)
}

type Cache struct {
	endpoint string
	token    string
	http     *httpclient.Client
}

func NewCache(cfg Config) (*Cache, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	return &Cache{
		endpoint: strings.TrimRight(cfg.URL, "/"),
		token:    cfg.Token,
		// cache calls sit on the redirect path, so no retries; the breaker
		// keeps an unreachable endpoint from costing a timeout per request.
		http: httpclient.NewClient(httpclient.Options{
			Timeout:     cfg.Timeout,
			MaxRetries:  0,
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		}),
	}, nil
}

type commandResponse struct {
	Result *string `json:"result"`
	Error  string  `json:"error"`
}

func (c *Cache) Get(ctx context.Context, slug string) (string, error) {
	res, err := c.do(ctx, "GET", redis.Key(slug))
	if err != nil {
		return "", err
	}
	if res.Result == nil {
		return "", links.ErrCacheMiss
	}
	return *res.Result, nil
}

func (c *Cache) Set(ctx context.Context, slug, url string, ttl time.Duration) error {
	args := []string{"SET", redis.Key(slug), url}
	if secs := int64(ttl / time.Second); secs > 0 {
		args = append(args, "EX", strconv.FormatInt(secs, 10))
	}

	_, err := c.do(ctx, args...)
	return err
}

func (c *Cache) do(ctx context.Context, args ...string) (*commandResponse, error) {
	resp, err := c.http.Post(ctx, c.endpoint, args, map[string]string{
		"Authorization": "Bearer " + c.token,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upstash response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upstash %s: %s", args[0], out.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstash %s: unexpected status %d", args[0], resp.StatusCode)
	}
	return &out, nil
}
