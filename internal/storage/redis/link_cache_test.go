package redis

import (
	"context"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "link:abc", Key("abc"))
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(Config{URL: "not a url"})
	require.Error(t, err)
}

// silentListener accepts connections and never answers.
func silentListener(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestLinkCache_GetHonoursContextDeadline(t *testing.T) {
	client, err := newClient(Config{Addr: silentListener(t), Timeout: 2 * time.Second})
	require.NoError(t, err)
	defer client.Close()

	cache := NewLinkCache(client)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = cache.Get(ctx, "abc")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.NotErrorIs(t, err, links.ErrCacheMiss)
	assert.Less(t, elapsed, time.Second)
}

func TestNew_StalledServerFailsFast(t *testing.T) {
	start := time.Now()
	_, err := New(Config{Addr: silentListener(t), Timeout: 100 * time.Millisecond, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLinkCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := New(Config{Addr: addr})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	cache := NewLinkCache(client)
	slug := "test-" + uuid.NewString()[:8]
	defer client.Del(ctx, Key(slug))

	_, err = cache.Get(ctx, slug)
	require.ErrorIs(t, err, links.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, slug, "https://example.com", 24*time.Hour))

	url, err := cache.Get(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", url)

	ttl, err := client.TTL(ctx, Key(slug)).Result()
	require.NoError(t, err)
	assert.InDelta(t, (24 * time.Hour).Seconds(), ttl.Seconds(), 5)
}
