package links

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var testMeta = RequestMetadata{UserAgent: "Mozilla/5.0", ForwardedFor: "203.0.113.7"}

func storeWith(links ...*Link) (*mockLinkRepo, *atomic.Int32) {
	calls := &atomic.Int32{}
	bySlug := make(map[string]*Link, len(links))
	for _, l := range links {
		bySlug[l.Slug] = l
	}
	return &mockLinkRepo{
		findBySlugFn: func(_ context.Context, slug string) (*Link, error) {
			calls.Add(1)
			l, ok := bySlug[slug]
			if !ok {
				return nil, ErrNotFound
			}
			return l, nil
		},
	}, calls
}

func missCache() *mockCache {
	return newMockCache(func(context.Context, string) (string, error) { return "", ErrCacheMiss })
}

func TestResolve_StoreHitPopulatesCacheAndTracksWithID(t *testing.T) {
	repo, calls := storeWith(&Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"})
	cache := missCache()
	tracker := &mockTracker{}
	r := NewResolver(repo, cache, tracker, ResolverOptions{})

	res, err := r.Resolve(context.Background(), "abc", testMeta)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", res.URL)
	assert.Equal(t, "id-1", res.LinkID)
	assert.False(t, res.FromCache)
	assert.EqualValues(t, 1, calls.Load())

	select {
	case slug := <-cache.setCh:
		assert.Equal(t, "abc", slug)
	case <-time.After(time.Second):
		t.Fatal("cache was not populated")
	}

	clicks := tracker.all()
	require.Len(t, clicks, 1)
	assert.Equal(t, trackedClick{slug: "abc", meta: testMeta, linkID: "id-1"}, clicks[0])
}

func TestResolve_CacheHitSkipsStore(t *testing.T) {
	repo, calls := storeWith()
	cache := newMockCache(func(_ context.Context, slug string) (string, error) {
		return "https://cached.example.com", nil
	})
	tracker := &mockTracker{}
	r := NewResolver(repo, cache, tracker, ResolverOptions{})

	res, err := r.Resolve(context.Background(), "abc", testMeta)
	require.NoError(t, err)
	assert.Equal(t, "https://cached.example.com", res.URL)
	assert.True(t, res.FromCache)
	assert.Empty(t, res.LinkID)
	assert.Zero(t, calls.Load())

	clicks := tracker.all()
	require.Len(t, clicks, 1)
	assert.Empty(t, clicks[0].linkID)
}

func TestResolve_SkipTrackingRecordsNoClick(t *testing.T) {
	repo, _ := storeWith(&Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"})
	tracker := &mockTracker{}
	r := NewResolver(repo, nil, tracker, ResolverOptions{})

	meta := testMeta
	meta.SkipTracking = true
	res, err := r.Resolve(context.Background(), "abc", meta)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", res.URL)
	assert.Empty(t, tracker.all())
}

func TestResolve_NotFound(t *testing.T) {
	repo, _ := storeWith()
	cache := missCache()
	tracker := &mockTracker{}
	r := NewResolver(repo, cache, tracker, ResolverOptions{})

	_, err := r.Resolve(context.Background(), "doesnotexist", testMeta)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, tracker.all())
	assert.Empty(t, cache.setCh)
}

func TestResolve_EmptySlug(t *testing.T) {
	repo, calls := storeWith()
	r := NewResolver(repo, nil, nil, ResolverOptions{})

	_, err := r.Resolve(context.Background(), " ", testMeta)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, calls.Load())
}

func TestResolve_NoCacheConfigured(t *testing.T) {
	repo, calls := storeWith(&Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"})
	r := NewResolver(repo, nil, nil, ResolverOptions{})

	for range 3 {
		res, err := r.Resolve(context.Background(), "abc", testMeta)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", res.URL)
	}
	assert.EqualValues(t, 3, calls.Load())
}

func TestResolve_FailingCacheFallsBackToStore(t *testing.T) {
	repo, _ := storeWith(&Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"})
	cache := newMockCache(func(context.Context, string) (string, error) {
		return "", errors.New("dial tcp: connection refused")
	})
	r := NewResolver(repo, cache, nil, ResolverOptions{})

	res, err := r.Resolve(context.Background(), "abc", testMeta)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", res.URL)
}

func TestResolve_SlowCacheTimesOut(t *testing.T) {
	repo, _ := storeWith(&Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"})
	cache := newMockCache(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	r := NewResolver(repo, cache, nil, ResolverOptions{CacheTimeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := r.Resolve(context.Background(), "abc", testMeta)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", res.URL)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("store down")
	repo := &mockLinkRepo{
		findBySlugFn: func(context.Context, string) (*Link, error) { return nil, boom },
	}
	tracker := &mockTracker{}
	r := NewResolver(repo, missCache(), tracker, ResolverOptions{})

	_, err := r.Resolve(context.Background(), "abc", testMeta)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, tracker.all())
}

func TestResolve_ConcurrentMissesShareOneStoreCall(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	var entered sync.Once
	started := make(chan struct{})
	repo := &mockLinkRepo{
		findBySlugFn: func(context.Context, string) (*Link, error) {
			calls.Add(1)
			entered.Do(func() { close(started) })
			<-release
			return &Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"}, nil
		},
	}
	r := NewResolver(repo, nil, nil, ResolverOptions{})

	const callers = 8
	var g errgroup.Group
	first := make(chan struct{})
	g.Go(func() error {
		close(first)
		_, err := r.Resolve(context.Background(), "abc", testMeta)
		return err
	})
	<-first
	<-started

	for range callers - 1 {
		g.Go(func() error {
			res, err := r.Resolve(context.Background(), "abc", testMeta)
			if err != nil {
				return err
			}
			if res.URL != "https://example.com" {
				return errors.New("unexpected url " + res.URL)
			}
			return nil
		})
	}

	// give the followers time to join the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(release)

	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, calls.Load())
}

func TestResolve_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	repo := &mockLinkRepo{
		findBySlugFn: func(ctx context.Context, _ string) (*Link, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			select {
			case <-release:
				return &Link{ID: "id-1", Slug: "abc", OriginalURL: "https://example.com"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	r := NewResolver(repo, nil, nil, ResolverOptions{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(firstCtx, "abc", testMeta)
		firstErr <- err
	}()
	<-started

	type result struct {
		res *Resolution
		err error
	}
	second := make(chan result, 1)
	go func() {
		res, err := r.Resolve(context.Background(), "abc", testMeta)
		second <- result{res, err}
	}()
	// let the second caller join the in-flight lookup
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(release)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Equal(t, "https://example.com", got.res.URL)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestResolve_SharedLookupIsBounded(t *testing.T) {
	repo := &mockLinkRepo{
		findBySlugFn: func(ctx context.Context, _ string) (*Link, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	r := NewResolver(repo, nil, nil, ResolverOptions{StoreTimeout: 20 * time.Millisecond})

	_, err := r.Resolve(context.Background(), "abc", testMeta)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
