package links

import (
	"context"
	"errors"
	"sync"
	"time"
)

type mockLinkRepo struct {
	insertFn     func(ctx context.Context, link *Link) error
	findBySlugFn func(ctx context.Context, slug string) (*Link, error)
	existsFn     func(ctx context.Context, slug string) (bool, error)
}

func (m *mockLinkRepo) Insert(ctx context.Context, link *Link) error {
	if m.insertFn == nil {
		return nil
	}
	return m.insertFn(ctx, link)
}

func (m *mockLinkRepo) FindBySlug(ctx context.Context, slug string) (*Link, error) {
	if m.findBySlugFn == nil {
		return nil, ErrNotFound
	}
	return m.findBySlugFn(ctx, slug)
}

func (m *mockLinkRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if m.existsFn == nil {
		return false, nil
	}
	return m.existsFn(ctx, slug)
}

// mockSlugger hands out slugs in order and remembers the lengths it was asked for.
type mockSlugger struct {
	slugs   []string
	idx     int
	lengths []int
}

func (m *mockSlugger) Generate(length int) (string, error) {
	m.lengths = append(m.lengths, length)
	if m.idx >= len(m.slugs) {
		return "", errors.New("no more slugs")
	}
	s := m.slugs[m.idx]
	m.idx++
	return s, nil
}

type mockCache struct {
	mu    sync.Mutex
	getFn func(ctx context.Context, slug string) (string, error)
	sets  map[string]string
	setCh chan string
}

func newMockCache(getFn func(ctx context.Context, slug string) (string, error)) *mockCache {
	return &mockCache{getFn: getFn, sets: map[string]string{}, setCh: make(chan string, 8)}
}

func (m *mockCache) Get(ctx context.Context, slug string) (string, error) {
	return m.getFn(ctx, slug)
}

func (m *mockCache) Set(_ context.Context, slug, url string, _ time.Duration) error {
	m.mu.Lock()
	m.sets[slug] = url
	m.mu.Unlock()
	m.setCh <- slug
	return nil
}

type trackedClick struct {
	slug   string
	meta   RequestMetadata
	linkID string
}

type mockTracker struct {
	mu     sync.Mutex
	clicks []trackedClick
}

func (m *mockTracker) Track(slug string, meta RequestMetadata, linkID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, trackedClick{slug: slug, meta: meta, linkID: linkID})
}

func (m *mockTracker) all() []trackedClick {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trackedClick(nil), m.clicks...)
}
