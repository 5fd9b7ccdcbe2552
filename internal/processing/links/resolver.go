package links

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTimeout = 150 * time.Millisecond
	DefaultCacheTTL     = 24 * time.Hour
	DefaultStoreTimeout = 5 * time.Second
)

type ResolverOptions struct {
	CacheTimeout time.Duration
	CacheTTL     time.Duration
	// StoreTimeout bounds the shared store lookup, which runs detached from
	// any single request.
	StoreTimeout time.Duration
}

// Resolver maps slugs to destination URLs, reading the optional cache before
// the store and repopulating the cache after a store hit.
type Resolver struct {
	repo    LinkRepository
	cache   Cache
	tracker ClickTracker

	cacheTimeout time.Duration
	cacheTTL     time.Duration
	storeTimeout time.Duration

	lookups singleflight.Group
}

// NewResolver builds a resolver. cache and tracker may be nil.
func NewResolver(repo LinkRepository, cache Cache, tracker ClickTracker, opts ResolverOptions) *Resolver {
	if opts.CacheTimeout <= 0 {
		opts.CacheTimeout = DefaultCacheTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}

	return &Resolver{
		repo:         repo,
		cache:        cache,
		tracker:      tracker,
		cacheTimeout: opts.CacheTimeout,
		cacheTTL:     opts.CacheTTL,
		storeTimeout: opts.StoreTimeout,
	}
}

func (r *Resolver) Resolve(ctx context.Context, slug string, meta RequestMetadata) (*Resolution, error) {
	ctx, span := otel.Tracer("links").Start(ctx, "links.Resolve")
	defer span.End()

	slug = strings.TrimSpace(slug)
	span.SetAttributes(attribute.String("link.slug", slug))
	if slug == "" {
		return nil, ErrNotFound
	}

	if url, ok := r.fromCache(ctx, slug); ok {
		span.SetAttributes(attribute.Bool("link.cache_hit", true))
		r.track(slug, meta, "")
		return &Resolution{URL: url, FromCache: true}, nil
	}

	link, err := r.lookup(ctx, slug)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store lookup failed")
		}
		return nil, err
	}

	r.populate(slug, link.OriginalURL)
	r.track(slug, meta, link.ID)

	return &Resolution{URL: link.OriginalURL, LinkID: link.ID}, nil
}

func (r *Resolver) fromCache(ctx context.Context, slug string) (string, bool) {
	if r.cache == nil {
		return "", false
	}

	cacheCtx, cancel := context.WithTimeout(ctx, r.cacheTimeout)
	defer cancel()

	url, err := r.cache.Get(cacheCtx, slug)
	switch {
	case err == nil && url != "":
		metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
		return url, true
	case err == nil, errors.Is(err, ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		metrics.CacheLookups.WithLabelValues(metrics.CacheError).Inc()
		logger.Warn("cache read failed, falling back to store",
			zap.Error(err),
			zap.String("slug", slug),
		)
	}
	return "", false
}

// lookup collapses concurrent store reads for the same slug into one call.
// The shared call does not inherit the first caller's cancellation; each
// caller stops waiting when its own ctx ends.
func (r *Resolver) lookup(ctx context.Context, slug string) (*Link, error) {
	ch := r.lookups.DoChan(slug, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.storeTimeout)
		defer cancel()
		return r.repo.FindBySlug(lookupCtx, slug)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		link := *res.Val.(*Link)
		return &link, nil
	}
}

func (r *Resolver) populate(slug, url string) {
	if r.cache == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.cacheTimeout)
		defer cancel()

		if err := r.cache.Set(ctx, slug, url, r.cacheTTL); err != nil {
			metrics.CacheWrites.WithLabelValues(metrics.CacheError).Inc()
			logger.Warn("cache populate failed",
				zap.Error(err),
				zap.String("slug", slug),
			)
			return
		}
		metrics.CacheWrites.WithLabelValues(metrics.CacheStored).Inc()
	}()
}

func (r *Resolver) track(slug string, meta RequestMetadata, linkID string) {
	if r.tracker == nil || meta.SkipTracking {
		return
	}
	r.tracker.Track(slug, meta, linkID)
}
