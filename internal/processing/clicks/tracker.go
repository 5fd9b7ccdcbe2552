package clicks

import (
	"context"
	"errors"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type linkFinder interface {
	FindBySlug(ctx context.Context, slug string) (*links.Link, error)
}

var _ links.ClickTracker = (*Tracker)(nil)

type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	IPSalt    string
}

// Tracker records redirect clicks off the request path. It satisfies
// links.ClickTracker.
type Tracker struct {
	links      linkFinder
	clicks     links.ClickRepository
	hasher     *IPHasher
	dispatcher *Dispatcher

	now   func() time.Time
	newID func() string
}

func NewTracker(linkRepo linkFinder, clickRepo links.ClickRepository, opts Options) *Tracker {
	return &Tracker{
		links:  linkRepo,
		clicks: clickRepo,
		hasher: NewIPHasher(opts.IPSalt),
		dispatcher: NewDispatcher(DispatcherOptions{
			Workers:     opts.Workers,
			QueueSize:   opts.QueueSize,
			TaskTimeout: opts.Timeout,
		}),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (t *Tracker) Track(slug string, meta links.RequestMetadata, linkID string) {
	accepted := t.dispatcher.Submit(func(ctx context.Context) {
		_ = t.Record(ctx, slug, meta, linkID)
	})
	if accepted {
		return
	}
	metrics.ClickEvents.WithLabelValues(metrics.ClickDropped).Inc()
	if t.dispatcher.Stopped() {
		logger.Warn("click tracker stopped, dropping event", zap.String("slug", slug))
		return
	}
	logger.Warn("click queue full, dropping event", zap.String("slug", slug))
}

// Record runs one click through filtering, hashing and persistence. The
// returned error is informational; Track discards it.
func (t *Tracker) Record(ctx context.Context, slug string, meta links.RequestMetadata, linkID string) error {
	ctx, span := otel.Tracer("clicks").Start(ctx, "clicks.Record")
	defer span.End()
	span.SetAttributes(attribute.String("link.slug", slug))

	ua := normalizeUserAgent(meta.UserAgent)
	if IsBot(ua) {
		metrics.ClickEvents.WithLabelValues(metrics.ClickBot).Inc()
		logger.Debug("ignoring bot click", zap.String("slug", slug), zap.String("user_agent", ua))
		return nil
	}

	if linkID == "" {
		link, err := t.links.FindBySlug(ctx, slug)
		if errors.Is(err, links.ErrNotFound) {
			metrics.ClickEvents.WithLabelValues(metrics.ClickUnknownSlug).Inc()
			logger.Debug("ignoring click for unknown slug", zap.String("slug", slug))
			return nil
		}
		if err != nil {
			return t.fail(slug, "resolve link for click", err)
		}
		linkID = link.ID
	}

	click := &links.ClickLog{
		ID:        t.newID(),
		LinkID:    linkID,
		IPHash:    t.hasher.Hash(ClientIP(meta.ForwardedFor)),
		UserAgent: ua,
		Timestamp: t.now().UTC(),
	}

	if err := t.clicks.RecordClick(ctx, click); err != nil {
		if errors.Is(err, links.ErrNotFound) {
			metrics.ClickEvents.WithLabelValues(metrics.ClickUnknownSlug).Inc()
			return nil
		}
		return t.fail(slug, "record click", err)
	}

	metrics.ClickEvents.WithLabelValues(metrics.ClickRecorded).Inc()
	return nil
}

func (t *Tracker) fail(slug, msg string, err error) error {
	metrics.ClickEvents.WithLabelValues(metrics.ClickFailed).Inc()
	logger.Warn("failed to "+msg, zap.Error(err), zap.String("slug", slug))
	return err
}

// Shutdown waits for queued clicks to be written.
func (t *Tracker) Shutdown(ctx context.Context) error {
	return t.dispatcher.Shutdown(ctx)
}

func (t *Tracker) Dropped() int64 {
	return t.dispatcher.Dropped()
}
