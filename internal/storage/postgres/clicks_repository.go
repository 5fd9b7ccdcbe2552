package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/events"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/storage/postgres/sqlc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const outboxStatusPending = "pending"

type ClicksRepositoryOptions struct {
	// Outbox also writes a click.recorded outbox row in the same transaction.
	Outbox bool
}

// ClicksRepository writes the click log, the link counter and optionally the
// outbox row in one transaction.
type ClicksRepository struct {
	pool   *pgxpool.Pool
	outbox bool
}

func NewClicksRepository(p *db.Postgres, opts ClicksRepositoryOptions) (*ClicksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &ClicksRepository{pool: p.Pool, outbox: opts.Outbox}, nil
}

func (r *ClicksRepository) RecordClick(ctx context.Context, click *links.ClickLog) error {
	if click == nil {
		return errors.New("click is nil")
	}

	clickID, err := parsePgUUID(click.ID)
	if err != nil {
		return fmt.Errorf("click id: %w", err)
	}
	linkID, err := parsePgUUID(click.LinkID)
	if err != nil {
		return fmt.Errorf("link id: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	queries := sqlc.New(tx)

	slug, err := queries.IncrementLinkClicks(ctx, linkID)
	if errors.Is(err, pgx.ErrNoRows) {
		return links.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}

	if err := queries.InsertClickLog(ctx, sqlc.InsertClickLogParams{
		ID:        clickID,
		LinkID:    linkID,
		IpHash:    click.IPHash,
		UserAgent: click.UserAgent,
		ClickedAt: toTimestamptz(click.Timestamp),
	}); err != nil {
		return fmt.Errorf("insert click log: %w", err)
	}

	if r.outbox {
		if err := enqueueClick(ctx, queries, click, slug); err != nil {
			return fmt.Errorf("enqueue click outbox: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	tx = nil
	return nil
}

// CountClickLogs returns how many click rows exist for a link.
func (r *ClicksRepository) CountClickLogs(ctx context.Context, linkID string) (int64, error) {
	id, err := parsePgUUID(linkID)
	if err != nil {
		return 0, err
	}
	return sqlc.New(r.pool).CountClickLogsByLink(ctx, id)
}

func enqueueClick(ctx context.Context, queries *sqlc.Queries, click *links.ClickLog, slug string) error {
	clickID, err := parsePgUUID(click.ID)
	if err != nil {
		return err
	}
	linkID, err := parsePgUUID(click.LinkID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return queries.EnqueueClickOutbox(ctx, sqlc.EnqueueClickOutboxParams{
		EventType:     events.ClickRecordedType,
		ClickID:       clickID,
		LinkID:        linkID,
		Slug:          slug,
		IpHash:        click.IPHash,
		UserAgent:     click.UserAgent,
		OccurredAt:    toTimestamptz(click.Timestamp),
		Traceparent:   toNullableText(carrier.Get("traceparent")),
		Tracestate:    toNullableText(carrier.Get("tracestate")),
		Baggage:       toNullableText(carrier.Get("baggage")),
		Status:        outboxStatusPending,
		NextAttemptAt: toTimestamptz(now),
		CreatedAt:     toTimestamptz(now),
	})
}
