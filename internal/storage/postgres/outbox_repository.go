package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/storage/postgres/sqlc"
	"github.com/jackc/pgx/v5"
)

var ErrOutboxEventNotOwned = errors.New("outbox event not owned by worker")

type ClickOutboxRepository struct {
	queries *sqlc.Queries
}

type OutboxClickEvent struct {
	ID          string
	ClickID     string
	LinkID      string
	Slug        string
	IPHash      string
	UserAgent   string
	OccurredAt  time.Time
	TraceParent string
	TraceState  string
	Baggage     string
	Attempts    int
}

func NewClickOutboxRepository(p *db.Postgres) (*ClickOutboxRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &ClickOutboxRepository{queries: sqlc.New(p.Pool)}, nil
}

func (r *ClickOutboxRepository) ClaimPending(
	ctx context.Context,
	now time.Time,
	limit int64,
	workerID string,
	lease time.Duration,
) ([]OutboxClickEvent, error) {
	if limit <= 0 {
		limit = 1
	}
	if lease <= 0 {
		lease = 30 * time.Second
	}
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, errors.New("workerID must not be empty")
	}

	now = now.UTC()
	events := make([]OutboxClickEvent, 0, limit)
	for int64(len(events)) < limit {
		row, err := r.queries.ClaimNextOutboxEvent(ctx, sqlc.ClaimNextOutboxEventParams{
			UpdatedAt:           toTimestamptz(now),
			ProcessingOwner:     toNullableText(workerID),
			ProcessingExpiresAt: toTimestamptz(now.Add(lease)),
		})
		if errors.Is(err, pgx.ErrNoRows) {
			break
		}
		if err != nil {
			return nil, err
		}

		ev, err := mapOutboxRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}

func (r *ClickOutboxRepository) MarkSent(ctx context.Context, id string, workerID string) error {
	pgID, err := parsePgUUID(id)
	if err != nil {
		return err
	}
	rows, err := r.queries.MarkOutboxSent(ctx, sqlc.MarkOutboxSentParams{
		ID:              pgID,
		ProcessingOwner: toNullableText(workerID),
		SentAt:          toTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOutboxEventNotOwned
	}
	return nil
}

func (r *ClickOutboxRepository) MarkRetry(
	ctx context.Context,
	id string,
	workerID string,
	lastError string,
	nextAttemptAt time.Time,
) error {
	pgID, err := parsePgUUID(id)
	if err != nil {
		return err
	}
	rows, err := r.queries.MarkOutboxRetry(ctx, sqlc.MarkOutboxRetryParams{
		ID:              pgID,
		ProcessingOwner: toNullableText(workerID),
		LastError:       toNullableText(lastError),
		NextAttemptAt:   toTimestamptz(nextAttemptAt),
		UpdatedAt:       toTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOutboxEventNotOwned
	}
	return nil
}

func mapOutboxRow(row sqlc.ClaimNextOutboxEventRow) (OutboxClickEvent, error) {
	id, err := uuidStringFromPg(row.ID)
	if err != nil {
		return OutboxClickEvent{}, err
	}
	clickID, err := uuidStringFromPg(row.ClickID)
	if err != nil {
		return OutboxClickEvent{}, err
	}
	linkID, err := uuidStringFromPg(row.LinkID)
	if err != nil {
		return OutboxClickEvent{}, err
	}

	return OutboxClickEvent{
		ID:          id,
		ClickID:     clickID,
		LinkID:      linkID,
		Slug:        row.Slug,
		IPHash:      row.IpHash,
		UserAgent:   row.UserAgent,
		OccurredAt:  row.OccurredAt.Time.UTC(),
		TraceParent: nullableTextValue(row.Traceparent),
		TraceState:  nullableTextValue(row.Tracestate),
		Baggage:     nullableTextValue(row.Baggage),
		Attempts:    int(row.Attempts),
	}, nil
}
