// Query methods mirroring ../schema/queries.sql in sqlc layout. Edit both
// together; TestQueriesMatchSchemaFile checks the names stay aligned.

package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const claimNextOutboxEvent = `-- name: ClaimNextOutboxEvent :one
UPDATE click_outbox
SET status = 'processing',
    attempts = attempts + 1,
    processing_owner = $2,
    processing_expires_at = $3,
    updated_at = $1
WHERE id = (
    SELECT o.id
    FROM click_outbox o
    WHERE (o.status = 'pending' AND o.next_attempt_at <= $1)
       OR (o.status = 'processing' AND o.processing_expires_at < $1)
    ORDER BY o.next_attempt_at
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
RETURNING id, click_id, link_id, slug, ip_hash, user_agent, occurred_at,
    traceparent, tracestate, baggage, attempts
`

type ClaimNextOutboxEventParams struct {
	UpdatedAt           pgtype.Timestamptz
	ProcessingOwner     pgtype.Text
	ProcessingExpiresAt pgtype.Timestamptz
}

type ClaimNextOutboxEventRow struct {
	ID          pgtype.UUID
	ClickID     pgtype.UUID
	LinkID      pgtype.UUID
	Slug        string
	IpHash      string
	UserAgent   string
	OccurredAt  pgtype.Timestamptz
	Traceparent pgtype.Text
	Tracestate  pgtype.Text
	Baggage     pgtype.Text
	Attempts    int32
}

func (q *Queries) ClaimNextOutboxEvent(ctx context.Context, arg ClaimNextOutboxEventParams) (ClaimNextOutboxEventRow, error) {
	row := q.db.QueryRow(ctx, claimNextOutboxEvent, arg.UpdatedAt, arg.ProcessingOwner, arg.ProcessingExpiresAt)
	var i ClaimNextOutboxEventRow
	err := row.Scan(
		&i.ID,
		&i.ClickID,
		&i.LinkID,
		&i.Slug,
		&i.IpHash,
		&i.UserAgent,
		&i.OccurredAt,
		&i.Traceparent,
		&i.Tracestate,
		&i.Baggage,
		&i.Attempts,
	)
	return i, err
}

const countClickLogsByLink = `-- name: CountClickLogsByLink :one
SELECT count(*) FROM click_logs WHERE link_id = $1
`

func (q *Queries) CountClickLogsByLink(ctx context.Context, linkID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countClickLogsByLink, linkID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createLink = `-- name: CreateLink :exec
INSERT INTO links (id, slug, original_url, total_clicks, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateLinkParams struct {
	ID          pgtype.UUID
	Slug        string
	OriginalUrl string
	TotalClicks int64
	CreatedAt   pgtype.Timestamptz
}

func (q *Queries) CreateLink(ctx context.Context, arg CreateLinkParams) error {
	_, err := q.db.Exec(ctx, createLink,
		arg.ID,
		arg.Slug,
		arg.OriginalUrl,
		arg.TotalClicks,
		arg.CreatedAt,
	)
	return err
}

const enqueueClickOutbox = `-- name: EnqueueClickOutbox :exec
INSERT INTO click_outbox (
    event_type, click_id, link_id, slug, ip_hash, user_agent, occurred_at,
    traceparent, tracestate, baggage, status, next_attempt_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
`

type EnqueueClickOutboxParams struct {
	EventType     string
	ClickID       pgtype.UUID
	LinkID        pgtype.UUID
	Slug          string
	IpHash        string
	UserAgent     string
	OccurredAt    pgtype.Timestamptz
	Traceparent   pgtype.Text
	Tracestate    pgtype.Text
	Baggage       pgtype.Text
	Status        string
	NextAttemptAt pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
}

func (q *Queries) EnqueueClickOutbox(ctx context.Context, arg EnqueueClickOutboxParams) error {
	_, err := q.db.Exec(ctx, enqueueClickOutbox,
		arg.EventType,
		arg.ClickID,
		arg.LinkID,
		arg.Slug,
		arg.IpHash,
		arg.UserAgent,
		arg.OccurredAt,
		arg.Traceparent,
		arg.Tracestate,
		arg.Baggage,
		arg.Status,
		arg.NextAttemptAt,
		arg.CreatedAt,
	)
	return err
}

const getLinkBySlug = `-- name: GetLinkBySlug :one
SELECT id, slug, original_url, total_clicks, created_at
FROM links
WHERE slug = $1
`

func (q *Queries) GetLinkBySlug(ctx context.Context, slug string) (Link, error) {
	row := q.db.QueryRow(ctx, getLinkBySlug, slug)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.Slug,
		&i.OriginalUrl,
		&i.TotalClicks,
		&i.CreatedAt,
	)
	return i, err
}

const incrementLinkClicks = `-- name: IncrementLinkClicks :one
UPDATE links
SET total_clicks = total_clicks + 1
WHERE id = $1
RETURNING slug
`

func (q *Queries) IncrementLinkClicks(ctx context.Context, id pgtype.UUID) (string, error) {
	row := q.db.QueryRow(ctx, incrementLinkClicks, id)
	var slug string
	err := row.Scan(&slug)
	return slug, err
}

const insertClickLog = `-- name: InsertClickLog :exec
INSERT INTO click_logs (id, link_id, ip_hash, user_agent, clicked_at)
VALUES ($1, $2, $3, $4, $5)
`

type InsertClickLogParams struct {
	ID        pgtype.UUID
	LinkID    pgtype.UUID
	IpHash    string
	UserAgent string
	ClickedAt pgtype.Timestamptz
}

func (q *Queries) InsertClickLog(ctx context.Context, arg InsertClickLogParams) error {
	_, err := q.db.Exec(ctx, insertClickLog,
		arg.ID,
		arg.LinkID,
		arg.IpHash,
		arg.UserAgent,
		arg.ClickedAt,
	)
	return err
}

const linkExistsBySlug = `-- name: LinkExistsBySlug :one
SELECT EXISTS (SELECT 1 FROM links WHERE slug = $1)
`

func (q *Queries) LinkExistsBySlug(ctx context.Context, slug string) (bool, error) {
	row := q.db.QueryRow(ctx, linkExistsBySlug, slug)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const markOutboxRetry = `-- name: MarkOutboxRetry :execrows
UPDATE click_outbox
SET status = 'pending',
    last_error = $3,
    next_attempt_at = $4,
    updated_at = $5,
    processing_owner = NULL,
    processing_expires_at = NULL
WHERE id = $1 AND processing_owner = $2 AND status = 'processing'
`

type MarkOutboxRetryParams struct {
	ID              pgtype.UUID
	ProcessingOwner pgtype.Text
	LastError       pgtype.Text
	NextAttemptAt   pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

func (q *Queries) MarkOutboxRetry(ctx context.Context, arg MarkOutboxRetryParams) (int64, error) {
	result, err := q.db.Exec(ctx, markOutboxRetry,
		arg.ID,
		arg.ProcessingOwner,
		arg.LastError,
		arg.NextAttemptAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const markOutboxSent = `-- name: MarkOutboxSent :execrows
UPDATE click_outbox
SET status = 'sent',
    sent_at = $3,
    updated_at = $3,
    processing_owner = NULL,
    processing_expires_at = NULL
WHERE id = $1 AND processing_owner = $2 AND status = 'processing'
`

type MarkOutboxSentParams struct {
	ID              pgtype.UUID
	ProcessingOwner pgtype.Text
	SentAt          pgtype.Timestamptz
}

func (q *Queries) MarkOutboxSent(ctx context.Context, arg MarkOutboxSentParams) (int64, error) {
	result, err := q.db.Exec(ctx, markOutboxSent, arg.ID, arg.ProcessingOwner, arg.SentAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
