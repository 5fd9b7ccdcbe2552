package sqlc

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ClickLog struct {
	ID        pgtype.UUID
	LinkID    pgtype.UUID
	IpHash    string
	UserAgent string
	ClickedAt pgtype.Timestamptz
}

type ClickOutbox struct {
	ID                  pgtype.UUID
	EventType           string
	ClickID             pgtype.UUID
	LinkID              pgtype.UUID
	Slug                string
	IpHash              string
	UserAgent           string
	OccurredAt          pgtype.Timestamptz
	Traceparent         pgtype.Text
	Tracestate          pgtype.Text
	Baggage             pgtype.Text
	Status              string
	Attempts            int32
	NextAttemptAt       pgtype.Timestamptz
	ProcessingOwner     pgtype.Text
	ProcessingExpiresAt pgtype.Timestamptz
	LastError           pgtype.Text
	SentAt              pgtype.Timestamptz
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}

type Link struct {
	ID          pgtype.UUID
	Slug        string
	OriginalUrl string
	TotalClicks int64
	CreatedAt   pgtype.Timestamptz
}
