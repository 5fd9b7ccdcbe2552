package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/storage/postgres/sqlc"
	"github.com/jackc/pgx/v5"
)

type LinksRepository struct {
	queries *sqlc.Queries
}

func NewLinksRepository(p *db.Postgres) (*LinksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &LinksRepository{queries: sqlc.New(p.Pool)}, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}

	id, err := parsePgUUID(link.ID)
	if err != nil {
		return fmt.Errorf("link id: %w", err)
	}

	err = r.queries.CreateLink(ctx, sqlc.CreateLinkParams{
		ID:          id,
		Slug:        link.Slug,
		OriginalUrl: link.OriginalURL,
		TotalClicks: link.TotalClicks,
		CreatedAt:   toTimestamptz(link.CreatedAt),
	})
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return links.ErrSlugTaken
	}
	return err
}

func (r *LinksRepository) FindBySlug(ctx context.Context, slug string) (*links.Link, error) {
	row, err := r.queries.GetLinkBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapLinkRow(row)
}

func (r *LinksRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return r.queries.LinkExistsBySlug(ctx, slug)
}

func mapLinkRow(row sqlc.Link) (*links.Link, error) {
	id, err := uuidStringFromPg(row.ID)
	if err != nil {
		return nil, err
	}

	return &links.Link{
		ID:          id,
		Slug:        row.Slug,
		OriginalURL: row.OriginalUrl,
		TotalClicks: row.TotalClicks,
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}, nil
}
