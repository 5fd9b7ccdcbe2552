package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
)

//go:embed schema/001_init.sql
var initSchema string

// EnsureSchema creates the tables if they are missing. Every statement is
// idempotent.
func EnsureSchema(ctx context.Context, p *db.Postgres) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool is nil")
	}
	_, err := p.Pool.Exec(ctx, initSchema)
	return err
}
