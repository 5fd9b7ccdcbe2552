package links

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("link not found")
	ErrSlugTaken           = errors.New("slug taken")
	ErrGenerationExhausted = errors.New("failed to generate a unique slug")
	ErrCacheMiss           = errors.New("cache miss")
)

// ValidationError is a user-correctable problem with create input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	ErrMissingURL        = &ValidationError{Field: "originalUrl", Message: "Missing originalUrl"}
	ErrInvalidURL        = &ValidationError{Field: "originalUrl", Message: "Invalid URL format"}
	ErrInvalidSlugLength = &ValidationError{Field: "customSlug", Message: "Custom slug must be between 3 and 30 characters"}
	ErrInvalidSlugChars  = &ValidationError{Field: "customSlug", Message: "Custom slug may only contain letters, digits, '-' and '_'"}
)

type LinkRepository interface {
	Insert(ctx context.Context, link *Link) error
	FindBySlug(ctx context.Context, slug string) (*Link, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// ClickRepository persists a click log and bumps the owning link's counter
// as a single atomic unit. It returns ErrNotFound when the link is gone.
type ClickRepository interface {
	RecordClick(ctx context.Context, click *ClickLog) error
}

// Cache is the optional slug -> URL cache. Get returns ErrCacheMiss when the
// key is absent; any other error means the cache is unhealthy.
type Cache interface {
	Get(ctx context.Context, slug string) (string, error)
	Set(ctx context.Context, slug, url string, ttl time.Duration) error
}

// ClickTracker receives redirect events. Track must not block.
type ClickTracker interface {
	Track(slug string, meta RequestMetadata, linkID string)
}

type Slugger interface {
	Generate(length int) (string, error)
}
