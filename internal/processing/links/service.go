package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// slugs that would shadow fixed routes.
var reservedSlugs = map[string]struct{}{
	"api":     {},
	"health":  {},
	"metrics": {},
}

type ServiceOptions struct {
	BaseURL     string
	SlugLength  int
	MaxRetries  int
	GrowthEvery int
}

type Service struct {
	linkRepo  LinkRepository
	generator *Generator

	baseURL    string
	slugLength int
	maxRetries int

	now   func() time.Time
	newID func() string
}

func NewService(linkRepo LinkRepository, slugger Slugger, opts ServiceOptions) *Service {
	if opts.SlugLength <= 0 {
		opts.SlugLength = DefaultSlugLength
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultSlugRetries
	}

	return &Service{
		linkRepo:   linkRepo,
		generator:  NewGenerator(linkRepo, slugger, opts.GrowthEvery),
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		slugLength: opts.SlugLength,
		maxRetries: opts.MaxRetries,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*CreatedLink, error) {
	originalURL, err := validateURL(in.OriginalURL)
	if err != nil {
		return nil, err
	}

	link := &Link{
		ID:          s.newID(),
		OriginalURL: originalURL,
		CreatedAt:   s.now().UTC(),
	}

	if custom := strings.TrimSpace(in.CustomSlug); custom != "" {
		err = s.insertCustom(ctx, link, custom)
	} else {
		err = s.insertGenerated(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	return &CreatedLink{Link: link, ShortURL: s.ShortURL(link.Slug)}, nil
}

func (s *Service) insertCustom(ctx context.Context, link *Link, slug string) error {
	if err := validateCustomSlug(slug); err != nil {
		return err
	}
	if _, reserved := reservedSlugs[strings.ToLower(slug)]; reserved {
		return ErrSlugTaken
	}

	taken, err := s.linkRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("check custom slug: %w", err)
	}
	if taken {
		return ErrSlugTaken
	}

	link.Slug = slug
	// a concurrent writer may still win; the store reports that as ErrSlugTaken.
	return s.linkRepo.Insert(ctx, link)
}

func (s *Service) insertGenerated(ctx context.Context, link *Link) error {
	// one extra regenerate-and-write cycle when the store rejects the slug.
	const writeCycles = 2
	for cycle := range writeCycles {
		slug, err := s.generator.Generate(ctx, s.slugLength, s.maxRetries)
		if err != nil {
			return err
		}
		link.Slug = slug

		err = s.linkRepo.Insert(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return err
		}

		metrics.SlugCollisions.Inc()
		logger.Warn("generated slug lost write race",
			zap.String("slug", slug),
			zap.Int("cycle", cycle+1),
		)
	}

	return ErrGenerationExhausted
}

func (s *Service) GetLink(ctx context.Context, slug string) (*Link, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrNotFound
	}

	return s.linkRepo.FindBySlug(ctx, slug)
}

func (s *Service) ShortURL(slug string) string {
	return s.baseURL + "/" + slug
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}

	return raw, nil
}

func validateCustomSlug(slug string) error {
	if len(slug) < MinSlugLength || len(slug) > MaxSlugLength {
		return ErrInvalidSlugLength
	}
	for i := 0; i < len(slug); i++ {
		if !isSlugChar(slug[i]) {
			return ErrInvalidSlugChars
		}
	}
	return nil
}

func isSlugChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
