package links

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	MinSlugLength      = 3
	MaxSlugLength      = 30
	DefaultSlugLength  = 6
	DefaultSlugRetries = 5
	DefaultGrowthEvery = 2
)

// bytes at or above this value are rejected so every symbol is equally likely.
const maxUnbiasedByte = 256 - 256%len(base62Alphabet)

type CryptoSlugger struct{}

func NewCryptoSlugger() *CryptoSlugger { return &CryptoSlugger{} }

func (s *CryptoSlugger) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultSlugLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, base62Alphabet[int(b)%len(base62Alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

type slugChecker interface {
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// Generator allocates random slugs that are not yet present in the store.
// The existence check is advisory: the store's unique index stays the source
// of truth and callers must still handle ErrSlugTaken on insert.
type Generator struct {
	repo        slugChecker
	slugger     Slugger
	growthEvery int
}

func NewGenerator(repo slugChecker, slugger Slugger, growthEvery int) *Generator {
	if growthEvery <= 0 {
		growthEvery = DefaultGrowthEvery
	}
	return &Generator{
		repo:        repo,
		slugger:     slugger,
		growthEvery: growthEvery,
	}
}

// Generate tries up to maxRetries candidates, adding one character to the
// candidate length every growthEvery attempts.
func (g *Generator) Generate(ctx context.Context, baseLength, maxRetries int) (string, error) {
	if baseLength <= 0 {
		baseLength = DefaultSlugLength
	}
	if maxRetries <= 0 {
		maxRetries = DefaultSlugRetries
	}

	for attempt := range maxRetries {
		candidate, err := g.slugger.Generate(g.LengthFor(baseLength, attempt))
		if err != nil {
			return "", fmt.Errorf("generate slug candidate: %w", err)
		}

		taken, err := g.repo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug candidate: %w", err)
		}
		if !taken {
			return candidate, nil
		}

		metrics.SlugCollisions.Inc()
		logger.Debug("slug candidate already taken",
			zap.String("slug", candidate),
			zap.Int("attempt", attempt+1),
		)
	}

	return "", ErrGenerationExhausted
}

// LengthFor returns the candidate length used on the given zero-based attempt.
func (g *Generator) LengthFor(baseLength, attempt int) int {
	n := baseLength + attempt/g.growthEvery
	if n > MaxSlugLength {
		return MaxSlugLength
	}
	return n
}
