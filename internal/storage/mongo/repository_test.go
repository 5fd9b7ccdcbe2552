package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestMongo(t *testing.T) *db.Mongo {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	m, err := db.ConnectMongo(context.Background(), db.MongoOptions{
		URI:      uri,
		Database: "shortlink_test_" + uuid.NewString()[:8],
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Skipf("Skipping test: mongo not available: %v", err)
	}
	t.Cleanup(func() {
		_ = m.DropDatabase(context.Background())
		_ = m.Disconnect()
	})
	return m
}

func TestMongoRepositories(t *testing.T) {
	m := setupTestMongo(t)
	ctx := context.Background()

	linksRepo, err := NewLinksRepository(m)
	require.NoError(t, err)
	clicksRepo, err := NewClicksRepository(m)
	require.NoError(t, err)

	link := &links.Link{
		ID:          uuid.NewString(),
		Slug:        "abc",
		OriginalURL: "https://example.com",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, linksRepo.Insert(ctx, link))
	require.ErrorIs(t, linksRepo.Insert(ctx, &links.Link{ID: uuid.NewString(), Slug: "abc"}), links.ErrSlugTaken)

	exists, err := linksRepo.ExistsBySlug(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, exists)

	for range 3 {
		require.NoError(t, clicksRepo.RecordClick(ctx, &links.ClickLog{
			ID:        uuid.NewString(),
			LinkID:    link.ID,
			IPHash:    "deadbeef",
			UserAgent: "test",
			Timestamp: time.Now(),
		}))
	}

	got, err := linksRepo.FindBySlug(ctx, "abc")
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.TotalClicks)
	assert.Equal(t, link.OriginalURL, got.OriginalURL)

	n, err := clicksRepo.CountClickLogs(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	err = clicksRepo.RecordClick(ctx, &links.ClickLog{ID: uuid.NewString(), LinkID: "missing"})
	require.ErrorIs(t, err, links.ErrNotFound)

	_, err = linksRepo.FindBySlug(ctx, "missing")
	require.ErrorIs(t, err, links.ErrNotFound)
}
