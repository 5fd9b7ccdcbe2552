package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const linksCollectionName = "links"

type LinksRepository struct {
	coll *mongo.Collection
}

type linkDoc struct {
	ID          string    `bson:"_id"`
	Slug        string    `bson:"slug"`
	OriginalURL string    `bson:"originalUrl"`
	TotalClicks int64     `bson:"totalClicks"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func NewLinksRepository(m *db.Mongo) (*LinksRepository, error) {
	repo := &LinksRepository{coll: m.Collection(linksCollectionName)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_slug"),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	doc := linkDoc{
		ID:          link.ID,
		Slug:        link.Slug,
		OriginalURL: link.OriginalURL,
		TotalClicks: link.TotalClicks,
		CreatedAt:   link.CreatedAt.UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return links.ErrSlugTaken
	}
	return err
}

func (r *LinksRepository) FindBySlug(ctx context.Context, slug string) (*links.Link, error) {
	var doc linkDoc
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapLinkDoc(doc), nil
}

func (r *LinksRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func mapLinkDoc(doc linkDoc) *links.Link {
	return &links.Link{
		ID:          doc.ID,
		Slug:        doc.Slug,
		OriginalURL: doc.OriginalURL,
		TotalClicks: doc.TotalClicks,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
}
