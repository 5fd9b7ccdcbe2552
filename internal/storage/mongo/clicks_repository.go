package mongo

import (
	"context"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const clickLogsCollectionName = "click_logs"

// ClicksRepository needs a replica set: the log insert and the counter bump
// share a multi-document transaction.
type ClicksRepository struct {
	client *mongo.Client
	links  *mongo.Collection
	logs   *mongo.Collection
}

type clickLogDoc struct {
	ID        string    `bson:"_id"`
	LinkID    string    `bson:"linkId"`
	IPHash    string    `bson:"ipHash"`
	UserAgent string    `bson:"userAgent"`
	Timestamp time.Time `bson:"timestamp"`
}

func NewClicksRepository(m *db.Mongo) (*ClicksRepository, error) {
	repo := &ClicksRepository{
		client: m.Client,
		links:  m.Collection(linksCollectionName),
		logs:   m.Collection(clickLogsCollectionName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "linkId", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("linkId_timestamp"),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *ClicksRepository) RecordClick(ctx context.Context, click *links.ClickLog) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		res, err := r.links.UpdateOne(sc,
			bson.M{"_id": click.LinkID},
			bson.M{"$inc": bson.M{"totalClicks": 1}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, links.ErrNotFound
		}

		_, err = r.logs.InsertOne(sc, clickLogDoc{
			ID:        click.ID,
			LinkID:    click.LinkID,
			IPHash:    click.IPHash,
			UserAgent: click.UserAgent,
			Timestamp: click.Timestamp.UTC(),
		})
		return nil, err
	})
	return err
}

// CountClickLogs returns how many click rows exist for a link.
func (r *ClicksRepository) CountClickLogs(ctx context.Context, linkID string) (int64, error) {
	return r.logs.CountDocuments(ctx, bson.M{"linkId": linkID})
}
