package db

import (
	"context"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

// Mongo wraps the MongoDB client and database
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

type MongoOptions struct {
	URI      string
	Database string
	AppName  string
	// Timeout bounds connect and the initial ping.
	Timeout time.Duration
}

// ConnectMongo establishes a connection to MongoDB with OpenTelemetry instrumentation.
// Click recording uses multi-document transactions, so the deployment must be
// a replica set or sharded cluster.
func ConnectMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(opts.URI).
		SetRetryWrites(true).
		SetMonitor(otelmongo.NewMonitor())
	if opts.AppName != "" {
		clientOptions.SetAppName(opts.AppName)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongo primary: %w", err)
	}

	m := &Mongo{
		Client:   client,
		Database: client.Database(opts.Database),
	}

	logger.Info("MongoDB connected", zap.String("database", opts.Database))
	return m, nil
}

// Disconnect closes the MongoDB connection
func (m *Mongo) Disconnect() error {
	if m == nil || m.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// Collection returns the specified collection
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// DropDatabase removes the whole database. Used by integration tests that
// create a throwaway database per run.
func (m *Mongo) DropDatabase(ctx context.Context) error {
	return m.Database.Drop(ctx)
}
