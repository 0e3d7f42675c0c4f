package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

const (
	nilmCollection = "nilmdatas"
	pvCollection   = "pvdatas"
)

// Store keeps NILM and PV readings in two MongoDB collections.
type Store struct {
	client *mongo.Client
	nilm   *mongo.Collection
	pv     *mongo.Collection
}

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// New binds the collections of database and makes sure the query indexes
// exist.
func New(ctx context.Context, client *mongo.Client, database string) (*Store, error) {
	logger := common.GetLoggerWith(common.LoggerNameStore)

	db := client.Database(database)
	s := &Store{
		client: client,
		nilm:   db.Collection(nilmCollection),
		pv:     db.Collection(pvCollection),
	}

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.nilm.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "building", Value: 1},
			{Key: "location", Value: 1},
			{Key: "timestamp", Value: 1},
		},
	}); err != nil {
		return nil, fmt.Errorf("create %s index: %w", nilmCollection, err)
	}

	if _, err := s.pv.Indexes().CreateMany(indexCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create %s indexes: %w", pvCollection, err)
	}

	logger.Info("Connected to MongoDB store", zap.String("database", database))

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func direction(sort models.SortOrder) int {
	if sort == models.SortAscending {
		return 1
	}
	return -1
}

func deleteAll(ctx context.Context, c *mongo.Collection) (int64, error) {
	res, err := c.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func insertOrdered(ctx context.Context, c *mongo.Collection, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}
