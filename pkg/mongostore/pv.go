package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func (s *Store) DeleteAllPV(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.pv)
}

func (s *Store) InsertPVBatch(ctx context.Context, records []models.PVRecord) error {
	now := time.Now().UTC()
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = newPVDocument(r, now)
	}
	return insertOrdered(ctx, s.pv, docs)
}

func (s *Store) FindPV(ctx context.Context, q models.PVQuery) ([]models.PVRecord, error) {
	filter := bson.M{}

	bounds := bson.M{}
	if q.StartTime != nil {
		bounds["$gte"] = *q.StartTime
	}
	if q.EndTime != nil {
		bounds["$lte"] = *q.EndTime
	}
	if len(bounds) > 0 {
		filter["time"] = bounds
	}

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: direction(q.Sort)}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.pv.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []pvDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return common.Mapper(docs, pvDocument.record), nil
}

func (s *Store) findOnePV(ctx context.Context, opts *options.FindOneOptionsBuilder) (*models.PVRecord, error) {
	var doc pvDocument
	err := s.pv.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record := doc.record()
	return &record, nil
}

func (s *Store) LatestPV(ctx context.Context) (*models.PVRecord, error) {
	return s.findOnePV(ctx, options.FindOne().SetSort(bson.D{{Key: "time", Value: -1}}))
}

func (s *Store) CountPV(ctx context.Context) (int64, error) {
	return s.pv.CountDocuments(ctx, bson.M{})
}

func (s *Store) PVAtOffset(ctx context.Context, offset int64) (*models.PVRecord, error) {
	return s.findOnePV(ctx, options.FindOne().
		SetSort(bson.D{{Key: "time", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(offset))
}
