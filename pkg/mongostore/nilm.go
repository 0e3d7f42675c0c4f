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

func siteMatch(filter models.SiteFilter) bson.M {
	match := bson.M{}
	if filter.Building != "" {
		match["building"] = string(filter.Building)
	}
	if filter.Location != "" {
		match["location"] = string(filter.Location)
	}
	return match
}

func (s *Store) DeleteAllNILM(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.nilm)
}

func (s *Store) InsertNILMBatch(ctx context.Context, records []models.NILMRecord) error {
	now := time.Now().UTC()
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = newNILMDocument(r, now)
	}
	return insertOrdered(ctx, s.nilm, docs)
}

func (s *Store) FindNILM(ctx context.Context, q models.NILMQuery) ([]models.NILMRecord, error) {
	filter := siteMatch(q.SiteFilter)

	bounds := bson.M{}
	if q.Start != nil {
		bounds["$gte"] = q.Start.UTC()
	}
	if q.End != nil {
		bounds["$lte"] = q.End.UTC()
	}
	if len(bounds) > 0 {
		filter["timestamp"] = bounds
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: direction(q.Sort)}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.nilm.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []nilmDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return common.Mapper(docs, nilmDocument.record), nil
}

func (s *Store) LatestNILM(ctx context.Context, filter models.SiteFilter) (*models.NILMRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var doc nilmDocument
	err := s.nilm.FindOne(ctx, siteMatch(filter), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record := doc.record()
	return &record, nil
}

type rangeDocument struct {
	Count   int64     `bson:"count"`
	MinDate time.Time `bson:"minDate"`
	MaxDate time.Time `bson:"maxDate"`
}

// NILMRange computes count, min and max in a single $group.
func (s *Store) NILMRange(ctx context.Context, filter models.SiteFilter) (*models.RangeResult, error) {
	pipeline := []bson.M{
		{"$match": siteMatch(filter)},
		{"$group": bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"minDate": bson.M{"$min": "$timestamp"},
			"maxDate": bson.M{"$max": "$timestamp"},
		}},
	}

	cursor, err := s.nilm.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []rangeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	if len(docs) == 0 || docs[0].Count == 0 {
		return &models.RangeResult{}, nil
	}
	return &models.RangeResult{
		Count: docs[0].Count,
		Range: &models.TimeRange{
			MinDate: docs[0].MinDate.UTC(),
			MaxDate: docs[0].MaxDate.UTC(),
		},
	}, nil
}

type statsDocument struct {
	Building     string  `bson:"building"`
	Location     string  `bson:"location"`
	Count        int64   `bson:"count"`
	AvgAggregate float64 `bson:"avgAggregate"`
	AvgEVSE      float64 `bson:"avgEVSE"`
	AvgPV        float64 `bson:"avgPV"`
	AvgCS        float64 `bson:"avgCS"`
	AvgCHP       float64 `bson:"avgCHP"`
	AvgBA        float64 `bson:"avgBA"`
}

func (s *Store) NILMStats(ctx context.Context) ([]models.SiteStats, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id": bson.M{
				"building": "$building",
				"location": "$location",
			},
			"count":        bson.M{"$sum": 1},
			"avgAggregate": bson.M{"$avg": "$aggregate"},
			"avgEVSE":      bson.M{"$avg": "$appliances.EVSE"},
			"avgPV":        bson.M{"$avg": "$appliances.PV"},
			"avgCS":        bson.M{"$avg": "$appliances.CS"},
			"avgCHP":       bson.M{"$avg": "$appliances.CHP"},
			"avgBA":        bson.M{"$avg": "$appliances.BA"},
		}},
		{"$project": bson.M{
			"_id":          0,
			"building":     "$_id.building",
			"location":     "$_id.location",
			"count":        1,
			"avgAggregate": 1,
			"avgEVSE":      1,
			"avgPV":        1,
			"avgCS":        1,
			"avgCHP":       1,
			"avgBA":        1,
		}},
	}

	cursor, err := s.nilm.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []statsDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	stats := make([]models.SiteStats, 0, len(docs))
	for _, d := range docs {
		stats = append(stats, models.SiteStats{
			Building:     models.Building(d.Building),
			Location:     models.Location(d.Location),
			Count:        d.Count,
			AvgAggregate: d.AvgAggregate,
			AvgEVSE:      d.AvgEVSE,
			AvgPV:        d.AvgPV,
			AvgCS:        d.AvgCS,
			AvgCHP:       d.AvgCHP,
			AvgBA:        d.AvgBA,
		})
	}
	return stats, nil
}

type siteRangeDocument struct {
	Building string    `bson:"building"`
	Location string    `bson:"location"`
	Count    int64     `bson:"count"`
	MinDate  time.Time `bson:"minDate"`
	MaxDate  time.Time `bson:"maxDate"`
}

func (s *Store) NILMBreakdown(ctx context.Context) ([]models.SiteRange, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id": bson.M{
				"building": "$building",
				"location": "$location",
			},
			"count":   bson.M{"$sum": 1},
			"minDate": bson.M{"$min": "$timestamp"},
			"maxDate": bson.M{"$max": "$timestamp"},
		}},
		{"$sort": bson.D{
			{Key: "_id.building", Value: 1},
			{Key: "_id.location", Value: 1},
		}},
		{"$project": bson.M{
			"_id":      0,
			"building": "$_id.building",
			"location": "$_id.location",
			"count":    1,
			"minDate":  1,
			"maxDate":  1,
		}},
	}

	cursor, err := s.nilm.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []siteRangeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	sites := make([]models.SiteRange, 0, len(docs))
	for _, d := range docs {
		sites = append(sites, models.SiteRange{
			Building: models.Building(d.Building),
			Location: models.Location(d.Location),
			Count:    d.Count,
			MinDate:  d.MinDate.UTC(),
			MaxDate:  d.MaxDate.UTC(),
		})
	}
	return sites, nil
}
