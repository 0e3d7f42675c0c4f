package energy

import (
	"context"

	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

// Store is the persistence contract shared by the gorm and mongo backends.
// List operations return an empty slice, never nil, when nothing matches;
// single-record lookups return nil without error.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	DeleteAllNILM(ctx context.Context) (int64, error)
	InsertNILMBatch(ctx context.Context, records []models.NILMRecord) error
	FindNILM(ctx context.Context, q models.NILMQuery) ([]models.NILMRecord, error)
	LatestNILM(ctx context.Context, filter models.SiteFilter) (*models.NILMRecord, error)
	NILMRange(ctx context.Context, filter models.SiteFilter) (*models.RangeResult, error)
	NILMStats(ctx context.Context) ([]models.SiteStats, error)
	NILMBreakdown(ctx context.Context) ([]models.SiteRange, error)

	DeleteAllPV(ctx context.Context) (int64, error)
	InsertPVBatch(ctx context.Context, records []models.PVRecord) error
	FindPV(ctx context.Context, q models.PVQuery) ([]models.PVRecord, error)
	LatestPV(ctx context.Context) (*models.PVRecord, error)
	CountPV(ctx context.Context) (int64, error)
	PVAtOffset(ctx context.Context, offset int64) (*models.PVRecord, error)
}
