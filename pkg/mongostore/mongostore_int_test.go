package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

var _ energy.Store = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	common.SetTestLoggerNop()

	uri := os.Getenv("MONGODB_URI")
	if os.Getenv(common.EnvKeyRunIntegrationTests) != "true" || uri == "" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS or MONGODB_URI not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	database := "energy_test_" + uuid.NewString()[:8]
	store, err := New(ctx, client, database)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Database(database).Drop(context.Background())
		_ = store.Close()
	})
	return store
}

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestNILMRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []models.NILMRecord{}
	for i, aggregate := range []float64{100, 300} {
		records = append(records, models.NILMRecord{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Aggregate:  aggregate,
			Appliances: models.Appliances{EVSE: float64(i)},
			Building:   models.BuildingOffice,
			Location:   models.LocationTokyo,
		})
	}
	require.NoError(t, store.InsertNILMBatch(ctx, records))

	filter := models.SiteFilter{Building: models.BuildingOffice, Location: models.LocationTokyo}

	res, err := store.NILMRange(ctx, filter)
	require.NoError(t, err)
	require.NotNil(t, res.Range)
	assert.Equal(t, int64(2), res.Count)
	assert.True(t, res.Range.MinDate.Equal(base))

	latest, err := store.LatestNILM(ctx, filter)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Timestamp.Equal(res.Range.MaxDate))

	list, err := store.FindNILM(ctx, models.NILMQuery{SiteFilter: filter, Sort: models.SortAscending})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 100.0, list[0].Aggregate)

	stats, err := store.NILMStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 200.0, stats[0].AvgAggregate)
	assert.Equal(t, 0.5, stats[0].AvgEVSE)

	sites, err := store.NILMBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, time.Hour, sites[0].Span())

	empty, err := store.NILMRange(ctx, models.SiteFilter{Building: models.BuildingDealer})
	require.NoError(t, err)
	assert.Nil(t, empty.Range)

	deleted, err := store.DeleteAllNILM(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestPVRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []models.PVRecord{}
	for h := range 5 {
		records = append(records, models.PVRecord{
			Timestamp: base.Add(time.Duration(h) * time.Hour),
			Time:      int64(h * 100),
			P:         float64(h),
		})
	}
	require.NoError(t, store.InsertPVBatch(ctx, records))

	start, end := int64(100), int64(200)
	list, err := store.FindPV(ctx, models.PVQuery{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(200), list[0].Time)

	count, err := store.CountPV(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	at, err := store.PVAtOffset(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, int64(400), at.Time)

	latest, err := store.LatestPV(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(400), latest.Time)
}
