package energy

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
	_ "liyu1981.xyz/energy-dashboard-service/pkg/testing"
)

func TestRangeCountMatchesUnboundedList(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, e, _, _ := GetMockEnergyWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := context.Background()
	seedSite(t, e, models.BuildingOffice, models.LocationLA, 150, constant(1))
	seedSite(t, e, models.BuildingDealer, models.LocationTokyo, 20, constant(2))

	for _, b := range models.Buildings {
		for _, l := range models.Locations {
			filter := models.SiteFilter{Building: b, Location: l}

			res, err := e.NILM.Range(ctx, filter)
			require.NoError(t, err)

			records, err := e.NILM.List(ctx, ParseNILMQuery(NILMParams{
				Building: string(b),
				Location: string(l),
				Limit:    "0",
			}))
			require.NoError(t, err)

			assert.Equal(t, res.Count, int64(len(records)), "%s/%s", b, l)
			if res.Count == 0 {
				assert.Nil(t, res.Range)
				continue
			}

			latest, err := e.NILM.Latest(ctx, filter)
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.True(t, res.Range.MaxDate.Equal(latest.Timestamp))
		}
	}
}

func TestListWindowFromRange(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, e, _, _ := GetMockEnergyWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := context.Background()
	seedSite(t, e, models.BuildingOffice, models.LocationLA, 144, constant(1))

	filter := models.SiteFilter{Building: models.BuildingOffice, Location: models.LocationLA}
	res, err := e.NILM.Range(ctx, filter)
	require.NoError(t, err)
	require.NotNil(t, res.Range)

	start := res.Range.MaxDate.Add(-6 * time.Hour)
	records, err := e.NILM.List(ctx, models.NILMQuery{
		SiteFilter: filter,
		Start:      &start,
		End:        &res.Range.MaxDate,
		Sort:       models.SortAscending,
	})
	require.NoError(t, err)

	// 6h at 10 minute spacing, both ends inclusive
	assert.Len(t, records, 37)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Timestamp.Before(records[i-1].Timestamp))
	}
}

func TestListDefaultLimitAndUnbounded(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, e, _, _ := GetMockEnergyWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := context.Background()
	seedSite(t, e, models.BuildingLogistic, models.LocationOffenbach, 250, constant(1))

	records, err := e.NILM.List(ctx, ParseNILMQuery(NILMParams{}))
	require.NoError(t, err)
	assert.Len(t, records, models.DefaultLimit)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Timestamp.After(records[i-1].Timestamp))
	}

	records, err = e.NILM.List(ctx, ParseNILMQuery(NILMParams{Limit: "0"}))
	require.NoError(t, err)
	assert.Len(t, records, 250)

	records, err = e.NILM.List(ctx, ParseNILMQuery(NILMParams{Limit: "-5", Sort: "1"}))
	require.NoError(t, err)
	assert.Len(t, records, 250)
	assert.True(t, records[0].Timestamp.Equal(base))
}

func TestStatsMean(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, e, _, _ := GetMockEnergyWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := context.Background()

	stats, err := e.NILM.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)

	seedSite(t, e, models.BuildingDealer, models.LocationLA, 2, func(i int) float64 {
		return []float64{100, 300}[i]
	})

	stats, err = e.NILM.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.Equal(t, 200.0, stats[0].AvgAggregate)
}

func TestEmptyListLogsAvailableSites(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	ctrl, e, _, _ := GetMockEnergyWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := context.Background()
	seedSite(t, e, models.BuildingOffice, models.LocationTokyo, 3, constant(1))

	records, err := e.NILM.List(ctx, models.NILMQuery{
		SiteFilter: models.SiteFilter{Building: models.BuildingDealer},
	})
	require.NoError(t, err)
	assert.Empty(t, records)

	found := false
	for _, entry := range ParseLogs(&buf) {
		m := entry.(map[string]any)
		if m["msg"] != "No NILM records matched, available sites:" {
			continue
		}
		found = true
		assert.Equal(t, common.LoggerNameEnergyCore, m["logger"])
		assert.Equal(t, common.LoggerCategoryNILM, m["category"])
		sites := m["sites"].([]any)
		require.Len(t, sites, 1)
		assert.Equal(t, "Office", sites[0].(map[string]any)["building"])
	}
	assert.True(t, found, "expected available sites in logs")
}

func TestClearNILM(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, e, _, _ := GetMockEnergyWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ctx := context.Background()
	seedSite(t, e, models.BuildingOffice, models.LocationLA, 5, constant(1))

	deleted, err := e.NILM.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)

	latest, err := e.NILM.Latest(ctx, models.SiteFilter{})
	require.NoError(t, err)
	assert.Nil(t, latest)
}

type slowStore struct {
	Store
}

func (s slowStore) FindNILM(ctx context.Context, _ models.NILMQuery) ([]models.NILMRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type brokenStore struct {
	Store
}

var errStoreDown = errors.New("store down")

func (brokenStore) NILMRange(context.Context, models.SiteFilter) (*models.RangeResult, error) {
	return nil, errStoreDown
}

func TestQueryTimeout(t *testing.T) {
	common.SetTestLoggerNop()

	e := New(slowStore{}, 20*time.Millisecond)

	_, err := e.NILM.List(context.Background(), models.NILMQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryTimeout)
}

func TestStoreErrorIsNotTimeout(t *testing.T) {
	common.SetTestLoggerNop()

	e := New(brokenStore{}, time.Second)

	_, err := e.NILM.Range(context.Background(), models.SiteFilter{})
	require.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrQueryTimeout)
}
