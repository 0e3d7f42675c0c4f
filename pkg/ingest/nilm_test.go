package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
	_ "liyu1981.xyz/energy-dashboard-service/pkg/testing"
)

func TestImportNILMDropsInvalidTimestamps(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Office", "Office_LA.csv"),
		nilmHeader,
		"0,100,1,1,1,1,1",
		",100,1,1,1,1,1",
		"soon,100,1,1,1,1,1",
		"1700000000,100,10,-20,30,40,50",
		"1700000600,abc,,NaN,Inf,2,3",
	)

	report, err := New(store).ImportNILM(context.Background(), dir)
	require.NoError(t, err)

	office := report.Files[0]
	assert.Equal(t, models.BuildingOffice, office.Building)
	assert.Equal(t, models.LocationLA, office.Location)
	assert.Equal(t, StatusSucceeded, office.Status)
	assert.Equal(t, 2, office.Records)
	assert.Equal(t, 3, office.Dropped)

	records, err := store.FindNILM(context.Background(), models.NILMQuery{Sort: models.SortAscending})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Timestamp.Equal(time.Unix(1700000000, 0)))
	assert.Equal(t, models.Appliances{EVSE: 10, PV: -20, CS: 30, CHP: 40, BA: 50}, records[0].Appliances)

	// unreadable and non-finite numerics become 0
	assert.Equal(t, 0.0, records[1].Aggregate)
	assert.Equal(t, models.Appliances{CHP: 2, BA: 3}, records[1].Appliances)
}

func TestImportNILMIgnoresExtraAndMissingColumns(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Dealer_Tokyo.csv"),
		"\ufeffTime,Aggregate,EVSE,Comment",
		"1700000000,42,7,not stored",
		`1700000060,"43",8,"broken "quote`,
	)

	report, err := New(store).ImportNILM(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(StatusSucceeded))

	records, err := store.FindNILM(context.Background(), models.NILMQuery{
		SiteFilter: models.SiteFilter{Building: models.BuildingDealer, Location: models.LocationTokyo},
		Sort:       models.SortAscending,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 42.0, records[0].Aggregate)
	assert.Equal(t, models.Appliances{EVSE: 7}, records[0].Appliances)
	assert.Equal(t, 43.0, records[1].Aggregate)
}

func TestImportNILMSkipsMissingCombinations(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Logistic", "Logistic_Offenbach.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 3)...)...)

	report, err := New(store).ImportNILM(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, report.Files, len(models.Buildings)*len(models.Locations))
	assert.Equal(t, 1, report.Count(StatusSucceeded))
	assert.Equal(t, 8, report.Count(StatusSkipped))
	assert.Equal(t, 0, report.Count(StatusFailed))
	assert.Equal(t, 3, report.Records())
	assert.False(t, report.Generated)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestImportNILMIsIdempotent(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Office", "Office_LA.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 120)...)...)
	writeFile(t, filepath.Join(dir, "Office", "Office_Tokyo.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 30)...)...)

	importer := New(store)
	ctx := context.Background()

	_, err := importer.ImportNILM(ctx, dir)
	require.NoError(t, err)
	firstStats, err := store.NILMStats(ctx)
	require.NoError(t, err)

	report, err := importer.ImportNILM(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, int64(150), report.Cleared)

	secondStats, err := store.NILMStats(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, firstStats, secondStats)
	assert.Equal(t, int64(150), countNILM(t, store, models.SiteFilter{}))
}

func TestImportNILMInsertsInOrderedBatches(t *testing.T) {
	common.SetTestLoggerNop()

	store := &recordingStore{DB: openStore(t)}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Office", "Office_LA.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 2500)...)...)

	report, err := New(store).ImportNILM(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []int{1000, 1000, 500}, store.nilmSizes)
	assert.Equal(t, 3, report.Files[0].Batches)
	assert.Equal(t, 2500, report.Files[0].Records)
	assert.Equal(t, int64(2500), countNILM(t, store.DB, models.SiteFilter{}))
}

func TestImportNILMFailedBatchKeepsEarlierBatches(t *testing.T) {
	common.SetTestLoggerNop()

	store := &recordingStore{DB: openStore(t), failOnCall: 2}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Office", "Office_LA.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 2500)...)...)
	writeFile(t, filepath.Join(dir, "Office", "Office_Offenbach.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 10)...)...)

	reg := prometheus.NewRegistry()
	importer := New(store)
	importer.Metrics = NewMetrics(reg)

	report, err := importer.ImportNILM(context.Background(), dir)
	require.NoError(t, err)

	la := report.Files[0]
	assert.Equal(t, StatusFailed, la.Status)
	assert.Equal(t, 1000, la.Records)
	assert.Equal(t, 1, la.Batches)
	assert.Contains(t, la.Error, errInjected.Error())

	offenbach := report.Files[1]
	assert.Equal(t, StatusSucceeded, offenbach.Status)
	assert.Equal(t, 10, offenbach.Records)

	assert.Equal(t, int64(1000), countNILM(t, store.DB, models.SiteFilter{Location: models.LocationLA}))
	assert.Equal(t, int64(10), countNILM(t, store.DB, models.SiteFilter{Location: models.LocationOffenbach}))

	assert.Equal(t, 1010.0, testutil.ToFloat64(importer.Metrics.recordsWritten.WithLabelValues("nilm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(importer.Metrics.files.WithLabelValues("nilm", "failed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(importer.Metrics.files.WithLabelValues("nilm", "skipped")))
}

func TestImportNILMAbortsWhenClearFails(t *testing.T) {
	common.SetTestLoggerNop()

	store := &recordingStore{DB: openStore(t), clearErr: errInjected}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Office", "Office_LA.csv"), append([]string{nilmHeader}, nilmRows(1700000000, 5)...)...)

	report, err := New(store).ImportNILM(context.Background(), dir)
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, report.Files)
	assert.Empty(t, store.nilmSizes)
}

func TestImportNILMGeneratesSampleWhenEmpty(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	importer := New(store)
	importer.SampleWhenEmpty = true
	importer.Now = func() time.Time { return now }

	report, err := importer.ImportNILM(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, report.Generated)
	assert.Equal(t, 144, report.Records())

	filter := models.SiteFilter{Building: models.BuildingOffice, Location: models.LocationLA}
	res, err := store.NILMRange(context.Background(), filter)
	require.NoError(t, err)
	require.NotNil(t, res.Range)
	assert.Equal(t, int64(144), res.Count)
	assert.True(t, res.Range.MaxDate.Equal(now.Add(-10*time.Minute)))
	assert.True(t, res.Range.MinDate.Equal(now.Add(-144*10*time.Minute)))
}

func TestImportNILMNoSampleWhenAnyFileExists(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Dealer", "Dealer_LA.csv"), nilmHeader, "0,1,1,1,1,1,1")

	importer := New(store)
	importer.SampleWhenEmpty = true

	report, err := importer.ImportNILM(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, report.Generated)
	assert.Equal(t, int64(0), countNILM(t, store, models.SiteFilter{}))
}

func TestGenerateSampleNILM(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	records := GenerateSampleNILM(now)
	require.Len(t, records, 144)

	for i, r := range records {
		assert.Equal(t, models.BuildingOffice, r.Building)
		assert.Equal(t, models.LocationLA, r.Location)
		if i > 0 {
			assert.Equal(t, 10*time.Minute, r.Timestamp.Sub(records[i-1].Timestamp))
		}
		assert.GreaterOrEqual(t, r.Appliances.CHP, 500.0)
		assert.LessOrEqual(t, r.Appliances.PV, 0.0)
	}
}

func TestNILMPathPrefersBuildingDirectory(t *testing.T) {
	dir := t.TempDir()

	_, ok := NILMPath(dir, models.BuildingOffice, models.LocationLA)
	assert.False(t, ok)

	flat := filepath.Join(dir, "Office_LA.csv")
	writeFile(t, flat, nilmHeader)
	path, ok := NILMPath(dir, models.BuildingOffice, models.LocationLA)
	assert.True(t, ok)
	assert.Equal(t, flat, path)

	nested := filepath.Join(dir, "Office", "Office_LA.csv")
	writeFile(t, nested, nilmHeader)
	path, ok = NILMPath(dir, models.BuildingOffice, models.LocationLA)
	assert.True(t, ok)
	assert.Equal(t, nested, path)
}

func TestConcurrentRunIsRejected(t *testing.T) {
	common.SetTestLoggerNop()

	importer := New(openStore(t))
	importer.mu.Lock()
	defer importer.mu.Unlock()

	_, err := importer.ImportNILM(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = importer.Clear(context.Background(), KindPV)
	assert.ErrorIs(t, err, ErrRunInProgress)
}
