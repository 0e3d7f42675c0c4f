package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

const pvHeader = "time,P,Gb(i),Gd(i),T2m,Gt"

func TestImportPV(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	path := filepath.Join(t.TempDir(), "Irr_temp.csv")
	writeFile(t, path,
		pvHeader,
		"0,0,0,0,12.5,0",
		"1,150.2,300,80,13,380",
		"x,1,1,1,1,1",
		",1,1,1,1,1",
		"2,bad,1,1,14,400",
	)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	importer := New(store)
	importer.PVBase = base

	report, err := importer.ImportPV(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, StatusSucceeded, report.Files[0].Status)
	assert.Equal(t, 3, report.Files[0].Records)
	assert.Equal(t, 2, report.Files[0].Dropped)

	records, err := store.FindPV(context.Background(), models.PVQuery{Sort: models.SortAscending})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, int64(0), records[0].Time)
	assert.True(t, records[0].Timestamp.Equal(base))

	one := records[1]
	assert.True(t, one.Timestamp.Equal(base.Add(time.Hour)))
	assert.Equal(t, 150.2, one.P)
	assert.Equal(t, 300.0, one.GbI)
	assert.Equal(t, 80.0, one.GdI)
	assert.Equal(t, one.Gt, one.Irradiance)
	assert.Equal(t, one.T2m, one.Temperature)

	assert.Equal(t, 0.0, records[2].P)
}

func TestImportPVDefaultsBaseToRunStart(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	path := filepath.Join(t.TempDir(), "pv.csv")
	writeFile(t, path, pvHeader, "5,1,1,1,1,1")

	started := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	importer := New(store)
	importer.Now = func() time.Time { return started }

	_, err := importer.ImportPV(context.Background(), path)
	require.NoError(t, err)

	latest, err := store.LatestPV(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Timestamp.Equal(started.Add(5*time.Hour)))
}

func TestImportPVMissingFileKeepsData(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	path := filepath.Join(t.TempDir(), "pv.csv")
	writeFile(t, path, pvHeader, "1,1,1,1,1,1", "2,1,1,1,1,1")

	importer := New(store)
	_, err := importer.ImportPV(context.Background(), path)
	require.NoError(t, err)

	report, err := importer.ImportPV(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, report.Files[0].Status)

	count, err := store.CountPV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestImportPVReplacesPreviousRun(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	writeFile(t, first, pvHeader, "1,1,1,1,1,1", "2,1,1,1,1,1", "3,1,1,1,1,1")
	writeFile(t, second, pvHeader, "7,1,1,1,1,1")

	importer := New(store)
	_, err := importer.ImportPV(context.Background(), first)
	require.NoError(t, err)

	report, err := importer.ImportPV(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Cleared)

	count, err := store.CountPV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestClear(t *testing.T) {
	common.SetTestLoggerNop()

	store := openStore(t)
	path := filepath.Join(t.TempDir(), "pv.csv")
	writeFile(t, path, pvHeader, "1,1,1,1,1,1")

	importer := New(store)
	_, err := importer.ImportPV(context.Background(), path)
	require.NoError(t, err)

	deleted, err := importer.Clear(context.Background(), KindPV)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = importer.Clear(context.Background(), Kind("weather"))
	assert.Error(t, err)
}
