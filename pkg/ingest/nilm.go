package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func nilmLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameIngest,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryNILM),
	)
}

// NILMPath returns the first existing source file for a building/location
// combination, looking in <dir>/<building>/ before <dir> itself. ok is false
// when neither exists.
func NILMPath(dir string, b models.Building, l models.Location) (string, bool) {
	name := fmt.Sprintf("%s_%s.csv", b, l)
	for _, candidate := range []string{
		filepath.Join(dir, string(b), name),
		filepath.Join(dir, name),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return filepath.Join(dir, string(b), name), false
}

// ImportNILM replaces all NILM records with the contents of the per-site CSV
// files under dir. A failure to clear the store aborts the run; every other
// failure is confined to its file and recorded in the report.
func (im *Importer) ImportNILM(ctx context.Context, dir string) (*Report, error) {
	if err := im.lock(); err != nil {
		return nil, err
	}
	defer im.mu.Unlock()

	logger := nilmLogger()
	report := &Report{Kind: KindNILM, StartedAt: im.now()}

	cleared, err := im.Store.DeleteAllNILM(ctx)
	if err != nil {
		logger.Error("Failed to clear NILM records, aborting import", zap.Error(err))
		return report, fmt.Errorf("clear nilm records: %w", err)
	}
	report.Cleared = cleared
	logger.Info("Cleared existing NILM records", zap.Int64("deleted", cleared))

	for _, b := range models.Buildings {
		for _, l := range models.Locations {
			if err := ctx.Err(); err != nil {
				report.FinishedAt = im.now()
				return report, err
			}

			path, ok := NILMPath(dir, b, l)
			if !ok {
				res := FileResult{Building: b, Location: l, Path: path, Status: StatusSkipped}
				logger.Warn("NILM source file not found", zap.String("path", path))
				im.Metrics.observe(KindNILM, res)
				report.Files = append(report.Files, res)
				continue
			}

			res := im.importNILMFile(ctx, path, b, l)
			im.Metrics.observe(KindNILM, res)
			report.Files = append(report.Files, res)
		}
	}

	if im.SampleWhenEmpty && report.Count(StatusSkipped) == len(report.Files) {
		logger.Info("No NILM source files found, generating sample data")
		res := im.insertSampleNILM(ctx)
		im.Metrics.observe(KindNILM, res)
		report.Files = append(report.Files, res)
		report.Generated = true
	}

	report.FinishedAt = im.now()
	logger.Info("NILM import finished",
		zap.Int("records", report.Records()),
		zap.Int("succeeded", report.Count(StatusSucceeded)),
		zap.Int("skipped", report.Count(StatusSkipped)),
		zap.Int("failed", report.Count(StatusFailed)),
	)
	return report, nil
}

func (im *Importer) importNILMFile(ctx context.Context, path string, b models.Building, l models.Location) FileResult {
	logger := nilmLogger().With(zap.String("building", string(b)), zap.String("location", string(l)))
	res := FileResult{Building: b, Location: l, Path: path}

	f, err := os.Open(path)
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = StatusSkipped
		}
		logger.Warn("Could not open NILM source file", zap.String("path", path), zap.Error(err))
		return res
	}
	defer f.Close()

	logger.Info("Importing NILM source file", zap.String("path", path))

	dropped, batch, err := streamNILM(ctx, f, b, l, im.batchSize(), im.Store.InsertNILMBatch)
	res.Records, res.Batches, res.Dropped = batch.written, batch.batches, dropped
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		logger.Error("NILM import failed", zap.Int("records", res.Records), zap.Error(err))
		return res
	}

	res.Status = StatusSucceeded
	logger.Info("Imported NILM records", zap.Int("records", res.Records), zap.Int("dropped", res.Dropped))
	return res
}

func streamNILM(
	ctx context.Context,
	src io.Reader,
	b models.Building,
	l models.Location,
	size int,
	insert func(context.Context, []models.NILMRecord) error,
) (int, *batcher[models.NILMRecord], error) {
	batch := &batcher[models.NILMRecord]{size: size, insert: insert}

	rows, err := newRowReader(src)
	if errors.Is(err, io.EOF) {
		return 0, batch, nil
	}
	if err != nil {
		return 0, batch, fmt.Errorf("read header: %w", err)
	}

	dropped := 0
	for {
		r, skip, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dropped, batch, err
		}
		if skip {
			dropped++
			continue
		}

		record, ok := nilmRecord(r, b, l)
		if !ok {
			dropped++
			continue
		}
		if err := batch.add(ctx, record); err != nil {
			return dropped, batch, err
		}
	}

	return dropped, batch, batch.flush(ctx)
}

// nilmRecord maps one source row. The Time column holds epoch seconds; a
// missing, unreadable or zero value means no reading and drops the row.
func nilmRecord(r row, b models.Building, l models.Location) (models.NILMRecord, bool) {
	seconds, ok := r.int("Time")
	if !ok || seconds == 0 {
		return models.NILMRecord{}, false
	}

	record := models.NILMRecord{
		Timestamp: time.Unix(seconds, 0).UTC(),
		Aggregate: r.float("Aggregate"),
		Building:  b,
		Location:  l,
	}
	for _, code := range models.ApplianceCodes {
		record.Appliances.Set(code, r.float(string(code)))
	}
	return record, true
}

const (
	sampleSteps    = 144
	sampleInterval = 10 * time.Minute
)

// GenerateSampleNILM returns one day of synthetic Office/LA readings at
// ten minute spacing, the last one interval before now.
func GenerateSampleNILM(now time.Time) []models.NILMRecord {
	records := make([]models.NILMRecord, 0, sampleSteps)
	for i := range sampleSteps {
		ts := now.Add(-time.Duration(sampleSteps-i) * sampleInterval).UTC()
		hour := float64(ts.Hour())

		evse := rand.Float64() * 500
		if hour >= 8 && hour <= 18 {
			evse = rand.Float64() * 3000
		}
		pv := 0.0
		if hour >= 6 && hour <= 18 {
			pv = -rand.Float64() * 2000 * math.Sin((hour-6)*math.Pi/12)
		}
		cs := rand.Float64() * 300
		if hour >= 9 && hour <= 17 {
			cs = rand.Float64() * 1500
		}
		chp := 500 + rand.Float64()*1000
		ba := rand.Float64() * 800

		appliances := models.Appliances{
			EVSE: round2(evse),
			PV:   round2(pv),
			CS:   round2(cs),
			CHP:  round2(chp),
			BA:   round2(ba),
		}
		records = append(records, models.NILMRecord{
			Timestamp:  ts,
			Aggregate:  round2(1000 + evse + pv + cs + chp + ba),
			Appliances: appliances,
			Building:   models.BuildingOffice,
			Location:   models.LocationLA,
		})
	}
	return records
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (im *Importer) insertSampleNILM(ctx context.Context) FileResult {
	res := FileResult{Building: models.BuildingOffice, Location: models.LocationLA, Path: "generated"}

	written, batches, err := insertBatches(ctx, GenerateSampleNILM(im.now()), im.batchSize(), im.Store.InsertNILMBatch)
	res.Records, res.Batches = written, batches
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		nilmLogger().Error("Failed to insert sample NILM data", zap.Error(err))
		return res
	}

	res.Status = StatusSucceeded
	nilmLogger().Info("Generated sample NILM records", zap.Int("records", written))
	return res
}
