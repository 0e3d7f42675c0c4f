package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func pvLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameIngest,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryPV),
	)
}

// ImportPV replaces all PV records with the rows of the CSV at path. A
// missing file leaves the store untouched.
func (im *Importer) ImportPV(ctx context.Context, path string) (*Report, error) {
	if err := im.lock(); err != nil {
		return nil, err
	}
	defer im.mu.Unlock()

	logger := pvLogger().With(zap.String("path", path))
	started := im.now()
	report := &Report{Kind: KindPV, StartedAt: started}
	res := FileResult{Path: path}

	defer func() {
		report.FinishedAt = im.now()
	}()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = StatusSkipped
		logger.Warn("PV source file not found, keeping existing records")
		im.Metrics.observe(KindPV, res)
		report.Files = append(report.Files, res)
		return report, nil
	}
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		im.Metrics.observe(KindPV, res)
		report.Files = append(report.Files, res)
		return report, fmt.Errorf("open pv source: %w", err)
	}
	defer f.Close()

	cleared, err := im.Store.DeleteAllPV(ctx)
	if err != nil {
		logger.Error("Failed to clear PV records, aborting import", zap.Error(err))
		res.Status = StatusFailed
		res.Error = err.Error()
		im.Metrics.observe(KindPV, res)
		report.Files = append(report.Files, res)
		return report, fmt.Errorf("clear pv records: %w", err)
	}
	report.Cleared = cleared

	base := im.PVBase
	if base.IsZero() {
		base = started
	}

	dropped, batch, err := streamPV(ctx, f, base.UTC(), im.batchSize(), im.Store.InsertPVBatch)
	res.Records, res.Batches, res.Dropped = batch.written, batch.batches, dropped
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		logger.Error("PV import failed", zap.Int("records", res.Records), zap.Error(err))
	} else {
		res.Status = StatusSucceeded
		logger.Info("Imported PV records", zap.Int("records", res.Records), zap.Int("dropped", res.Dropped))
	}

	im.Metrics.observe(KindPV, res)
	report.Files = append(report.Files, res)
	return report, nil
}

func streamPV(
	ctx context.Context,
	src io.Reader,
	base time.Time,
	size int,
	insert func(context.Context, []models.PVRecord) error,
) (int, *batcher[models.PVRecord], error) {
	batch := &batcher[models.PVRecord]{size: size, insert: insert}

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

		record, ok := pvRecord(r, base)
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

// pvRecord maps one row of the irradiance/temperature export. Irradiance and
// Temperature duplicate Gt and T2m.
func pvRecord(r row, base time.Time) (models.PVRecord, bool) {
	hour, ok := r.int("time")
	if !ok {
		return models.PVRecord{}, false
	}

	gt := r.float("Gt")
	t2m := r.float("T2m")
	return models.PVRecord{
		Timestamp:   base.Add(time.Duration(hour) * time.Hour),
		Time:        hour,
		P:           r.float("P"),
		GbI:         r.float("Gb(i)"),
		GdI:         r.float("Gd(i)"),
		T2m:         t2m,
		Gt:          gt,
		Irradiance:  gt,
		Temperature: t2m,
	}, true
}
