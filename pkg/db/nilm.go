package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func siteScope(filter models.SiteFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter.Building != "" {
			tx = tx.Where("building = ?", filter.Building)
		}
		if filter.Location != "" {
			tx = tx.Where("location = ?", filter.Location)
		}
		return tx
	}
}

func (d *DB) nilm(ctx context.Context) *gorm.DB {
	return d.Conn.WithContext(ctx).Model(&models.NILMRecord{})
}

func (d *DB) DeleteAllNILM(ctx context.Context) (int64, error) {
	res := d.Conn.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.NILMRecord{})
	return res.RowsAffected, res.Error
}

func (d *DB) InsertNILMBatch(ctx context.Context, records []models.NILMRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := make([]models.NILMRecord, len(records))
	copy(batch, records)
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = uuid.NewString()
		}
		batch[i].Timestamp = storedTime(batch[i].Timestamp)
	}

	return d.Conn.WithContext(ctx).Create(&batch).Error
}

func (d *DB) FindNILM(ctx context.Context, q models.NILMQuery) ([]models.NILMRecord, error) {
	tx := d.nilm(ctx).Scopes(siteScope(q.SiteFilter))
	if q.Start != nil {
		tx = tx.Where(clause.Gte{Column: column("timestamp"), Value: q.Start.UTC()})
	}
	if q.End != nil {
		tx = tx.Where(clause.Lte{Column: column("timestamp"), Value: q.End.UTC()})
	}
	tx = tx.Order(orderBy("timestamp", q.Sort))
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	records := []models.NILMRecord{}
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (d *DB) LatestNILM(ctx context.Context, filter models.SiteFilter) (*models.NILMRecord, error) {
	var records []models.NILMRecord
	err := d.nilm(ctx).
		Scopes(siteScope(filter)).
		Order(orderBy("timestamp", models.SortDescending)).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

type rangeRow struct {
	Count   int64
	MinDate sql.NullString
	MaxDate sql.NullString
}

func (d *DB) NILMRange(ctx context.Context, filter models.SiteFilter) (*models.RangeResult, error) {
	var row rangeRow
	err := d.nilm(ctx).
		Scopes(siteScope(filter)).
		Select("COUNT(*) AS count, MIN(?) AS min_date, MAX(?) AS max_date", column("timestamp"), column("timestamp")).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	result := &models.RangeResult{Count: row.Count}
	if row.Count == 0 {
		return result, nil
	}

	minDate, err := parseStoredTime(row.MinDate)
	if err != nil {
		return nil, err
	}
	maxDate, err := parseStoredTime(row.MaxDate)
	if err != nil {
		return nil, err
	}
	result.Range = &models.TimeRange{MinDate: minDate, MaxDate: maxDate}
	return result, nil
}

func (d *DB) NILMStats(ctx context.Context) ([]models.SiteStats, error) {
	stats := []models.SiteStats{}
	err := d.nilm(ctx).
		Select(`building, location, COUNT(*) AS count,
			AVG(aggregate) AS avg_aggregate,
			AVG(appliance_evse) AS avg_evse,
			AVG(appliance_pv) AS avg_pv,
			AVG(appliance_cs) AS avg_cs,
			AVG(appliance_chp) AS avg_chp,
			AVG(appliance_ba) AS avg_ba`).
		Group("building, location").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type siteRangeRow struct {
	Building models.Building
	Location models.Location
	Count    int64
	MinDate  sql.NullString
	MaxDate  sql.NullString
}

func (d *DB) NILMBreakdown(ctx context.Context) ([]models.SiteRange, error) {
	var rows []siteRangeRow
	err := d.nilm(ctx).
		Select("building, location, COUNT(*) AS count, MIN(?) AS min_date, MAX(?) AS max_date", column("timestamp"), column("timestamp")).
		Group("building, location").
		Order("building, location").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.SiteRange, 0, len(rows))
	for _, row := range rows {
		minDate, err := parseStoredTime(row.MinDate)
		if err != nil {
			return nil, err
		}
		maxDate, err := parseStoredTime(row.MaxDate)
		if err != nil {
			return nil, err
		}
		out = append(out, models.SiteRange{
			Building: row.Building,
			Location: row.Location,
			Count:    row.Count,
			MinDate:  minDate,
			MaxDate:  maxDate,
		})
	}
	return out, nil
}
