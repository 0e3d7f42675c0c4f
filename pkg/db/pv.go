package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func (d *DB) pv(ctx context.Context) *gorm.DB {
	return d.Conn.WithContext(ctx).Model(&models.PVRecord{})
}

func (d *DB) DeleteAllPV(ctx context.Context) (int64, error) {
	res := d.Conn.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.PVRecord{})
	return res.RowsAffected, res.Error
}

func (d *DB) InsertPVBatch(ctx context.Context, records []models.PVRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := make([]models.PVRecord, len(records))
	copy(batch, records)
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = uuid.NewString()
		}
		batch[i].Timestamp = storedTime(batch[i].Timestamp)
	}

	return d.Conn.WithContext(ctx).Create(&batch).Error
}

func (d *DB) FindPV(ctx context.Context, q models.PVQuery) ([]models.PVRecord, error) {
	tx := d.pv(ctx)
	if q.StartTime != nil {
		tx = tx.Where(clause.Gte{Column: column("time"), Value: *q.StartTime})
	}
	if q.EndTime != nil {
		tx = tx.Where(clause.Lte{Column: column("time"), Value: *q.EndTime})
	}
	tx = tx.Order(orderBy("time", q.Sort))
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	records := []models.PVRecord{}
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (d *DB) LatestPV(ctx context.Context) (*models.PVRecord, error) {
	var records []models.PVRecord
	err := d.pv(ctx).Order(orderBy("time", models.SortDescending)).Limit(1).Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (d *DB) CountPV(ctx context.Context) (int64, error) {
	var count int64
	err := d.pv(ctx).Count(&count).Error
	return count, err
}

// PVAtOffset returns the record at position offset in (time, id) order, or
// nil when offset is past the end.
func (d *DB) PVAtOffset(ctx context.Context, offset int64) (*models.PVRecord, error) {
	var records []models.PVRecord
	err := d.pv(ctx).
		Order(orderBy("time", models.SortAscending)).
		Order(orderBy("id", models.SortAscending)).
		Offset(int(offset)).
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
