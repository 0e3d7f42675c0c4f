package db

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

// layouts MIN()/MAX() results come back in: sqlite hands back the stored
// text, postgres a time that database/sql renders as RFC3339Nano.
var storedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseStoredTime(value sql.NullString) (time.Time, error) {
	if !value.Valid {
		return time.Time{}, fmt.Errorf("null timestamp")
	}
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, value.String); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised stored timestamp %q", value.String)
}

func orderBy(column string, sort models.SortOrder) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   sort != models.SortAscending,
	}
}

func column(name string) clause.Column {
	return clause.Column{Name: name}
}

// storedTime is the UTC, millisecond-precision form every timestamp is
// written in. Query bounds arrive as epoch milliseconds, so finer stored
// values would fall outside bounds taken from range discovery.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
