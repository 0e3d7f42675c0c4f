package models

import "time"

type SortOrder int

const (
	SortDescending SortOrder = -1
	SortAscending  SortOrder = 1
)

// DefaultLimit applies when a list request carries no usable limit.
const DefaultLimit = 100

// SiteFilter is an equality match on the categorical NILM fields.
// Empty fields match everything.
type SiteFilter struct {
	Building Building
	Location Location
}

// NILMQuery is a validated list request. Start and End are inclusive and
// optional; Limit <= 0 returns the whole matching set.
type NILMQuery struct {
	SiteFilter
	Start *time.Time
	End   *time.Time
	Sort  SortOrder
	Limit int
}

// PVQuery bounds are on the integer hour offset (PVRecord.Time), not on the
// timestamp column.
type PVQuery struct {
	StartTime *int64
	EndTime   *int64
	Sort      SortOrder
	Limit     int
}

type TimeRange struct {
	MinDate time.Time `json:"minDate"`
	MaxDate time.Time `json:"maxDate"`
}

// RangeResult is the outcome of range discovery. Range is nil when the
// filter matches no record.
type RangeResult struct {
	Count int64      `json:"count"`
	Range *TimeRange `json:"range"`
}

type SiteStats struct {
	Building     Building `gorm:"column:building" json:"building"`
	Location     Location `gorm:"column:location" json:"location"`
	Count        int64    `gorm:"column:count" json:"count"`
	AvgAggregate float64  `gorm:"column:avg_aggregate" json:"avgAggregate"`
	AvgEVSE      float64  `gorm:"column:avg_evse" json:"avgEVSE"`
	AvgPV        float64  `gorm:"column:avg_pv" json:"avgPV"`
	AvgCS        float64  `gorm:"column:avg_cs" json:"avgCS"`
	AvgCHP       float64  `gorm:"column:avg_chp" json:"avgCHP"`
	AvgBA        float64  `gorm:"column:avg_ba" json:"avgBA"`
}

type SiteRange struct {
	Building Building  `json:"building"`
	Location Location  `json:"location"`
	Count    int64     `json:"count"`
	MinDate  time.Time `json:"minDate"`
	MaxDate  time.Time `json:"maxDate"`
}

// Span is MaxDate - MinDate.
func (s SiteRange) Span() time.Duration {
	return s.MaxDate.Sub(s.MinDate)
}
