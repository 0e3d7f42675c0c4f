package models

import "time"

type Building string

const (
	BuildingOffice   Building = "Office"
	BuildingDealer   Building = "Dealer"
	BuildingLogistic Building = "Logistic"
)

// Buildings lists the closed building enumeration in ingestion order.
var Buildings = []Building{BuildingOffice, BuildingDealer, BuildingLogistic}

func (b Building) Valid() bool {
	for _, known := range Buildings {
		if b == known {
			return true
		}
	}
	return false
}

type Location string

const (
	LocationLA        Location = "LA"
	LocationOffenbach Location = "Offenbach"
	LocationTokyo     Location = "Tokyo"
)

// Locations lists the closed location enumeration in ingestion order.
var Locations = []Location{LocationLA, LocationOffenbach, LocationTokyo}

func (l Location) Valid() bool {
	for _, known := range Locations {
		if l == known {
			return true
		}
	}
	return false
}

type ApplianceCode string

const (
	ApplianceEVSE ApplianceCode = "EVSE"
	AppliancePV   ApplianceCode = "PV"
	ApplianceCS   ApplianceCode = "CS"
	ApplianceCHP  ApplianceCode = "CHP"
	ApplianceBA   ApplianceCode = "BA"
)

var ApplianceCodes = []ApplianceCode{ApplianceEVSE, AppliancePV, ApplianceCS, ApplianceCHP, ApplianceBA}

// Appliances holds the per-appliance power split of one NILM reading.
// Codes absent from the source are 0.
type Appliances struct {
	EVSE float64 `gorm:"column:evse;not null;default:0" json:"EVSE"`
	PV   float64 `gorm:"column:pv;not null;default:0" json:"PV"`
	CS   float64 `gorm:"column:cs;not null;default:0" json:"CS"`
	CHP  float64 `gorm:"column:chp;not null;default:0" json:"CHP"`
	BA   float64 `gorm:"column:ba;not null;default:0" json:"BA"`
}

// Set assigns the contribution of one appliance code; unknown codes are ignored.
func (a *Appliances) Set(code ApplianceCode, value float64) {
	switch code {
	case ApplianceEVSE:
		a.EVSE = value
	case AppliancePV:
		a.PV = value
	case ApplianceCS:
		a.CS = value
	case ApplianceCHP:
		a.CHP = value
	case ApplianceBA:
		a.BA = value
	}
}

type NILMRecord struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Timestamp  time.Time  `gorm:"not null;index:idx_nilm_site_time,priority:3" json:"timestamp"`
	Aggregate  float64    `gorm:"not null" json:"aggregate"`
	Appliances Appliances `gorm:"embedded;embeddedPrefix:appliance_" json:"appliances"`
	Building   Building   `gorm:"type:varchar(16);not null;index:idx_nilm_site_time,priority:1;check:building IN ('Office','Dealer','Logistic')" json:"building"`
	Location   Location   `gorm:"type:varchar(16);not null;index:idx_nilm_site_time,priority:2;check:location IN ('LA','Offenbach','Tokyo')" json:"location"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (NILMRecord) TableName() string { return "nilm_records" }

type PVRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Time        int64     `gorm:"not null;index" json:"time"`
	P           float64   `gorm:"column:p;not null" json:"P"`
	GbI         float64   `gorm:"column:gb_i;not null" json:"Gb_i"`
	GdI         float64   `gorm:"column:gd_i;not null" json:"Gd_i"`
	T2m         float64   `gorm:"column:t2m;not null" json:"T2m"`
	Gt          float64   `gorm:"column:gt;not null" json:"Gt"`
	Irradiance  float64   `gorm:"column:irradiance" json:"Irradiance"`
	Temperature float64   `gorm:"column:temperature" json:"Temperature"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (PVRecord) TableName() string { return "pv_records" }
