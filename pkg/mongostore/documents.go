package mongostore

import (
	"time"

	"github.com/google/uuid"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

type applianceDocument struct {
	EVSE float64 `bson:"EVSE"`
	PV   float64 `bson:"PV"`
	CS   float64 `bson:"CS"`
	CHP  float64 `bson:"CHP"`
	BA   float64 `bson:"BA"`
}

type nilmDocument struct {
	ID         string            `bson:"_id"`
	Timestamp  time.Time         `bson:"timestamp"`
	Aggregate  float64           `bson:"aggregate"`
	Appliances applianceDocument `bson:"appliances"`
	Building   string            `bson:"building"`
	Location   string            `bson:"location"`
	CreatedAt  time.Time         `bson:"createdAt"`
}

type pvDocument struct {
	ID          string    `bson:"_id"`
	Timestamp   time.Time `bson:"timestamp"`
	Time        int64     `bson:"time"`
	P           float64   `bson:"P"`
	GbI         float64   `bson:"Gb_i"`
	GdI         float64   `bson:"Gd_i"`
	T2m         float64   `bson:"T2m"`
	Gt          float64   `bson:"Gt"`
	Irradiance  float64   `bson:"Irradiance"`
	Temperature float64   `bson:"Temperature"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func newNILMDocument(r models.NILMRecord, now time.Time) nilmDocument {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return nilmDocument{
		ID:        id,
		Timestamp: r.Timestamp.UTC(),
		Aggregate: r.Aggregate,
		Appliances: applianceDocument{
			EVSE: r.Appliances.EVSE,
			PV:   r.Appliances.PV,
			CS:   r.Appliances.CS,
			CHP:  r.Appliances.CHP,
			BA:   r.Appliances.BA,
		},
		Building:  string(r.Building),
		Location:  string(r.Location),
		CreatedAt: now,
	}
}

func (d nilmDocument) record() models.NILMRecord {
	return models.NILMRecord{
		ID:        d.ID,
		Timestamp: d.Timestamp.UTC(),
		Aggregate: d.Aggregate,
		Appliances: models.Appliances{
			EVSE: d.Appliances.EVSE,
			PV:   d.Appliances.PV,
			CS:   d.Appliances.CS,
			CHP:  d.Appliances.CHP,
			BA:   d.Appliances.BA,
		},
		Building:  models.Building(d.Building),
		Location:  models.Location(d.Location),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func newPVDocument(r models.PVRecord, now time.Time) pvDocument {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return pvDocument{
		ID:          id,
		Timestamp:   r.Timestamp.UTC(),
		Time:        r.Time,
		P:           r.P,
		GbI:         r.GbI,
		GdI:         r.GdI,
		T2m:         r.T2m,
		Gt:          r.Gt,
		Irradiance:  r.Irradiance,
		Temperature: r.Temperature,
		CreatedAt:   now,
	}
}

func (d pvDocument) record() models.PVRecord {
	return models.PVRecord{
		ID:          d.ID,
		Timestamp:   d.Timestamp.UTC(),
		Time:        d.Time,
		P:           d.P,
		GbI:         d.GbI,
		GdI:         d.GdI,
		T2m:         d.T2m,
		Gt:          d.Gt,
		Irradiance:  d.Irradiance,
		Temperature: d.Temperature,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
