package energy

import (
	"context"
	"time"

	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

//go:generate mockgen -source=energy.go -destination=mocks/energy.go -package=mocks

type INILM interface {
	List(ctx context.Context, q models.NILMQuery) ([]models.NILMRecord, error)
	Range(ctx context.Context, filter models.SiteFilter) (*models.RangeResult, error)
	Latest(ctx context.Context, filter models.SiteFilter) (*models.NILMRecord, error)
	Stats(ctx context.Context) ([]models.SiteStats, error)
	Breakdown(ctx context.Context) ([]models.SiteRange, error)
	Clear(ctx context.Context) (int64, error)
}

type IPV interface {
	List(ctx context.Context, q models.PVQuery) ([]models.PVRecord, error)
	Latest(ctx context.Context) (*models.PVRecord, error)
	Random(ctx context.Context) (*models.PVRecord, error)
	Clear(ctx context.Context) (int64, error)
}

type Energy struct {
	Store Store
	// QueryTimeout bounds every store call; zero disables the bound.
	QueryTimeout time.Duration
	NILM         INILM
	PV           IPV
}

type ServiceOpts struct {
	NILM INILM
	PV   IPV
}

func New(store Store, queryTimeout time.Duration) *Energy {
	e := &Energy{Store: store, QueryTimeout: queryTimeout}
	return e.WithServices(ServiceOpts{
		NILM: e.GetINILM(),
		PV:   e.GetIPV(),
	})
}

func (e *Energy) WithServices(opts ServiceOpts) *Energy {
	if opts.NILM != nil {
		e.NILM = opts.NILM
	}
	if opts.PV != nil {
		e.PV = opts.PV
	}
	return e
}
