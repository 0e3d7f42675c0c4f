package energy

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func pvLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameEnergyCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryPV),
	)
}

func (e *Energy) listPV(ctx context.Context, q models.PVQuery) ([]models.PVRecord, error) {
	records, err := run(e, ctx, func(ctx context.Context) ([]models.PVRecord, error) {
		return e.Store.FindPV(ctx, q)
	})
	if err != nil {
		pvLogger().Error("Failed to list PV records", zap.Reflect("query", q), zap.Error(err))
		return nil, err
	}
	return records, nil
}

func (e *Energy) latestPV(ctx context.Context) (*models.PVRecord, error) {
	record, err := run(e, ctx, e.Store.LatestPV)
	if err != nil {
		pvLogger().Error("Failed to load latest PV record", zap.Error(err))
		return nil, err
	}
	return record, nil
}

// randomPV picks uniformly by offset. A clear racing between the count and
// the lookup yields nil, same as an empty store.
func (e *Energy) randomPV(ctx context.Context) (*models.PVRecord, error) {
	record, err := run(e, ctx, func(ctx context.Context) (*models.PVRecord, error) {
		count, err := e.Store.CountPV(ctx)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		return e.Store.PVAtOffset(ctx, rand.Int64N(count))
	})
	if err != nil {
		pvLogger().Error("Failed to load random PV record", zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (e *Energy) clearPV(ctx context.Context) (int64, error) {
	deleted, err := e.Store.DeleteAllPV(ctx)
	if err != nil {
		pvLogger().Error("Failed to clear PV records", zap.Error(err))
		return 0, err
	}
	pvLogger().Info("Cleared PV records", zap.Int64("deleted", deleted))
	return deleted, nil
}

type IPVImpl struct {
	energy *Energy
}

func (p *IPVImpl) List(ctx context.Context, q models.PVQuery) ([]models.PVRecord, error) {
	return p.energy.listPV(ctx, q)
}

func (p *IPVImpl) Latest(ctx context.Context) (*models.PVRecord, error) {
	return p.energy.latestPV(ctx)
}

func (p *IPVImpl) Random(ctx context.Context) (*models.PVRecord, error) {
	return p.energy.randomPV(ctx)
}

func (p *IPVImpl) Clear(ctx context.Context) (int64, error) {
	return p.energy.clearPV(ctx)
}

func (e *Energy) GetIPV() IPV {
	return &IPVImpl{energy: e}
}
