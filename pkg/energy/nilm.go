package energy

import (
	"context"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func nilmLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameEnergyCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryNILM),
	)
}

func (e *Energy) listNILM(ctx context.Context, q models.NILMQuery) ([]models.NILMRecord, error) {
	logger := nilmLogger()

	records, err := run(e, ctx, func(ctx context.Context) ([]models.NILMRecord, error) {
		return e.Store.FindNILM(ctx, q)
	})
	if err != nil {
		logger.Error("Failed to list NILM records", zap.Reflect("query", q), zap.Error(err))
		return nil, err
	}

	logger.Debug("Listed NILM records", zap.Reflect("query", q), zap.Int("count", len(records)))

	if len(records) == 0 {
		e.logAvailableSites(ctx, logger)
	}
	return records, nil
}

// logAvailableSites helps an operator tell a wrong filter from an empty store.
func (e *Energy) logAvailableSites(ctx context.Context, logger *zap.Logger) {
	sites, err := e.breakdownNILM(ctx)
	if err != nil {
		logger.Warn("Could not load available NILM sites", zap.Error(err))
		return
	}
	logger.Info("No NILM records matched, available sites:", zap.Reflect("sites", sites))
}

func (e *Energy) rangeNILM(ctx context.Context, filter models.SiteFilter) (*models.RangeResult, error) {
	res, err := run(e, ctx, func(ctx context.Context) (*models.RangeResult, error) {
		return e.Store.NILMRange(ctx, filter)
	})
	if err != nil {
		nilmLogger().Error("Failed to compute NILM range", zap.Reflect("filter", filter), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (e *Energy) latestNILM(ctx context.Context, filter models.SiteFilter) (*models.NILMRecord, error) {
	record, err := run(e, ctx, func(ctx context.Context) (*models.NILMRecord, error) {
		return e.Store.LatestNILM(ctx, filter)
	})
	if err != nil {
		nilmLogger().Error("Failed to load latest NILM record", zap.Reflect("filter", filter), zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (e *Energy) statsNILM(ctx context.Context) ([]models.SiteStats, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameEnergyCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryStats),
	)

	stats, err := run(e, ctx, e.Store.NILMStats)
	if err != nil {
		logger.Error("Failed to compute NILM stats", zap.Error(err))
		return nil, err
	}
	return stats, nil
}

func (e *Energy) breakdownNILM(ctx context.Context) ([]models.SiteRange, error) {
	return run(e, ctx, e.Store.NILMBreakdown)
}

func (e *Energy) clearNILM(ctx context.Context) (int64, error) {
	deleted, err := e.Store.DeleteAllNILM(ctx)
	if err != nil {
		nilmLogger().Error("Failed to clear NILM records", zap.Error(err))
		return 0, err
	}
	nilmLogger().Info("Cleared NILM records", zap.Int64("deleted", deleted))
	return deleted, nil
}

type INILMImpl struct {
	energy *Energy
}

func (n *INILMImpl) List(ctx context.Context, q models.NILMQuery) ([]models.NILMRecord, error) {
	return n.energy.listNILM(ctx, q)
}

func (n *INILMImpl) Range(ctx context.Context, filter models.SiteFilter) (*models.RangeResult, error) {
	return n.energy.rangeNILM(ctx, filter)
}

func (n *INILMImpl) Latest(ctx context.Context, filter models.SiteFilter) (*models.NILMRecord, error) {
	return n.energy.latestNILM(ctx, filter)
}

func (n *INILMImpl) Stats(ctx context.Context) ([]models.SiteStats, error) {
	return n.energy.statsNILM(ctx)
}

func (n *INILMImpl) Breakdown(ctx context.Context) ([]models.SiteRange, error) {
	return n.energy.breakdownNILM(ctx)
}

func (n *INILMImpl) Clear(ctx context.Context) (int64, error) {
	return n.energy.clearNILM(ctx)
}

func (e *Energy) GetINILM() INILM {
	return &INILMImpl{energy: e}
}
