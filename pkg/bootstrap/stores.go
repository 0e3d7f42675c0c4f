package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/config"
	"liyu1981.xyz/energy-dashboard-service/pkg/db"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
	"liyu1981.xyz/energy-dashboard-service/pkg/mongostore"
)

// Stores are the handles a process owns. Auth is always gorm backed; it is
// the same handle as Data unless readings live in MongoDB.
type Stores struct {
	Data energy.Store
	Auth *db.DB
}

func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	logger := common.GetLoggerWith(common.LoggerNameStore)

	var dialector = db.UseSqliteDialector(cfg.SqlitePath)
	switch cfg.StoreType {
	case config.StoreMemory:
		dialector = db.UseMemorySqliteDialector()
	case config.StorePostgres:
		dialector = db.UsePostgresDialector(cfg.PostgresDSN)
	case config.StoreMongo:
		return openMongo(ctx, cfg)
	}

	instance, err := db.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreType, err)
	}

	logger.Info("Store ready", zap.String("type", string(cfg.StoreType)))
	return &Stores{Data: instance, Auth: instance}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Stores, error) {
	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	data, err := mongostore.New(ctx, client, cfg.MongoDatabase)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	authDB, err := db.Open(db.UseSqliteDialector(cfg.AuthSqlitePath))
	if err != nil {
		_ = data.Close()
		return nil, fmt.Errorf("open auth store: %w", err)
	}

	return &Stores{Data: data, Auth: authDB}, nil
}

func (s *Stores) Close() error {
	err := s.Data.Close()
	if shared, ok := s.Data.(*db.DB); ok && shared == s.Auth {
		return err
	}
	return errors.Join(err, s.Auth.Close())
}
