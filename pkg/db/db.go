package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

// DB is the gorm-backed store. It is constructed once at startup, passed
// down explicitly and closed on shutdown.
type DB struct {
	Conn *gorm.DB
}

func Open(dialector gorm.Dialector) (*DB, error) {
	logger := common.GetLoggerWith(common.LoggerNameStore)

	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	if isMemorySqlite(dialector) {
		// every connection to a shared-cache memory database must stay open or
		// the data goes away; a single connection also avoids table lock errors
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := conn.AutoMigrate(&models.NILMRecord{}, &models.PVRecord{}, &models.User{}, &models.Session{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("Database migration completed")

	return &DB{Conn: conn}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func UseSqliteDialector(path string) gorm.Dialector {
	if path == "" {
		path = "energy.db"
	}
	return sqlite.Open(path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
}

// UseMemorySqliteDialector returns a dialector for a fresh, private in-memory
// database. Each call yields a distinct database.
func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()))
}

func UsePostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

func isMemorySqlite(dialector gorm.Dialector) bool {
	d, ok := dialector.(*sqlite.Dialector)
	return ok && strings.Contains(d.DSN, "mode=memory")
}
