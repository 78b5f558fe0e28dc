// Package postgres adapts the domain repository ports onto GORM over
// PostgreSQL.
package postgres

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/seu-repo/csms/internal/domain"
)

// NewConnection opens a GORM connection pool against url.
func NewConnection(url string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to postgres")
	return db, nil
}

// AutoMigrate creates/updates the core tables. Schema migrations beyond this
// are explicitly out of core scope (spec.md §1); a simple AutoMigrate keeps
// the module self-contained without a separate migration tool.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Station{},
		&domain.Intent{},
		&domain.Session{},
		&domain.MeterSample{},
		&domain.Location{},
		&domain.StopCodeDelivery{},
	)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
