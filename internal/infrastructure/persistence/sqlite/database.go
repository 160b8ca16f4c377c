// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"

	gormModels "github.com/alchemorsel/patisserie/internal/infrastructure/persistence/gorm"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupDatabase opens the SQLite database at dbPath and migrates the schema
func SetupDatabase(dbPath string, logLevel string) (*gorm.DB, error) {
	return Open(dbPath, nil, logLevel, true)
}

// Open opens the SQLite database at dbPath, logging through log when given
func Open(dbPath string, log *zap.Logger, logLevel string, autoMigrate bool) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormModels.NewLogger(log, logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if autoMigrate {
		if err := gormModels.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}
