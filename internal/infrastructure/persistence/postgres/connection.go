// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	gormModels "github.com/alchemorsel/patisserie/internal/infrastructure/persistence/gorm"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// Connect opens a pooled PostgreSQL connection, registers read replicas and
// migrates the schema when configured to
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger:      gormModels.NewLogger(log, cfg.Database.LogLevel),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if len(cfg.Database.ReadReplicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Database.ReadReplicas))
		for _, host := range cfg.Database.ReadReplicas {
			replicas = append(replicas, postgres.Open(replicaDSN(cfg, host)))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("failed to register read replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := gormModels.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("read_replicas", len(cfg.Database.ReadReplicas)),
	)

	return db, nil
}

func replicaDSN(cfg *config.Config, host string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		cfg.Database.Port,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)
}
