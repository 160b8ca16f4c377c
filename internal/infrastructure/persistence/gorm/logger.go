package gorm

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ParseLogLevel maps a config string to a GORM log level. Unknown values
// fall back to warn.
func ParseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// NewLogger routes GORM logs through zap. A nil zap logger yields GORM's
// default stdout logger.
func NewLogger(log *zap.Logger, level string) gormlogger.Interface {
	if log == nil {
		return gormlogger.Default.LogMode(ParseLogLevel(level))
	}

	return gormlogger.New(
		zapPrinter{log: log.Named("gorm")},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  ParseLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

type zapPrinter struct {
	log *zap.Logger
}

func (p zapPrinter) Printf(format string, args ...interface{}) {
	p.log.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
