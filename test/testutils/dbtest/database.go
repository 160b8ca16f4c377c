// Package dbtest provides database testing utilities
package dbtest

import (
	"fmt"
	"testing"

	"github.com/alchemorsel/patisserie/internal/infrastructure/persistence/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDatabase opens a private in-memory SQLite database with the
// schema migrated. The database is closed when the test ends.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	// Shared cache keeps the in-memory database alive across pooled connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sqlite.SetupDatabase(dsn, "silent")
	require.NoError(t, err, "Failed to set up test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
