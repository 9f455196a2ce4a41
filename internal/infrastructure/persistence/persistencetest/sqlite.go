// Package persistencetest provides throwaway SQLite databases for tests.
package persistencetest

import (
	"fmt"
	"testing"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// NewSQLite opens a private in-memory database with foreign keys enforced
// and the CRM schema applied. It is closed when the test finishes.
func NewSQLite(t testing.TB) *persistence.Database {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := persistence.Open(sqlite.Open(dsn), &config.DatabaseConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.DB.AutoMigrate(
		&models.UserModel{},
		&models.CustomerModel{},
		&models.OrderModel{},
	))
	return db
}
