package seed

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var adminSeed = config.SeedConfig{
	AdminEmail:    "admin@example.com",
	AdminPassword: "Admin12345",
	AdminName:     "Administrator",
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	db := persistencetest.NewSQLite(t)
	s := New(db, 42, zap.NewNop())
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, adminSeed)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin(ctx, adminSeed)
	require.NoError(t, err)
	assert.False(t, created)

	user, err := persistence.NewGormUserRepository(db.DB).FindByEmail(ctx, adminSeed.AdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "Administrator", user.Name)
	assert.True(t, user.VerifyPassword("Admin12345"))
}

func TestEnsureAdmin_WeakPassword(t *testing.T) {
	db := persistencetest.NewSQLite(t)
	s := New(db, 42, zap.NewNop())

	cfg := adminSeed
	cfg.AdminPassword = "short"
	_, err := s.EnsureAdmin(context.Background(), cfg)
	assert.Error(t, err)
}

func TestDemo(t *testing.T) {
	db := persistencetest.NewSQLite(t)
	s := New(db, 7, zap.NewNop())

	customers, orders, err := s.Demo(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, customers)
	assert.LessOrEqual(t, orders, 20*maxOrdersPerCustomer)

	var customerRows, orderRows int64
	require.NoError(t, db.DB.Table("customers").Count(&customerRows).Error)
	require.NoError(t, db.DB.Table("orders").Count(&orderRows).Error)
	assert.EqualValues(t, 20, customerRows)
	assert.EqualValues(t, orders, orderRows)
}

func TestDemo_RunsTwiceWithSameSeed(t *testing.T) {
	db := persistencetest.NewSQLite(t)
	ctx := context.Background()

	_, _, err := New(db, 1, zap.NewNop()).Demo(ctx, 5)
	require.NoError(t, err)
	_, _, err = New(db, 1, zap.NewNop()).Demo(ctx, 5)
	require.NoError(t, err)

	var rows int64
	require.NoError(t, db.DB.Table("customers").Count(&rows).Error)
	assert.EqualValues(t, 10, rows)

	var distinct int64
	require.NoError(t, db.DB.Table("customers").Distinct("email").Count(&distinct).Error)
	assert.EqualValues(t, 10, distinct)
}
