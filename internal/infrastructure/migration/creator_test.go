package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/crm/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"Add Orders 123", "add_orders_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("starts at version one in an empty directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "migrations")

		mf, err := CreateMigration(dir, "create customers", "Customer table")
		require.NoError(t, err)

		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_create_customers.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_create_customers.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: create customers")
		assert.Contains(t, string(up), "-- Description: Customer table")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "(Rollback)")
	})

	t.Run("continues after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000001_a.up.sql", "000002_b.up.sql", "000002_b.down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		mf, err := CreateMigration(dir, "add index", "")
		require.NoError(t, err)
		assert.Equal(t, "000003", mf.Version)
	})

	t.Run("rejects names without usable characters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations sorted", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_b.up.sql":   {},
			"000002_b.down.sql": {},
			"000001_a.up.sql":   {},
			"000001_a.down.sql": {},
			"README.md":         {},
			"nested/x.up.sql":   {},
		}

		got, err := ListMigrations(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_a", "000002_b"}, got)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		got, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "nope")))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_users",
		"000002_create_customers",
		"000003_create_orders",
	}, names)

	for _, name := range names {
		_, err := fs.Stat(migrations.FS, name+".down.sql")
		assert.NoError(t, err, "missing down migration for %s", name)
	}

	orders, err := fs.ReadFile(migrations.FS, "000003_create_orders.up.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(orders), "ON DELETE CASCADE"))
}
