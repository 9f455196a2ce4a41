package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteError marshals like go-sqlite3's Error, which is what the sqlite
// dialector inspects.
type sqliteError struct {
	Code         int
	ExtendedCode int
	msg          string
}

func (e sqliteError) Error() string { return e.msg }

func TestTranslateError(t *testing.T) {
	pg := &gorm.DB{Config: &gorm.Config{Dialector: postgres.New(postgres.Config{})}}
	lite := &gorm.DB{Config: &gorm.Config{Dialector: sqlite.Open(":memory:")}}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, translateError(pg, nil))
	})

	t.Run("record not found", func(t *testing.T) {
		err := translateError(pg, fmt.Errorf("query: %w", gorm.ErrRecordNotFound))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("postgres unique violation", func(t *testing.T) {
		err := translateError(pg, &pgconn.PgError{Code: "23505", TableName: "orders", ConstraintName: "orders_order_number_key"})
		var unique *shared.UniqueViolationError
		require.ErrorAs(t, err, &unique)
		assert.Equal(t, "order_number", unique.Field)
		assert.Equal(t, "orders_order_number_key", unique.Constraint)
	})

	t.Run("other postgres errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "orders_customer_id_fkey"}
		assert.Same(t, pgErr, translateError(pg, pgErr))
	})

	t.Run("gorm duplicated key without details", func(t *testing.T) {
		var unique *shared.UniqueViolationError
		require.ErrorAs(t, translateError(pg, gorm.ErrDuplicatedKey), &unique)
		assert.Empty(t, unique.Field)
	})

	t.Run("sqlite unique violation", func(t *testing.T) {
		var unique *shared.UniqueViolationError
		err := translateError(lite, sqliteError{Code: 19, ExtendedCode: 2067, msg: "UNIQUE constraint failed: customers.email"})
		require.ErrorAs(t, err, &unique)
		assert.Equal(t, "email", unique.Field)
	})

	t.Run("sqlite message alone is not a violation", func(t *testing.T) {
		err := errors.New("UNIQUE constraint failed: customers.email")
		assert.Same(t, err, translateError(lite, err))
	})

	t.Run("sqlite foreign key passes through", func(t *testing.T) {
		err := sqliteError{Code: 19, ExtendedCode: 787, msg: "FOREIGN KEY constraint failed"}
		assert.Equal(t, err, translateError(lite, err))
	})

	t.Run("unknown errors unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, translateError(pg, boom))
		assert.Same(t, boom, translateError(lite, boom))
	})
}

func TestFieldFromSQLiteMessage(t *testing.T) {
	assert.Equal(t, "email", fieldFromSQLiteMessage("UNIQUE constraint failed: customers.email"))
	assert.Equal(t, "order_number", fieldFromSQLiteMessage("UNIQUE constraint failed: orders.order_number, orders.id"))
	assert.Empty(t, fieldFromSQLiteMessage("disk I/O error"))
}

func TestFieldFromConstraint(t *testing.T) {
	tests := []struct {
		table, constraint, want string
	}{
		{"customers", "customers_email_key", "email"},
		{"orders", "orders_order_number_key", "order_number"},
		{"", "users_email_key", "email"},
		{"users", "users_email_unique", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldFromConstraint(tt.table, tt.constraint))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%ada%", containsPattern("ADA"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
}
