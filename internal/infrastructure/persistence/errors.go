package persistence

import (
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateError maps driver and ORM errors onto the storage errors the
// domain understands. Classification goes through the dialector's
// gorm.ErrorTranslator; the raw driver error is kept only to name the
// offending column. Anything unrecognised is returned unchanged.
func translateError(db *gorm.DB, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}

	classified := err
	if translator, ok := db.Dialector.(gorm.ErrorTranslator); ok {
		classified = translator.Translate(err)
	}
	if !errors.Is(classified, gorm.ErrDuplicatedKey) && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &shared.UniqueViolationError{
			Field:      fieldFromConstraint(pgErr.TableName, pgErr.ConstraintName),
			Constraint: pgErr.ConstraintName,
		}
	}
	return &shared.UniqueViolationError{Field: fieldFromSQLiteMessage(err.Error())}
}

// fieldFromSQLiteMessage reads the first column out of
// "UNIQUE constraint failed: customers.email".
func fieldFromSQLiteMessage(msg string) string {
	_, cols, ok := strings.Cut(msg, "constraint failed: ")
	if !ok {
		return ""
	}
	col := strings.SplitN(cols, ",", 2)[0]
	if _, field, found := strings.Cut(col, "."); found {
		col = field
	}
	return strings.TrimSpace(col)
}

// fieldFromConstraint derives the column from postgres' default constraint
// naming, <table>_<column>_key.
func fieldFromConstraint(table, constraint string) string {
	name := constraint
	for _, suffix := range []string{"_key", "_unique", "_idx"} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			name = trimmed
			break
		}
	}
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	} else if _, rest, ok := strings.Cut(name, "_"); ok {
		name = rest
	}
	return name
}
