package persistence

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching term anywhere.
// Wildcards inside term are escaped so they match literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// paginate applies newest-first ordering and the page window
func paginate(page shared.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC").
			Offset(page.Offset()).
			Limit(page.Limit)
	}
}
