package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
		offset        int
	}{
		{"defaults", 0, 0, 1, 10, 0},
		{"explicit", 3, 20, 3, 20, 40},
		{"limit capped", 1, 500, 1, 100, 0},
		{"negative page", -2, 5, 1, 5, 0},
		{"huge page saturates", math.MaxInt, 10, math.MaxInt, 10, math.MaxInt},
		{"largest exact offset", math.MaxInt/100 + 1, 100, math.MaxInt/100 + 1, 100, math.MaxInt / 100 * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit)
			assert.Equal(t, tt.expectedPage, p.Page)
			assert.Equal(t, tt.expectedLimit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{250, 100, 3},
	}

	for _, tt := range tests {
		p := NewPagination(Page{Page: 1, Limit: tt.limit}, tt.total)
		assert.Equal(t, tt.pages, p.Pages, "total=%d limit=%d", tt.total, tt.limit)
		assert.Equal(t, tt.total, p.Total)
	}
}

func TestNewPaginated_NilItems(t *testing.T) {
	result := NewPaginated[string](nil, NewPage(1, 10), 0)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}
