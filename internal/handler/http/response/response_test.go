package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int64
		wantPages int
	}{
		{"exact pages", 1, 20, 40, 2},
		{"partial last page", 3, 20, 41, 3},
		{"empty result", 1, 20, 0, 1},
		{"no limit", 1, 0, 12, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.page, meta.Page)
			assert.Equal(t, tt.total, meta.TotalItems)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
		})
	}
}
