// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paginatedEnvelope struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
	Meta    PageMeta `json:"meta"`
}

func TestPaginated_TotalPagesCeiling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		pageSize   int
		total      int
		totalPages int
	}{
		{"empty result set", 1, 25, 0, 0},
		{"exact single page", 1, 25, 25, 1},
		{"one over a boundary", 1, 25, 26, 2},
		{"partial last page", 5, 25, 101, 5},
		{"total equals page size", 1, 100, 100, 1},
		{"single row", 1, 25, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			Paginated(rec, []string{"row"}, tt.page, tt.pageSize, tt.total)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(
				t,
				"application/json",
				rec.Header().Get("Content-Type"),
			)

			var body paginatedEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			assert.True(t, body.Success)
			assert.Equal(t, tt.page, body.Meta.Page)
			assert.Equal(t, tt.pageSize, body.Meta.PageSize)
			assert.Equal(t, tt.total, body.Meta.Total)
			assert.Equal(t, tt.totalPages, body.Meta.TotalPages)
		})
	}
}

func TestPaginated_ZeroPageSize(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Paginated(rec, []string{}, 1, 0, 10)

	var body paginatedEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// Division guard: a zero page size never panics and reports zero pages.
	assert.Equal(t, 0, body.Meta.TotalPages)
}
