// AngelaMos | 2026
// query_test.go

package visitor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
)

const ownAgentID = "7b6e9c4d-0000-4000-8000-000000000042"

func TestCompile_OwnScopeAlwaysPresent(t *testing.T) {
	t.Parallel()

	synced := true
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		params ListParams
	}{
		{"no filters", ListParams{}},
		{"site filter", ListParams{Site: "Maple Grove"}},
		{"every filter", ListParams{
			Site:       "Maple Grove",
			From:       &from,
			Timeline:   "0-3 months",
			PriceRange: "$400k-$500k",
			Synced:     &synced,
			Search:     "smith",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			q, err := Compile(policy.ScopeOwn(ownAgentID), tc.params)
			require.NoError(t, err)

			countSQL, countArgs := q.CountSQL()
			assert.Contains(t, countSQL, "v.capturing_agent_id = $1")
			require.NotEmpty(t, countArgs)
			assert.Equal(t, ownAgentID, countArgs[0])
		})
	}
}

func TestCompile_AllScopeHasNoAgentPredicate(t *testing.T) {
	t.Parallel()

	q, err := Compile(policy.ScopeAll(), ListParams{Site: "Maple Grove"})
	require.NoError(t, err)

	countSQL, countArgs := q.CountSQL()
	assert.NotContains(t, countSQL, "capturing_agent_id")
	assert.Equal(t, []any{"Maple Grove"}, countArgs)
}

func TestCompile_CountAndPageSharePredicate(t *testing.T) {
	t.Parallel()

	synced := false
	q, err := Compile(policy.ScopeOwn(ownAgentID), ListParams{
		Site:     "Maple Grove",
		Synced:   &synced,
		Search:   "555",
		Page:     3,
		PageSize: 10,
	})
	require.NoError(t, err)

	countSQL, countArgs := q.CountSQL()
	pageSQL, pageArgs := q.PageSQL()

	whereStart := strings.Index(countSQL, "WHERE")
	require.Positive(t, whereStart)
	where := countSQL[whereStart:]
	assert.Contains(t, pageSQL, where)

	// Page args are the count args plus limit and offset.
	require.Len(t, pageArgs, len(countArgs)+2)
	assert.Equal(t, countArgs, pageArgs[:len(countArgs)])
	assert.Equal(t, 10, pageArgs[len(pageArgs)-2])
	assert.Equal(t, 20, pageArgs[len(pageArgs)-1])
}

func TestCompile_SearchMatchesThreeColumns(t *testing.T) {
	t.Parallel()

	q, err := Compile(policy.ScopeAll(), ListParams{Search: "smith"})
	require.NoError(t, err)

	countSQL, countArgs := q.CountSQL()
	assert.Contains(t, countSQL, "v.buyer_name ILIKE $1")
	assert.Contains(t, countSQL, "v.buyer_phone ILIKE $2")
	assert.Contains(t, countSQL, "v.buyer_email ILIKE $3")
	assert.Equal(t, []any{"%smith%", "%smith%", "%smith%"}, countArgs)
}

func TestCompile_SortAllowList(t *testing.T) {
	t.Parallel()

	for _, field := range []string{"created_at", "buyer_name", "site", "updated_at"} {
		q, err := Compile(policy.ScopeAll(), ListParams{SortBy: field})
		require.NoError(t, err, field)

		pageSQL, _ := q.PageSQL()
		assert.Contains(t, pageSQL, "ORDER BY v."+field+" DESC")
	}
}

func TestCompile_UnknownSortFieldRejected(t *testing.T) {
	t.Parallel()

	for _, field := range []string{
		"password_hash",
		"created_at; DROP TABLE visitors",
		"v.created_at",
		"random()",
	} {
		q, err := Compile(policy.ScopeAll(), ListParams{SortBy: field})
		require.ErrorIs(t, err, core.ErrInvalidSortField, field)
		assert.Nil(t, q, field)
	}
}

func TestCompile_UnknownSortDirectionRejected(t *testing.T) {
	t.Parallel()

	_, err := Compile(policy.ScopeAll(), ListParams{
		SortBy:  "created_at",
		SortDir: "desc; DROP TABLE visitors",
	})
	require.ErrorIs(t, err, core.ErrInvalidSortField)

	q, err := Compile(policy.ScopeAll(), ListParams{
		SortBy:  "buyer_name",
		SortDir: "ASC",
	})
	require.NoError(t, err)

	pageSQL, _ := q.PageSQL()
	assert.Contains(t, pageSQL, "ORDER BY v.buyer_name ASC")
}

func TestCompile_DefaultSortIsNewestFirst(t *testing.T) {
	t.Parallel()

	q, err := Compile(policy.ScopeAll(), ListParams{})
	require.NoError(t, err)

	pageSQL, _ := q.PageSQL()
	assert.Contains(t, pageSQL, "ORDER BY v.created_at DESC")
}

func TestCompile_PaginationClamped(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", 0, 0, 1, DefaultPageSize},
		{"negative page", -5, 50, 1, 50},
		{"oversized page size", 1, 1000, 1, MaxPageSize},
		{"in range untouched", 7, 42, 7, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			q, err := Compile(policy.ScopeAll(), ListParams{
				Page:     tc.page,
				PageSize: tc.size,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, q.Page())
			assert.Equal(t, tc.wantPageSize, q.PageSize())
		})
	}
}

func TestCompile_FilterValuesAreParameterized(t *testing.T) {
	t.Parallel()

	// A hostile filter value lands in the args, never in the SQL text.
	hostile := "'; DROP TABLE visitors; --"
	q, err := Compile(policy.ScopeOwn(ownAgentID), ListParams{Site: hostile})
	require.NoError(t, err)

	countSQL, countArgs := q.CountSQL()
	assert.NotContains(t, countSQL, "DROP TABLE")
	assert.Equal(t, []any{ownAgentID, hostile}, countArgs)
}

func TestCompile_DateRange(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	q, err := Compile(policy.ScopeAll(), ListParams{From: &from, To: &to})
	require.NoError(t, err)

	countSQL, countArgs := q.CountSQL()
	assert.Contains(t, countSQL, "v.created_at >= $1")
	assert.Contains(t, countSQL, "v.created_at <= $2")
	assert.Equal(t, []any{from, to}, countArgs)
}

func TestCompile_ExportSharesPredicateWithoutLimit(t *testing.T) {
	t.Parallel()

	q, err := Compile(policy.ScopeOwn(ownAgentID), ListParams{Site: "Maple Grove"})
	require.NoError(t, err)

	allSQL, allArgs := q.AllRowsSQL()
	countSQL, countArgs := q.CountSQL()

	whereStart := strings.Index(countSQL, "WHERE")
	require.Positive(t, whereStart)
	assert.Contains(t, allSQL, countSQL[whereStart:])
	assert.Equal(t, countArgs, allArgs)
	assert.NotContains(t, allSQL, "LIMIT")
}

func TestCompileStats_ScopeAppliesToEveryCount(t *testing.T) {
	t.Parallel()

	sq := CompileStats(policy.ScopeOwn(ownAgentID), "Maple Grove")

	for _, q := range []struct {
		sql  string
		args []any
	}{
		{sq.totalSQL, sq.totalArgs},
		{sq.todaySQL, sq.todayArgs},
		{sq.syncedSQL, sq.syncedArgs},
	} {
		assert.Contains(t, q.sql, "v.capturing_agent_id = $1")
		require.NotEmpty(t, q.args)
		assert.Equal(t, ownAgentID, q.args[0])
		assert.Equal(t, "Maple Grove", q.args[1])
	}

	assert.Contains(t, sq.todaySQL, "CURRENT_DATE")
	assert.Contains(t, sq.syncedSQL, "cinc_synced = true")
}
