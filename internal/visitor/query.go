// AngelaMos | 2026
// query.go

package visitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// sortColumns is the closed allow-list of sortable fields. The sort column
// is interpolated into SQL, so nothing outside this map may ever reach the
// ORDER BY clause.
var sortColumns = map[string]string{
	"created_at": "v.created_at",
	"buyer_name": "v.buyer_name",
	"site":       "v.site",
	"updated_at": "v.updated_at",
}

// ListParams are the caller-supplied listing criteria. All fields are
// optional; zero values mean "no filter".
type ListParams struct {
	Site       string
	From       *time.Time
	To         *time.Time
	Timeline   string
	PriceRange string
	Synced     *bool
	Search     string
	SortBy     string
	SortDir    string
	Page       int
	PageSize   int
}

// Query is a compiled, side-effect-free listing predicate. The count and
// the page slice are both derived from the same where clause and args, so
// total_pages always agrees with the rows returned.
type Query struct {
	where   string
	args    []any
	orderBy string

	page     int
	pageSize int
}

// condBuilder accumulates ANDed conditions with positional placeholders.
type condBuilder struct {
	conds []string
	args  []any
}

func (b *condBuilder) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", len(b.args)+i+1)
	}
	b.conds = append(b.conds, fmt.Sprintf(format, placeholders...))
	b.args = append(b.args, values...)
}

func (b *condBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// scopeConds seeds the builder with the mandatory visibility predicate.
// It runs before any caller-supplied filter and no filter can remove it.
func scopeConds(b *condBuilder, scope policy.Scope) {
	if !scope.All {
		b.add("v.capturing_agent_id = %s", scope.AgentID)
	}
}

// Compile merges the visibility scope with the caller's filters, sort and
// pagination into a single parameterized predicate. An unknown sort field
// or direction is rejected, never interpolated. Pagination is clamped to
// [1, MaxPageSize] rather than rejected.
func Compile(scope policy.Scope, p ListParams) (*Query, error) {
	b := &condBuilder{}
	scopeConds(b, scope)

	if p.Site != "" {
		b.add("v.site = %s", p.Site)
	}
	if p.From != nil {
		b.add("v.created_at >= %s", *p.From)
	}
	if p.To != nil {
		b.add("v.created_at <= %s", *p.To)
	}
	if p.Timeline != "" {
		b.add("v.purchase_timeline = %s", p.Timeline)
	}
	if p.PriceRange != "" {
		b.add("v.price_range = %s", p.PriceRange)
	}
	if p.Synced != nil {
		b.add("v.cinc_synced = %s", *p.Synced)
	}
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		b.add(
			"(v.buyer_name ILIKE %s OR v.buyer_phone ILIKE %s OR v.buyer_email ILIKE %s)",
			pattern, pattern, pattern,
		)
	}

	orderBy, err := resolveSort(p.SortBy, p.SortDir)
	if err != nil {
		return nil, err
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &Query{
		where:    b.where(),
		args:     b.args,
		orderBy:  orderBy,
		page:     page,
		pageSize: pageSize,
	}, nil
}

func resolveSort(field, dir string) (string, error) {
	if field == "" {
		field = "created_at"
	}
	column, ok := sortColumns[field]
	if !ok {
		return "", core.InvalidSortFieldError(field)
	}

	switch strings.ToLower(dir) {
	case "", "desc":
		return column + " DESC", nil
	case "asc":
		return column + " ASC", nil
	default:
		return "", core.InvalidSortFieldError(dir)
	}
}

func (q *Query) Page() int     { return q.page }
func (q *Query) PageSize() int { return q.pageSize }

// CountSQL returns the total-match query over the compiled predicate.
func (q *Query) CountSQL() (string, []any) {
	sql := strings.TrimSpace(fmt.Sprintf(
		"SELECT COUNT(*) FROM visitors v %s", q.where,
	))
	return sql, q.args
}

const detailColumns = `
	v.id, v.buyer_name, v.buyer_phone, v.buyer_email, v.purchase_timeline,
	v.price_range, v.location_looking, v.location_current, v.occupation,
	v.represented, v.agent_name, v.capturing_agent_id, v.site,
	v.cinc_synced, v.cinc_sync_at, v.cinc_lead_id, v.created_at, v.updated_at,
	a.name AS capturing_agent_name`

// PageSQL returns the page-slice query over the same predicate as CountSQL.
// Limit and offset join the argument list as ordinary parameters.
func (q *Query) PageSQL() (string, []any) {
	n := len(q.args)
	sql := fmt.Sprintf(`
		SELECT %s
		FROM visitors v
		LEFT JOIN agents a ON v.capturing_agent_id = a.id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		detailColumns, q.where, q.orderBy, n+1, n+2,
	)

	args := make([]any, 0, n+2)
	args = append(args, q.args...)
	args = append(args, q.pageSize, (q.page-1)*q.pageSize)
	return sql, args
}

// AllRowsSQL returns the unpaginated variant, used by the CSV export. Same
// predicate, same order, no limit.
func (q *Query) AllRowsSQL() (string, []any) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM visitors v
		LEFT JOIN agents a ON v.capturing_agent_id = a.id
		%s
		ORDER BY %s`,
		detailColumns, q.where, q.orderBy,
	)
	return sql, q.args
}

// StatsQuery compiles the three dashboard counts under one scope and
// optional site filter. Each count reuses the same seeded predicate.
type StatsQuery struct {
	totalSQL  string
	totalArgs []any

	todaySQL  string
	todayArgs []any

	syncedSQL  string
	syncedArgs []any
}

func CompileStats(scope policy.Scope, site string) *StatsQuery {
	base := func() *condBuilder {
		b := &condBuilder{}
		scopeConds(b, scope)
		if site != "" {
			b.add("v.site = %s", site)
		}
		return b
	}

	total := base()

	today := base()
	today.conds = append(today.conds, "v.created_at::date = CURRENT_DATE")

	synced := base()
	synced.conds = append(synced.conds, "v.cinc_synced = true")

	count := func(b *condBuilder) (string, []any) {
		return strings.TrimSpace(fmt.Sprintf(
			"SELECT COUNT(*) FROM visitors v %s", b.where(),
		)), b.args
	}

	sq := &StatsQuery{}
	sq.totalSQL, sq.totalArgs = count(total)
	sq.todaySQL, sq.todayArgs = count(today)
	sq.syncedSQL, sq.syncedArgs = count(synced)
	return sq
}
