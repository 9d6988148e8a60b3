// AngelaMos | 2026
// repository.go

package visitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
)

type Repository interface {
	Create(ctx context.Context, v *Visitor) error
	GetByID(ctx context.Context, id string) (*VisitorDetail, error)
	List(ctx context.Context, q *Query) ([]VisitorDetail, int, error)
	ListAll(ctx context.Context, q *Query) ([]VisitorDetail, error)
	Delete(ctx context.Context, id string) error
	MarkSynced(ctx context.Context, id string, at time.Time, leadID *string) error
	AddNote(ctx context.Context, note *Note) error
	ListNotes(ctx context.Context, visitorID string) ([]NoteWithAgent, error)
	NotesByVisitor(
		ctx context.Context,
		visitorIDs []string,
	) (map[string][]NoteWithAgent, error)
	Stats(ctx context.Context, scope policy.Scope, site string) (*StatsResponse, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v *Visitor) error {
	query := `
		INSERT INTO visitors (
			id, buyer_name, buyer_phone, buyer_email, purchase_timeline,
			price_range, location_looking, location_current, occupation,
			represented, agent_name, capturing_agent_id, site
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING cinc_synced, created_at, updated_at`

	err := r.db.GetContext(ctx, v, query,
		v.ID,
		v.BuyerName,
		v.BuyerPhone,
		v.BuyerEmail,
		v.PurchaseTimeline,
		v.PriceRange,
		v.LocationLooking,
		v.LocationCurrent,
		v.Occupation,
		v.Represented,
		v.AgentName,
		v.CapturingAgentID,
		v.Site,
	)
	if err != nil {
		return fmt.Errorf("create visitor: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*VisitorDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM visitors v
		LEFT JOIN agents a ON v.capturing_agent_id = a.id
		WHERE v.id = $1`, detailColumns)

	var detail VisitorDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get visitor: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get visitor: %w", err)
	}

	return &detail, nil
}

// List executes the compiled query twice against the same predicate: once
// for the total count, once for the page slice.
func (r *repository) List(
	ctx context.Context,
	q *Query,
) ([]VisitorDetail, int, error) {
	countSQL, countArgs := q.CountSQL()

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count visitors: %w", err)
	}

	pageSQL, pageArgs := q.PageSQL()

	visitors := []VisitorDetail{}
	if err := r.db.SelectContext(ctx, &visitors, pageSQL, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("list visitors: %w", err)
	}

	return visitors, total, nil
}

func (r *repository) ListAll(
	ctx context.Context,
	q *Query,
) ([]VisitorDetail, error) {
	allSQL, args := q.AllRowsSQL()

	visitors := []VisitorDetail{}
	if err := r.db.SelectContext(ctx, &visitors, allSQL, args...); err != nil {
		return nil, fmt.Errorf("export visitors: %w", err)
	}

	return visitors, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM visitors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete visitor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete visitor: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete visitor: %w", core.ErrNotFound)
	}

	return nil
}

// MarkSynced records a successful delivery. This is a second, independent
// write after the insert; the lead survives even if this write never runs.
func (r *repository) MarkSynced(
	ctx context.Context,
	id string,
	at time.Time,
	leadID *string,
) error {
	query := `
		UPDATE visitors
		SET cinc_synced = true, cinc_sync_at = $2, cinc_lead_id = $3,
		    updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at, leadID); err != nil {
		return fmt.Errorf("mark visitor synced: %w", err)
	}

	return nil
}

// AddNote inserts the note and bumps the visitor's updated_at in one
// transaction, so a visible note always moves the lead in recency sorts.
func (r *repository) AddNote(ctx context.Context, note *Note) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO visitor_notes (id, visitor_id, agent_id, note)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`

		err := tx.GetContext(ctx, note, query,
			note.ID,
			note.VisitorID,
			note.AgentID,
			note.Note,
		)
		if err != nil {
			return fmt.Errorf("add note: %w", err)
		}

		touch := `UPDATE visitors SET updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, touch, note.VisitorID); err != nil {
			return fmt.Errorf("touch visitor: %w", err)
		}

		return nil
	})
}

func (r *repository) ListNotes(
	ctx context.Context,
	visitorID string,
) ([]NoteWithAgent, error) {
	query := `
		SELECT n.id, n.visitor_id, n.agent_id, n.note, n.created_at,
		       a.name AS agent_name
		FROM visitor_notes n
		JOIN agents a ON n.agent_id = a.id
		WHERE n.visitor_id = $1
		ORDER BY n.created_at DESC`

	notes := []NoteWithAgent{}
	if err := r.db.SelectContext(ctx, &notes, query, visitorID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// NotesByVisitor batches note history for the CSV export so it stays a
// two-query operation regardless of row count.
func (r *repository) NotesByVisitor(
	ctx context.Context,
	visitorIDs []string,
) (map[string][]NoteWithAgent, error) {
	if len(visitorIDs) == 0 {
		return map[string][]NoteWithAgent{}, nil
	}

	query := `
		SELECT n.id, n.visitor_id, n.agent_id, n.note, n.created_at,
		       a.name AS agent_name
		FROM visitor_notes n
		JOIN agents a ON n.agent_id = a.id
		WHERE n.visitor_id = ANY($1)
		ORDER BY n.visitor_id, n.created_at ASC`

	notes := []NoteWithAgent{}
	if err := r.db.SelectContext(ctx, &notes, query, visitorIDs); err != nil {
		return nil, fmt.Errorf("batch notes: %w", err)
	}

	byVisitor := make(map[string][]NoteWithAgent, len(visitorIDs))
	for _, n := range notes {
		byVisitor[n.VisitorID] = append(byVisitor[n.VisitorID], n)
	}

	return byVisitor, nil
}

func (r *repository) Stats(
	ctx context.Context,
	scope policy.Scope,
	site string,
) (*StatsResponse, error) {
	sq := CompileStats(scope, site)

	stats := &StatsResponse{GeneratedAt: time.Now().UTC()}

	if err := r.db.GetContext(ctx, &stats.TotalVisitors, sq.totalSQL, sq.totalArgs...); err != nil {
		return nil, fmt.Errorf("stats total: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TodayVisitors, sq.todaySQL, sq.todayArgs...); err != nil {
		return nil, fmt.Errorf("stats today: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.CincSynced, sq.syncedSQL, sq.syncedArgs...); err != nil {
		return nil, fmt.Errorf("stats synced: %w", err)
	}

	return stats, nil
}
