// AngelaMos | 2026
// repository.go

package agent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tlogandesigns/site-visitor-dash/internal/core"
)

type Repository interface {
	Create(ctx context.Context, agent *Agent) error
	GetByID(ctx context.Context, id string) (*Agent, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Agent, error)
	ListSites(ctx context.Context) ([]string, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, agent *Agent) error {
	query := `
		INSERT INTO agents (id, name, cinc_id, site, email, phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, agent, query,
		agent.ID,
		agent.Name,
		agent.CincID,
		agent.Site,
		agent.Email,
		agent.Phone,
		agent.Active,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create agent: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create agent: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Agent, error) {
	query := `
		SELECT id, name, cinc_id, site, email, phone, active, created_at
		FROM agents
		WHERE id = $1`

	var agent Agent
	err := r.db.GetContext(ctx, &agent, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get agent: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}

	return &agent, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM agents WHERE id = $1 AND active = true)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check agent exists: %w", err)
	}

	return exists, nil
}

func (r *repository) List(ctx context.Context) ([]Agent, error) {
	query := `
		SELECT id, name, cinc_id, site, email, phone, active, created_at
		FROM agents
		ORDER BY site, name`

	agents := []Agent{}
	if err := r.db.SelectContext(ctx, &agents, query); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	return agents, nil
}

func (r *repository) ListSites(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT site FROM agents WHERE active = true ORDER BY site`

	sites := []string{}
	if err := r.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	return sites, nil
}
