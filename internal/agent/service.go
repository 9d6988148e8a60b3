// AngelaMos | 2026
// service.go

package agent

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	a := &Agent{
		ID:     uuid.New().String(),
		Name:   req.Name,
		CincID: req.CincID,
		Site:   req.Site,
		Email:  req.Email,
		Phone:  req.Phone,
		Active: true,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) List(ctx context.Context) ([]Agent, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListSites(ctx context.Context) ([]string, error) {
	return s.repo.ListSites(ctx)
}

// Exists reports whether an active agent with the given id is present.
// Used by the user module to validate agent links.
func (s *Service) Exists(ctx context.Context, agentID string) (bool, error) {
	return s.repo.Exists(ctx, agentID)
}
