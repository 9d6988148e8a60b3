// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tlogandesigns/site-visitor-dash/internal/auth"
	"github.com/tlogandesigns/site-visitor-dash/internal/config"
	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/middleware"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
)

// AgentChecker verifies that a referenced agent exists before a user record
// is linked to it.
type AgentChecker interface {
	Exists(ctx context.Context, agentID string) (bool, error)
}

type Service struct {
	repo   Repository
	agents AgentChecker
}

func NewService(repo Repository, agents AgentChecker) *Service {
	return &Service{repo: repo, agents: agents}
}

// Create provisions a user on behalf of actor. All tier rules go through
// the policy package: admins may not mint super admins, and a user-role
// account must carry an agent link for visibility scoping to work.
func (s *Service) Create(
	ctx context.Context,
	actor *middleware.Identity,
	req CreateUserRequest,
) (*User, error) {
	role := policy.Role(req.Role)

	if !policy.CanAssignRole(actor.Role, role) {
		return nil, fmt.Errorf(
			"create user: only a super admin can create super admin accounts: %w",
			core.ErrForbidden,
		)
	}

	if role == policy.RoleUser && req.AgentID == nil {
		return nil, fmt.Errorf(
			"create user: user-role accounts require an agent link: %w",
			core.ErrInvalidInput,
		)
	}

	if err := s.checkAgentLink(ctx, req.AgentID); err != nil {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		AgentID:      req.AgentID,
		Active:       true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) List(ctx context.Context) ([]UserWithAgent, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update to a target user. Both the target's
// current role and any newly assigned role must be within the actor's
// reach; deactivating yourself is always refused.
func (s *Service) Update(
	ctx context.Context,
	actor *middleware.Identity,
	targetID string,
	req UpdateUserRequest,
) (*User, error) {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !policy.CanManageUserRecord(actor.Role, policy.Role(target.Role)) {
		return nil, fmt.Errorf(
			"update user: only a super admin can modify super admin accounts: %w",
			core.ErrForbidden,
		)
	}

	if req.Role != nil {
		newRole := policy.Role(*req.Role)
		if !policy.CanAssignRole(actor.Role, newRole) {
			return nil, fmt.Errorf(
				"update user: only a super admin can assign the super admin role: %w",
				core.ErrForbidden,
			)
		}
		target.Role = *req.Role
	}

	if req.Active != nil && !*req.Active && targetID == actor.UserID {
		return nil, fmt.Errorf(
			"update user: cannot deactivate your own account: %w",
			core.ErrForbidden,
		)
	}

	if req.AgentID != nil {
		if err := s.checkAgentLink(ctx, req.AgentID); err != nil {
			return nil, err
		}
		target.AgentID = req.AgentID
	}

	if req.Email != nil {
		target.Email = req.Email
	}

	if req.Password != nil {
		hash, hashErr := core.HashPassword(*req.Password)
		if hashErr != nil {
			return nil, hashErr
		}
		target.PasswordHash = hash
	}

	if req.Active != nil {
		target.Active = *req.Active
	}

	if policy.Role(target.Role) == policy.RoleUser && target.AgentID == nil {
		return nil, fmt.Errorf(
			"update user: user-role accounts require an agent link: %w",
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}

	return target, nil
}

// Deactivate logically deletes a user. Records are never hard-deleted so
// captured leads keep their referential history.
func (s *Service) Deactivate(
	ctx context.Context,
	actor *middleware.Identity,
	targetID string,
) error {
	if targetID == actor.UserID {
		return fmt.Errorf(
			"deactivate user: cannot deactivate your own account: %w",
			core.ErrForbidden,
		)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if !policy.CanManageUserRecord(actor.Role, policy.Role(target.Role)) {
		return fmt.Errorf(
			"deactivate user: only a super admin can deactivate super admin accounts: %w",
			core.ErrForbidden,
		)
	}

	return s.repo.Deactivate(ctx, targetID)
}

// SeedSuperAdmin ensures the configured break-glass super admin exists and
// matches the configured credentials. Runs once at startup.
func (s *Service) SeedSuperAdmin(
	ctx context.Context,
	cfg config.BootstrapConfig,
) error {
	if cfg.SuperAdminPassword == "" {
		return nil
	}

	passwordHash, err := core.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	return s.repo.UpsertSuperAdmin(
		ctx,
		uuid.New().String(),
		cfg.SuperAdminUsername,
		passwordHash,
		cfg.SuperAdminEmail,
	)
}

func (s *Service) checkAgentLink(ctx context.Context, agentID *string) error {
	if agentID == nil {
		return nil
	}

	exists, err := s.agents.Exists(ctx, *agentID)
	if err != nil {
		return fmt.Errorf("check agent link: %w", err)
	}

	if !exists {
		return fmt.Errorf("check agent link: agent: %w", core.ErrNotFound)
	}

	return nil
}

// GetActiveByUsername implements the authenticator's credential lookup.
func (s *Service) GetActiveByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetActiveByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		AgentID:      u.AgentID,
	}, nil
}

func (s *Service) TouchLastLogin(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID)
}

var _ auth.CredentialStore = (*Service)(nil)
