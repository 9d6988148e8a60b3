// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/middleware"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
)

// UserInfo is the slice of the credential record the authenticator needs.
type UserInfo struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	AgentID      *string
}

// CredentialStore is implemented by the user service. Lookups only ever
// return active accounts: a deactivated user is indistinguishable from a
// missing one at this layer.
type CredentialStore interface {
	GetActiveByUsername(ctx context.Context, username string) (*UserInfo, error)
	TouchLastLogin(ctx context.Context, userID string) error
}

type Service struct {
	tokens *TokenManager
	users  CredentialStore
}

func NewService(tokens *TokenManager, users CredentialStore) *Service {
	return &Service{tokens: tokens, users: users}
}

// Login verifies credentials and issues a session token. Unknown usernames,
// inactive accounts, and wrong passwords all produce the same error so the
// endpoint leaks no account-existence signal.
func (s *Service) Login(
	ctx context.Context,
	username, password string,
) (*TokenResponse, error) {
	user, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(password, nil)
			return nil, core.InvalidCredentialsError()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(password, &user.PasswordHash) {
		return nil, core.InvalidCredentialsError()
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is advisory.
		slog.Warn("failed to update last login",
			"user_id", user.ID,
			"error", err,
		)
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Username:    user.Username,
		Role:        user.Role,
		AgentID:     user.AgentID,
	}, nil
}

// Resolve verifies the token, then re-fetches the live user record so role
// changes and deactivation take effect on the next request even though the
// token itself is never revoked.
func (s *Service) Resolve(
	ctx context.Context,
	token string,
) (*middleware.Identity, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetActiveByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve token: %w", core.ErrInactiveUser)
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	agentID := ""
	if user.AgentID != nil {
		agentID = *user.AgentID
	}

	return &middleware.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     policy.Role(user.Role),
		AgentID:  agentID,
	}, nil
}

var _ middleware.IdentityResolver = (*Service)(nil)
