// AngelaMos | 2026
// context.go

package middleware

import (
	"context"

	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
)

type contextKey string

const (
	IdentityKey  contextKey = "identity"
	RequestIDKey contextKey = "request_id"
)

// Identity is the per-request resolved caller: token subject plus the live
// user row fetched during resolution. Authorization decisions read this,
// never raw token claims.
type Identity struct {
	UserID   string
	Username string
	Role     policy.Role
	AgentID  string
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return id
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.UserID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
