// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	Email        *string    `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	AgentID      *string    `db:"agent_id"`
	Active       bool       `db:"active"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
