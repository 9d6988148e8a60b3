// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=1,max=64"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Role     string  `json:"role" validate:"required,oneof=user admin super_admin"`
	AgentID  *string `json:"agent_id,omitempty" validate:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin super_admin"`
	AgentID  *string `json:"agent_id,omitempty" validate:"omitempty,uuid"`
	Active   *bool   `json:"active,omitempty"`
}

type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email,omitempty"`
	Role      string     `json:"role"`
	AgentID   *string    `json:"agent_id,omitempty"`
	AgentName *string    `json:"agent_name,omitempty"`
	Active    bool       `json:"active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		AgentID:   u.AgentID,
		Active:    u.Active,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

func ToUserResponseList(users []UserWithAgent) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp := ToUserResponse(&u.User)
		resp.AgentName = u.AgentName
		responses = append(responses, resp)
	}
	return responses
}
