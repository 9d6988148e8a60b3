// AngelaMos | 2026
// dto.go

package agent

type CreateAgentRequest struct {
	Name   string  `json:"name"    validate:"required,min=1,max=200"`
	CincID string  `json:"cinc_id" validate:"required,min=1,max=100"`
	Site   string  `json:"site"    validate:"required,min=1,max=100"`
	Email  *string `json:"email"   validate:"omitempty,email"`
	Phone  *string `json:"phone"   validate:"omitempty,max=30"`
}
