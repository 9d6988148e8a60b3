// AngelaMos | 2026
// entity.go

package agent

import "time"

// Agent is a sales agent in the provider directory. CincID is the agent's
// identifier in the downstream CRM and is unique per site.
type Agent struct {
	ID        string    `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CincID    string    `db:"cinc_id"    json:"cinc_id"`
	Site      string    `db:"site"       json:"site"`
	Email     *string   `db:"email"      json:"email,omitempty"`
	Phone     *string   `db:"phone"      json:"phone,omitempty"`
	Active    bool      `db:"active"     json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
