// AngelaMos | 2026
// entity.go

package visitor

import "time"

// Visitor is a captured lead. Sync state lives on the record itself:
// CincSynced flips to true only after the downstream CRM accepts the lead,
// and a crash between the insert and the sync write leaves the lead
// persisted but unsynced, which is recoverable.
type Visitor struct {
	ID               string     `db:"id"                 json:"id"`
	BuyerName        string     `db:"buyer_name"         json:"buyer_name"`
	BuyerPhone       string     `db:"buyer_phone"        json:"buyer_phone"`
	BuyerEmail       *string    `db:"buyer_email"        json:"buyer_email,omitempty"`
	PurchaseTimeline *string    `db:"purchase_timeline"  json:"purchase_timeline,omitempty"`
	PriceRange       *string    `db:"price_range"        json:"price_range,omitempty"`
	LocationLooking  *string    `db:"location_looking"   json:"location_looking,omitempty"`
	LocationCurrent  *string    `db:"location_current"   json:"location_current,omitempty"`
	Occupation       *string    `db:"occupation"         json:"occupation,omitempty"`
	Represented      bool       `db:"represented"        json:"represented"`
	AgentName        *string    `db:"agent_name"         json:"agent_name,omitempty"`
	CapturingAgentID string     `db:"capturing_agent_id" json:"capturing_agent_id"`
	Site             string     `db:"site"               json:"site"`
	CincSynced       bool       `db:"cinc_synced"        json:"cinc_synced"`
	CincSyncAt       *time.Time `db:"cinc_sync_at"       json:"cinc_sync_at,omitempty"`
	CincLeadID       *string    `db:"cinc_lead_id"       json:"cinc_lead_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"         json:"updated_at"`
}

// VisitorDetail joins in the capturing agent's display name for listings
// and exports.
type VisitorDetail struct {
	Visitor
	CapturingAgentName *string `db:"capturing_agent_name" json:"capturing_agent_name,omitempty"`
}

// Note is an append-only annotation on a visitor. Never updated after
// creation.
type Note struct {
	ID        string    `db:"id"         json:"id"`
	VisitorID string    `db:"visitor_id" json:"visitor_id"`
	AgentID   string    `db:"agent_id"   json:"agent_id"`
	Note      string    `db:"note"       json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NoteWithAgent carries the authoring agent's name for display.
type NoteWithAgent struct {
	Note
	AgentName string `db:"agent_name" json:"agent_name"`
}
