// AngelaMos | 2026
// dto.go

package visitor

import "time"

type CreateVisitorRequest struct {
	BuyerName        string  `json:"buyer_name"         validate:"required,min=1,max=200"`
	BuyerPhone       string  `json:"buyer_phone"        validate:"required,min=7,max=30"`
	BuyerEmail       *string `json:"buyer_email"        validate:"omitempty,email"`
	PurchaseTimeline *string `json:"purchase_timeline"  validate:"omitempty,max=100"`
	PriceRange       *string `json:"price_range"        validate:"omitempty,max=100"`
	LocationLooking  *string `json:"location_looking"   validate:"omitempty,max=200"`
	LocationCurrent  *string `json:"location_current"   validate:"omitempty,max=200"`
	Occupation       *string `json:"occupation"         validate:"omitempty,max=200"`
	Represented      bool    `json:"represented"`
	AgentName        *string `json:"agent_name"         validate:"omitempty,max=200"`
	CapturingAgentID string  `json:"capturing_agent_id" validate:"required,uuid"`
	Site             string  `json:"site"               validate:"required,min=1,max=100"`

	// Optional first note, stored as the visitor's initial annotation.
	Notes *string `json:"notes" validate:"omitempty,max=5000"`
}

type AddNoteRequest struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
	Note    string `json:"note"     validate:"required,min=1,max=5000"`
}

// CreateVisitorResponse reports the stored record plus the sync attempt's
// outcome. SyncError is diagnostic only; the lead is durable either way.
type CreateVisitorResponse struct {
	Visitor   *Visitor `json:"visitor"`
	Synced    bool     `json:"synced"`
	SyncError string   `json:"sync_error,omitempty"`
}

type VisitorDetailResponse struct {
	Visitor *VisitorDetail  `json:"visitor"`
	Notes   []NoteWithAgent `json:"notes"`
}

type ListVisitorsResponse struct {
	Visitors []VisitorDetail `json:"visitors"`
}

type StatsResponse struct {
	TotalVisitors int64     `json:"total_visitors"`
	TodayVisitors int64     `json:"today_visitors"`
	CincSynced    int64     `json:"cinc_synced"`
	GeneratedAt   time.Time `json:"generated_at"`
}
