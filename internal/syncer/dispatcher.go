// AngelaMos | 2026
// dispatcher.go

package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tlogandesigns/site-visitor-dash/internal/config"
)

const sourceName = "New Homes Lead Tracker"

// Lead is the dispatcher's view of a captured prospect, flattened to what
// the webhook needs. Callers map their records into this before dispatch.
type Lead struct {
	ID         string
	BuyerName  string
	BuyerPhone string
	BuyerEmail string

	PurchaseTimeline  string
	PriceRange        string
	LocationLooking   string
	LocationCurrent   string
	Occupation        string
	Represented       bool
	RepresentingAgent string

	AgentName   string
	AgentEmail  string
	AgentCincID string
	Site        string

	Notes     string
	CreatedAt time.Time
}

// Outcome reports a single delivery attempt. OK means the webhook accepted
// the payload; Err carries a diagnostic string otherwise. Neither state is
// an application error: the lead is already durable when dispatch runs.
type Outcome struct {
	OK             bool
	ProviderStatus int
	Err            string
}

// Payload is the webhook wire format. Field names follow the downstream
// CRM mapping and must not change without coordinating with the receiver.
type Payload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	AgentName   string `json:"agentName"`
	AgentEmail  string `json:"agentEmail"`
	AgentCincID string `json:"agentCincId"`
	Site        string `json:"site"`

	PurchaseTimeline  string `json:"purchaseTimeline"`
	PriceRange        string `json:"priceRange"`
	LocationLooking   string `json:"locationLooking"`
	LocationCurrent   string `json:"locationCurrent"`
	Occupation        string `json:"occupation"`
	Represented       string `json:"represented"`
	RepresentingAgent string `json:"representingAgent"`

	Source    string `json:"source"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
	VisitDate string `json:"visitDate"`
}

// Dispatcher forwards newly created leads to the configured webhook.
// Best effort: one attempt, bounded timeout, no retry, no queue.
type Dispatcher struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

func NewDispatcher(cfg config.SyncConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Dispatch sends one lead. A missing webhook URL is a deployment-time
// opt-out and short-circuits without touching the network.
func (d *Dispatcher) Dispatch(ctx context.Context, lead Lead) Outcome {
	if d.webhookURL == "" {
		return Outcome{OK: false, Err: "sync webhook not configured"}
	}

	body, err := json.Marshal(BuildPayload(lead))
	if err != nil {
		return Outcome{OK: false, Err: fmt.Sprintf("encode payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body),
	)
	if err != nil {
		return Outcome{OK: false, Err: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("lead sync delivery failed",
			slog.String("visitor_id", lead.ID),
			slog.String("error", err.Error()),
		)
		return Outcome{OK: false, Err: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		d.logger.Warn("lead sync rejected",
			slog.String("visitor_id", lead.ID),
			slog.Int("status", resp.StatusCode),
		)
		return Outcome{
			OK:             false,
			ProviderStatus: resp.StatusCode,
			Err:            fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}
	}

	return Outcome{OK: true, ProviderStatus: resp.StatusCode}
}

// BuildPayload normalizes a lead for the webhook: display name split into
// first/last at the first whitespace run, booleans rendered Yes/No, and
// every optional field defaulted to the empty string.
func BuildPayload(lead Lead) Payload {
	first, last := splitName(lead.BuyerName)

	visitDate := lead.CreatedAt
	if visitDate.IsZero() {
		visitDate = time.Now()
	}

	return Payload{
		FirstName: first,
		LastName:  last,
		FullName:  lead.BuyerName,
		Email:     lead.BuyerEmail,
		Phone:     lead.BuyerPhone,

		AgentName:   lead.AgentName,
		AgentEmail:  lead.AgentEmail,
		AgentCincID: lead.AgentCincID,
		Site:        lead.Site,

		PurchaseTimeline:  lead.PurchaseTimeline,
		PriceRange:        lead.PriceRange,
		LocationLooking:   lead.LocationLooking,
		LocationCurrent:   lead.LocationCurrent,
		Occupation:        lead.Occupation,
		Represented:       yesNo(lead.Represented),
		RepresentingAgent: lead.RepresentingAgent,

		Source:    sourceName,
		Notes:     lead.Notes,
		Timestamp: time.Now().Format(time.RFC3339),
		VisitDate: visitDate.Format(time.RFC3339),
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
