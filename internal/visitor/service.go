// AngelaMos | 2026
// service.go

package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tlogandesigns/site-visitor-dash/internal/agent"
	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/middleware"
	"github.com/tlogandesigns/site-visitor-dash/internal/policy"
	"github.com/tlogandesigns/site-visitor-dash/internal/syncer"
)

// Dispatcher delivers a new lead downstream. Implemented by the syncer
// package; faked in tests.
type Dispatcher interface {
	Dispatch(ctx context.Context, lead syncer.Lead) syncer.Outcome
}

type Service struct {
	repo       Repository
	agents     agent.Repository
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	agents agent.Repository,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		agents:     agents,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create commits the lead first, then attempts the downstream sync and
// records the outcome with a second write. Sync failure never fails the
// creation; the caller sees synced=false plus a diagnostic string.
func (s *Service) Create(
	ctx context.Context,
	req CreateVisitorRequest,
) (*CreateVisitorResponse, error) {
	capturingAgent, err := s.agents.GetByID(ctx, req.CapturingAgentID)
	if err != nil {
		return nil, err
	}

	v := &Visitor{
		ID:               uuid.New().String(),
		BuyerName:        req.BuyerName,
		BuyerPhone:       req.BuyerPhone,
		BuyerEmail:       req.BuyerEmail,
		PurchaseTimeline: req.PurchaseTimeline,
		PriceRange:       req.PriceRange,
		LocationLooking:  req.LocationLooking,
		LocationCurrent:  req.LocationCurrent,
		Occupation:       req.Occupation,
		Represented:      req.Represented,
		AgentName:        req.AgentName,
		CapturingAgentID: req.CapturingAgentID,
		Site:             req.Site,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	initialNote := ""
	if req.Notes != nil && *req.Notes != "" {
		initialNote = *req.Notes
		note := &Note{
			ID:        uuid.New().String(),
			VisitorID: v.ID,
			AgentID:   req.CapturingAgentID,
			Note:      initialNote,
		}
		if err := s.repo.AddNote(ctx, note); err != nil {
			// The lead is already durable; losing the initial note is
			// not worth failing the capture over.
			s.logger.Warn("initial note write failed",
				slog.String("visitor_id", v.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	outcome := s.dispatcher.Dispatch(ctx, buildLead(v, capturingAgent, initialNote))
	if outcome.OK {
		now := time.Now().UTC()
		if err := s.repo.MarkSynced(ctx, v.ID, now, nil); err != nil {
			// Delivery succeeded but the outcome write did not. The
			// record stays synced=false, which only means a redundant
			// re-delivery later.
			s.logger.Error("sync outcome write failed",
				slog.String("visitor_id", v.ID),
				slog.String("error", err.Error()),
			)
			core.SetSpanError(ctx, err)
			outcome = syncer.Outcome{OK: false, Err: "sync state not recorded"}
		} else {
			v.CincSynced = true
			v.CincSyncAt = &now
		}
	}

	return &CreateVisitorResponse{
		Visitor:   v,
		Synced:    outcome.OK,
		SyncError: outcome.Err,
	}, nil
}

func buildLead(v *Visitor, a *agent.Agent, initialNote string) syncer.Lead {
	lead := syncer.Lead{
		ID:         v.ID,
		BuyerName:  v.BuyerName,
		BuyerPhone: v.BuyerPhone,
		BuyerEmail: deref(v.BuyerEmail),

		PurchaseTimeline:  deref(v.PurchaseTimeline),
		PriceRange:        deref(v.PriceRange),
		LocationLooking:   deref(v.LocationLooking),
		LocationCurrent:   deref(v.LocationCurrent),
		Occupation:        deref(v.Occupation),
		Represented:       v.Represented,
		RepresentingAgent: deref(v.AgentName),

		Site:      v.Site,
		Notes:     initialNote,
		CreatedAt: v.CreatedAt,
	}

	if a != nil {
		lead.AgentName = a.Name
		lead.AgentEmail = deref(a.Email)
		lead.AgentCincID = a.CincID
	}

	return lead
}

// List compiles the caller's criteria under the identity's visibility
// scope and returns one page plus the total match count.
func (s *Service) List(
	ctx context.Context,
	identity *middleware.Identity,
	params ListParams,
) ([]VisitorDetail, int, *Query, error) {
	scope := policy.VisibilityScope(identity.Role, identity.AgentID)

	q, err := Compile(scope, params)
	if err != nil {
		return nil, 0, nil, err
	}

	visitors, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, nil, err
	}

	return visitors, total, q, nil
}

// Get returns one visitor with its note history. Out-of-scope records are
// refused, not hidden, matching the single-record semantics of the API.
func (s *Service) Get(
	ctx context.Context,
	identity *middleware.Identity,
	id string,
) (*VisitorDetailResponse, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scope := policy.VisibilityScope(identity.Role, identity.AgentID)
	if !scope.All && detail.CapturingAgentID != scope.AgentID {
		return nil, fmt.Errorf(
			"get visitor: outside caller's visibility scope: %w",
			core.ErrForbidden,
		)
	}

	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}

	return &VisitorDetailResponse{Visitor: detail, Notes: notes}, nil
}

func (s *Service) AddNote(
	ctx context.Context,
	identity *middleware.Identity,
	visitorID string,
	req AddNoteRequest,
) (*Note, error) {
	detail, err := s.repo.GetByID(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	scope := policy.VisibilityScope(identity.Role, identity.AgentID)
	if !scope.All && detail.CapturingAgentID != scope.AgentID {
		return nil, fmt.Errorf(
			"add note: outside caller's visibility scope: %w",
			core.ErrForbidden,
		)
	}

	note := &Note{
		ID:        uuid.New().String(),
		VisitorID: visitorID,
		AgentID:   req.AgentID,
		Note:      req.Note,
	}

	if err := s.repo.AddNote(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// Delete removes a lead. Restricted to admin tiers; plain users may
// capture and annotate but never delete, their own records included.
func (s *Service) Delete(
	ctx context.Context,
	identity *middleware.Identity,
	id string,
) error {
	if !policy.CanDeleteVisitor(identity.Role) {
		return fmt.Errorf(
			"delete visitor: role %s may not delete leads: %w",
			identity.Role, core.ErrForbidden,
		)
	}

	return s.repo.Delete(ctx, id)
}

// Export returns every in-scope visitor matching the filters, with each
// visitor's complete note history attached.
func (s *Service) Export(
	ctx context.Context,
	identity *middleware.Identity,
	params ListParams,
) ([]VisitorDetail, map[string][]NoteWithAgent, error) {
	scope := policy.VisibilityScope(identity.Role, identity.AgentID)

	q, err := Compile(scope, params)
	if err != nil {
		return nil, nil, err
	}

	visitors, err := s.repo.ListAll(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, len(visitors))
	for i, v := range visitors {
		ids[i] = v.ID
	}

	notes, err := s.repo.NotesByVisitor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	return visitors, notes, nil
}

func (s *Service) Stats(
	ctx context.Context,
	identity *middleware.Identity,
	site string,
) (*StatsResponse, error) {
	scope := policy.VisibilityScope(identity.Role, identity.AgentID)
	return s.repo.Stats(ctx, scope, site)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
