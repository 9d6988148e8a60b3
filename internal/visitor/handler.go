// AngelaMos | 2026
// handler.go

package visitor

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tlogandesigns/site-visitor-dash/internal/core"
	"github.com/tlogandesigns/site-visitor-dash/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/visitors", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreateVisitor)
		r.Get("/", h.ListVisitors)
		r.Get("/export/csv", h.ExportCSV)
		r.Get("/stats", h.Stats)
		r.Get("/{visitorID}", h.GetVisitor)
		r.Post("/{visitorID}/notes", h.AddNote)
		r.Delete("/{visitorID}", h.DeleteVisitor)
	})
}

func (h *Handler) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	var req CreateVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "agent")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	params, err := parseListParams(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	visitors, total, q, err := h.service.List(r.Context(), identity, params)
	if err != nil {
		h.writeServiceError(w, err, "visitor")
		return
	}

	core.Paginated(
		w,
		ListVisitorsResponse{Visitors: visitors},
		q.Page(), q.PageSize(), total,
	)
}

func (h *Handler) GetVisitor(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	resp, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "visitorID"))
	if err != nil {
		h.writeServiceError(w, err, "visitor")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	note, err := h.service.AddNote(
		r.Context(), identity, chi.URLParam(r, "visitorID"), req,
	)
	if err != nil {
		h.writeServiceError(w, err, "visitor")
		return
	}

	core.Created(w, note)
}

func (h *Handler) DeleteVisitor(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "visitorID"))
	if err != nil {
		h.writeServiceError(w, err, "visitor")
		return
	}

	core.NoContent(w)
}

var csvHeader = []string{
	"id", "buyer_name", "buyer_phone", "buyer_email", "purchase_timeline",
	"price_range", "location_looking", "location_current", "occupation",
	"represented", "agent_name", "capturing_agent", "site",
	"cinc_synced", "cinc_sync_at", "created_at", "notes",
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	params, err := parseListParams(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	visitors, notes, err := h.service.Export(r.Context(), identity, params)
	if err != nil {
		h.writeServiceError(w, err, "visitor")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads_export.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return
	}

	for i := range visitors {
		v := &visitors[i]
		if err := cw.Write(csvRow(v, notes[v.ID])); err != nil {
			return
		}
	}

	cw.Flush()
}

func csvRow(v *VisitorDetail, notes []NoteWithAgent) []string {
	history := make([]string, 0, len(notes))
	for _, n := range notes {
		history = append(history, fmt.Sprintf(
			"[%s %s] %s",
			n.CreatedAt.Format("2006-01-02 15:04"), n.AgentName, n.Note.Note,
		))
	}

	syncAt := ""
	if v.CincSyncAt != nil {
		syncAt = v.CincSyncAt.Format(time.RFC3339)
	}

	return []string{
		v.ID,
		v.BuyerName,
		v.BuyerPhone,
		deref(v.BuyerEmail),
		deref(v.PurchaseTimeline),
		deref(v.PriceRange),
		deref(v.LocationLooking),
		deref(v.LocationCurrent),
		deref(v.Occupation),
		strconv.FormatBool(v.Represented),
		deref(v.AgentName),
		deref(v.CapturingAgentName),
		v.Site,
		strconv.FormatBool(v.CincSynced),
		syncAt,
		v.CreatedAt.Format(time.RFC3339),
		strings.Join(history, " | "),
	}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	stats, err := h.service.Stats(r.Context(), identity, r.URL.Query().Get("site"))
	if err != nil {
		h.writeServiceError(w, err, "visitor")
		return
	}

	core.OK(w, stats)
}

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()

	params := ListParams{
		Site:       q.Get("site"),
		Timeline:   q.Get("timeline"),
		PriceRange: q.Get("price_range"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sort_by"),
		SortDir:    q.Get("sort_dir"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid page: %q", raw)
		}
		params.Page = page
	}

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid page_size: %q", raw)
		}
		params.PageSize = size
	}

	if raw := q.Get("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return params, fmt.Errorf("invalid from date: %q", raw)
		}
		params.From = &from
	}

	if raw := q.Get("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return params, fmt.Errorf("invalid to date: %q", raw)
		}
		params.To = &to
	}

	if raw := q.Get("synced"); raw != "" {
		synced, err := strconv.ParseBool(raw)
		if err != nil {
			return params, fmt.Errorf("invalid synced flag: %q", raw)
		}
		params.Synced = &synced
	}

	return params, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *Handler) writeServiceError(
	w http.ResponseWriter,
	err error,
	resource string,
) {
	var appErr *core.AppError
	switch {
	case errors.As(err, &appErr):
		core.JSONError(w, appErr)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, err.Error())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
