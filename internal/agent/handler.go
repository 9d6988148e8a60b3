// AngelaMos | 2026
// handler.go

package agent

import (
	"encoding/json"
	"errors"
	"net/http"

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

// RegisterRoutes mounts the directory endpoints. Any authenticated user may
// read the roster; only admins may extend it.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/agents", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListAgents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUserAdmin)
			r.Post("/", h.CreateAgent)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/sites", h.ListSites)
	})
}

func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("cinc_id"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, created)
}

func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string][]Agent{"agents": agents})
}

func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.service.ListSites(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string][]string{"sites": sites})
}
