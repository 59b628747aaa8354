package goals

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/days"
	"github.com/user/cookbook-go/httpjson"
)

// Handlers exposes /api/cooking/goals and /api/cooking/analysis.
type Handlers struct {
	service Service
}

// NewHandlers creates the goal handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts /api/cooking/goals.
func (h *Handlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Get("/", h.HandleHistory())
		r.Get("/active", h.HandleActive())
		r.Post("/", h.HandleCreate())
	})
}

// RegisterAnalysisRoutes mounts /api/cooking/analysis.
func (h *Handlers) RegisterAnalysisRoutes(r chi.Router, authn *auth.Authenticator) {
	r.With(authn.RequireUser).Get("/", h.HandleAnalysis())
}

// HandleHistory godoc
// @Summary List goals, newest first
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} goals.Goal
// @Router /api/cooking/goals [get]
func (h *Handlers) HandleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.service.History(r.Context(), auth.UserIDFromContext(r.Context()))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// HandleActive godoc
// @Summary Get the active goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} goals.Goal
// @Failure 404 {object} apperror.ErrorResponse "No active goal"
// @Router /api/cooking/goals/active [get]
func (h *Handlers) HandleActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := h.service.Active(r.Context(), auth.UserIDFromContext(r.Context()))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, g)
	}
}

// HandleCreate godoc
// @Summary Set a new active goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body goals.GoalRequest true "Daily targets"
// @Success 201 {object} goals.Goal
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/cooking/goals [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GoalRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		g, err := h.service.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, g)
	}
}

// HandleAnalysis godoc
// @Summary Compare logged days with the active goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} goals.AnalysisResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/cooking/analysis [get]
func (h *Handlers) HandleAnalysis() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := days.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		resp, err := h.service.Analysis(r.Context(), auth.UserIDFromContext(r.Context()), from, to)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, resp)
	}
}
