package foods

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/httpjson"
)

// Handlers exposes /api/cooking/foods.
type Handlers struct {
	service Service
}

// NewHandlers creates the food handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the food routes. Reading works anonymously (global foods only).
func (h *Handlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.With(authn.OptionalUser).Get("/", h.HandleList())
	r.With(authn.OptionalUser).Get("/{foodID}", h.HandleGet())
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Post("/", h.HandleCreate())
		r.Put("/{foodID}", h.HandleUpdate())
		r.Delete("/{foodID}", h.HandleDelete())
	})
}

// HandleList godoc
// @Summary Search foods
// @Tags Foods
// @Produce json
// @Param q query string false "Case-insensitive name search"
// @Param limit query int false "Maximum results (default 50)"
// @Success 200 {array} foods.Food
// @Router /api/cooking/foods [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := ListParams{Query: r.URL.Query().Get("q")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				httpjson.WriteError(w, r, apperror.NewValidationError("limit must be a positive integer", []string{"limit"}, err))
				return
			}
			params.Limit = limit
		}
		items, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()), params)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// HandleGet godoc
// @Summary Get a food
// @Tags Foods
// @Produce json
// @Param foodID path string true "Food ID"
// @Success 200 {object} foods.Food
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/foods/{foodID} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.service.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "foodID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, f)
	}
}

// HandleCreate godoc
// @Summary Create a private food
// @Tags Foods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param food body foods.FoodRequest true "Food"
// @Success 201 {object} foods.Food
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/cooking/foods [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FoodRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		f, err := h.service.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, f)
	}
}

// HandleUpdate godoc
// @Summary Replace a private food
// @Tags Foods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param foodID path string true "Food ID"
// @Param food body foods.FoodRequest true "Food"
// @Success 200 {object} foods.Food
// @Failure 403 {object} apperror.ErrorResponse "Global food or not the owner"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/foods/{foodID} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FoodRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		f, err := h.service.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "foodID"), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, f)
	}
}

// HandleDelete godoc
// @Summary Delete a private food
// @Tags Foods
// @Security BearerAuth
// @Param foodID path string true "Food ID"
// @Success 204
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/foods/{foodID} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "foodID")); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.NoContent(w)
	}
}
