package fridge

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/httpjson"
)

// Handlers exposes /api/cooking/fridge and /api/cooking/alternatives.
type Handlers struct {
	service Service
}

// NewHandlers creates the fridge handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts /api/cooking/fridge.
func (h *Handlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Get("/", h.HandleListItems())
		r.Post("/", h.HandleCreateItem())
		r.Get("/expiring", h.HandleExpiring())
		r.Get("/cookable", h.HandleCookable())
		r.Put("/{itemID}", h.HandleUpdateItem())
		r.Delete("/{itemID}", h.HandleDeleteItem())
	})
}

// RegisterAlternativeRoutes mounts /api/cooking/alternatives.
func (h *Handlers) RegisterAlternativeRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Get("/", h.HandleListAlternatives())
		r.Post("/", h.HandleCreateAlternative())
		r.Put("/{alternativeID}", h.HandleUpdateAlternative())
		r.Delete("/{alternativeID}", h.HandleDeleteAlternative())
	})
}

// HandleListItems godoc
// @Summary List fridge items
// @Tags Fridge
// @Produce json
// @Security BearerAuth
// @Success 200 {array} fridge.FridgeItem
// @Router /api/cooking/fridge [get]
func (h *Handlers) HandleListItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.service.ListItems(r.Context(), auth.UserIDFromContext(r.Context()))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// HandleCreateItem godoc
// @Summary Add a fridge item
// @Tags Fridge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body fridge.ItemRequest true "Item"
// @Success 201 {object} fridge.FridgeItem
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/cooking/fridge [post]
func (h *Handlers) HandleCreateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ItemRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		it, err := h.service.CreateItem(r.Context(), auth.UserIDFromContext(r.Context()), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, it)
	}
}

// HandleUpdateItem godoc
// @Summary Replace a fridge item
// @Tags Fridge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Param item body fridge.ItemRequest true "Item"
// @Success 200 {object} fridge.FridgeItem
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/fridge/{itemID} [put]
func (h *Handlers) HandleUpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ItemRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		it, err := h.service.UpdateItem(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "itemID"), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, it)
	}
}

// HandleDeleteItem godoc
// @Summary Remove a fridge item
// @Tags Fridge
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 204
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/fridge/{itemID} [delete]
func (h *Handlers) HandleDeleteItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.DeleteItem(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "itemID")); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.NoContent(w)
	}
}

// HandleExpiring godoc
// @Summary List items expiring soon
// @Tags Fridge
// @Produce json
// @Security BearerAuth
// @Param days query int false "Look-ahead in days (default 3, max 365)"
// @Success 200 {array} fridge.FridgeItem
// @Router /api/cooking/fridge/expiring [get]
func (h *Handlers) HandleExpiring() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		within := DefaultExpiringDays
		if raw := r.URL.Query().Get("days"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 || v > 365 {
				httpjson.WriteError(w, r, apperror.NewValidationError("days must be an integer between 0 and 365", []string{"days"}, err))
				return
			}
			within = v
		}
		items, err := h.service.Expiring(r.Context(), auth.UserIDFromContext(r.Context()), within)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// HandleCookable godoc
// @Summary Recipes that the fridge can make
// @Description Own recipes and liked public recipes whose ingredients are in the fridge, plus near misses.
// @Tags Fridge
// @Produce json
// @Security BearerAuth
// @Success 200 {array} fridge.CookableRecipe
// @Router /api/cooking/fridge/cookable [get]
func (h *Handlers) HandleCookable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.service.Cookable(r.Context(), auth.UserIDFromContext(r.Context()))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// HandleListAlternatives godoc
// @Summary List ingredient alternatives
// @Tags Alternatives
// @Produce json
// @Security BearerAuth
// @Success 200 {array} fridge.Alternative
// @Router /api/cooking/alternatives [get]
func (h *Handlers) HandleListAlternatives() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.service.ListAlternatives(r.Context(), auth.UserIDFromContext(r.Context()))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// HandleCreateAlternative godoc
// @Summary Add an ingredient alternative
// @Tags Alternatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alternative body fridge.AlternativeRequest true "Alternative"
// @Success 201 {object} fridge.Alternative
// @Failure 409 {object} apperror.ErrorResponse "Pair already exists"
// @Router /api/cooking/alternatives [post]
func (h *Handlers) HandleCreateAlternative() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AlternativeRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		a, err := h.service.CreateAlternative(r.Context(), auth.UserIDFromContext(r.Context()), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, a)
	}
}

// HandleUpdateAlternative godoc
// @Summary Replace an ingredient alternative
// @Tags Alternatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alternativeID path string true "Alternative ID"
// @Param alternative body fridge.AlternativeRequest true "Alternative"
// @Success 200 {object} fridge.Alternative
// @Router /api/cooking/alternatives/{alternativeID} [put]
func (h *Handlers) HandleUpdateAlternative() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AlternativeRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		a, err := h.service.UpdateAlternative(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "alternativeID"), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, a)
	}
}

// HandleDeleteAlternative godoc
// @Summary Remove an ingredient alternative
// @Tags Alternatives
// @Security BearerAuth
// @Param alternativeID path string true "Alternative ID"
// @Success 204
// @Router /api/cooking/alternatives/{alternativeID} [delete]
func (h *Handlers) HandleDeleteAlternative() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.DeleteAlternative(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "alternativeID")); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.NoContent(w)
	}
}
