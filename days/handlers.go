package days

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/httpjson"
)

// Handlers exposes /api/cooking/days. Every route requires a signed-in user.
type Handlers struct {
	service Service
}

// NewHandlers creates the diary handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the diary routes.
func (h *Handlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Get("/", h.HandleList())
		r.Get("/{date}", h.HandleGet())
		r.Put("/{date}", h.HandleSetNotes())
		r.Post("/{date}/entries", h.HandleAddEntry())
		r.Delete("/{date}/entries/{entryID}", h.HandleDeleteEntry())
	})
}

// HandleList godoc
// @Summary List logged days in a range
// @Tags Days
// @Produce json
// @Security BearerAuth
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD), at most 366 days after from"
// @Success 200 {array} days.Day
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/cooking/days [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		items, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()), from, to)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// HandleGet godoc
// @Summary Get one day
// @Description Days without entries or notes are returned empty.
// @Tags Days
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} days.Day
// @Router /api/cooking/days/{date} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		day, err := h.service.Get(r.Context(), auth.UserIDFromContext(r.Context()), date)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, day)
	}
}

// HandleSetNotes godoc
// @Summary Replace the notes of a day
// @Tags Days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param notes body days.NotesRequest true "Notes"
// @Success 200 {object} days.Day
// @Router /api/cooking/days/{date} [put]
func (h *Handlers) HandleSetNotes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		var req NotesRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		day, err := h.service.SetNotes(r.Context(), auth.UserIDFromContext(r.Context()), date, req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, day)
	}
}

// HandleAddEntry godoc
// @Summary Log a food, a recipe or a manual entry
// @Tags Days
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param entry body days.EntryRequest true "Entry"
// @Success 201 {object} days.DayEntry
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Food or recipe not found"
// @Router /api/cooking/days/{date}/entries [post]
func (h *Handlers) HandleAddEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		var req EntryRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		entry, err := h.service.AddEntry(r.Context(), auth.UserIDFromContext(r.Context()), date, req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, entry)
	}
}

// HandleDeleteEntry godoc
// @Summary Delete an entry
// @Tags Days
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param entryID path string true "Entry ID"
// @Success 204
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/days/{date}/entries/{entryID} [delete]
func (h *Handlers) HandleDeleteEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		if err := h.service.DeleteEntry(r.Context(), auth.UserIDFromContext(r.Context()), date, chi.URLParam(r, "entryID")); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.NoContent(w)
	}
}
