package guest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/httpjson"
	"github.com/user/cookbook-go/logging"
)

const (
	CookieName = "guest_id"
	cookieTTL  = 365 * 24 * time.Hour

	migrateBodyLimit = 8 << 20
)

// Handlers exposes /api/cooking/guest.
type Handlers struct {
	service      Service
	secureCookie bool
}

// NewHandlers creates the guest handlers.
func NewHandlers(service Service, secureCookie bool) *Handlers {
	return &Handlers{service: service, secureCookie: secureCookie}
}

// RegisterRoutes mounts the guest routes.
func (h *Handlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Get("/", h.HandleGuest())
	r.With(authn.RequireUser).Post("/migrate", h.HandleMigrate())
}

func (h *Handlers) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleGuest godoc
// @Summary Get or create the guest id
// @Description Returns the guest id from the guest_id cookie, issuing a new one when it is missing or malformed.
// @Tags Guest
// @Produce json
// @Success 200 {object} guest.GuestResponse
// @Router /api/cooking/guest [get]
func (h *Handlers) HandleGuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				httpjson.WriteJSON(w, http.StatusOK, GuestResponse{GuestID: c.Value})
				return
			}
		}
		id := uuid.NewString()
		h.setCookie(w, id, int(cookieTTL.Seconds()))
		httpjson.WriteJSON(w, http.StatusOK, GuestResponse{GuestID: id})
	}
}

// HandleMigrate godoc
// @Summary Move guest data into the signed-in account
// @Description Creates the guest's recipes, goal, days and fridge items in one transaction.
// @Description Each guest id can be migrated once. The guest cookie is cleared on success.
// @Tags Guest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body guest.MigrateRequest true "Guest data"
// @Success 201 {object} guest.MigrateResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Already migrated"
// @Router /api/cooking/guest/migrate [post]
func (h *Handlers) HandleMigrate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MigrateRequest
		if err := httpjson.DecodeLimit(w, r, &req, migrateBodyLimit); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		userID := auth.UserIDFromContext(r.Context())
		res, err := h.service.Migrate(r.Context(), userID, req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Info(r.Context(), "guest data migrated",
			zap.String("guest_id", req.GuestID),
			zap.Int("recipes", len(res.RecipeIDs)),
			zap.Int("days", res.Days),
			zap.Int("fridge_items", res.FridgeItems))
		h.setCookie(w, "", -1)
		httpjson.WriteJSON(w, http.StatusCreated, res)
	}
}
