package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/httpjson"
)

// UserHandlers holds the HTTP handlers for user profile routes.
type UserHandlers struct {
	service Service
	cookies auth.CookieSettings
}

// NewUserHandlers creates new UserHandlers. cookies is used to clear the session after account deletion.
func NewUserHandlers(service Service, cookies auth.CookieSettings) *UserHandlers {
	return &UserHandlers{service: service, cookies: cookies}
}

// RegisterRoutes mounts the routes on r (expected to be /api/users).
func (h *UserHandlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Get("/{userID}", h.HandleGetPublicProfile())
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Get("/me", h.HandleGetUserProfile())
		r.Put("/me", h.HandleUpdateUserProfile())
		r.Delete("/me", h.HandleDeleteUser())
	})
}

// HandleGetUserProfile godoc
// @Summary Get current user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.UserProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/users/me [get]
func (h *UserHandlers) HandleGetUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.service.GetUserProfile(r.Context(), auth.UserIDFromContext(r.Context()))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleGetPublicProfile godoc
// @Summary Get a user's public profile
// @Tags Users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} users.PublicProfileResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/users/{userID} [get]
func (h *UserHandlers) HandleGetPublicProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.service.GetPublicProfile(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateUserProfile godoc
// @Summary Update current user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profileUpdate body users.UpdateUserProfileRequest true "Fields to update"
// @Success 200 {object} users.UserProfileResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/me [put]
func (h *UserHandlers) HandleUpdateUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateUserProfileRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		profile, err := h.service.UpdateUserProfile(r.Context(), auth.UserIDFromContext(r.Context()), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleDeleteUser godoc
// @Summary Delete current user's account
// @Description Deletes the account and everything it owns, then clears the session cookie.
// @Tags Users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/me [delete]
func (h *UserHandlers) HandleDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.DeleteUser(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		h.cookies.ClearSession(w)
		httpjson.NoContent(w)
	}
}
