package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/auth"
)

type stubService struct {
	profiles map[string]*UserProfileResponse
	deleted  []string
	lastReq  UpdateUserProfileRequest
}

func (s *stubService) GetUserProfile(_ context.Context, userID string) (*UserProfileResponse, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return p, nil
}

func (s *stubService) GetPublicProfile(ctx context.Context, userID string) (*PublicProfileResponse, error) {
	p, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PublicProfileResponse{ID: p.ID, Name: p.Name, PublicRecipes: p.Stats.PublicRecipes, CreatedAt: p.CreatedAt}, nil
}

func (s *stubService) UpdateUserProfile(ctx context.Context, userID string, req UpdateUserProfileRequest) (*UserProfileResponse, error) {
	s.lastReq = req
	p, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	return p, nil
}

func (s *stubService) DeleteUser(_ context.Context, userID string) error {
	s.deleted = append(s.deleted, userID)
	return nil
}

func withUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.NewContextWithIdentity(r.Context(), auth.Identity{UserID: userID, SessionID: "s-" + userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(svc Service) chi.Router {
	h := NewUserHandlers(svc, auth.CookieSettings{SessionName: "session"})
	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/{userID}", h.HandleGetPublicProfile())
		r.Group(func(r chi.Router) {
			r.Use(withUser("u1"))
			r.Get("/me", h.HandleGetUserProfile())
			r.Put("/me", h.HandleUpdateUserProfile())
			r.Delete("/me", h.HandleDeleteUser())
		})
	})
	return r
}

func TestProfileEndpoints(t *testing.T) {
	email := "ada@example.com"
	svc := &stubService{profiles: map[string]*UserProfileResponse{
		"u1": {ID: "u1", Email: &email, Name: "Ada", Providers: []string{"google"}, Stats: ProfileStats{Recipes: 3, PublicRecipes: 1}, CreatedAt: time.Unix(0, 0).UTC()},
	}}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"providers":["google"]`)
	assert.Contains(t, rec.Body.String(), `"recipes":3`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ada@example.com")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	svc := &stubService{profiles: map[string]*UserProfileResponse{"u1": {ID: "u1", Name: "Ada"}}}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"name":"Ada L."}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada L."`)
	assert.Nil(t, svc.lastReq.Image)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"image":"not a url"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"image"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"bio":"unknown field"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteClearsCookie(t *testing.T) {
	svc := &stubService{profiles: map[string]*UserProfileResponse{}}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/me", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"u1"}, svc.deleted)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session=;")
}
