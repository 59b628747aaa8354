package foods

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/auth"
)

type stubService struct {
	foods      map[string]*Food
	lastParams ListParams
	lastUser   string
}

func (s *stubService) List(_ context.Context, userID string, params ListParams) ([]Food, error) {
	s.lastParams, s.lastUser = params, userID
	out := []Food{}
	for _, f := range s.foods {
		if f.VisibleTo(userID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *stubService) Get(_ context.Context, userID, id string) (*Food, error) {
	f, ok := s.foods[id]
	if !ok || !f.VisibleTo(userID) {
		return nil, apperror.NewNotFoundError("food not found", nil)
	}
	return f, nil
}

func (s *stubService) Create(_ context.Context, userID string, req FoodRequest) (*Food, error) {
	f := &Food{ID: "new", OwnerID: &userID, Name: req.Name, ServingSize: req.ServingSize, ServingUnit: req.ServingUnit, Nutrients: req.Nutrients}
	s.foods[f.ID] = f
	return f, nil
}

func (s *stubService) Update(_ context.Context, userID, id string, req FoodRequest) (*Food, error) {
	f, ok := s.foods[id]
	if !ok {
		return nil, apperror.NewNotFoundError("food not found", nil)
	}
	if f.Global() || *f.OwnerID != userID {
		return nil, apperror.NewForbiddenError("only the owner can modify this food", nil)
	}
	f.Name = req.Name
	return f, nil
}

func (s *stubService) Delete(ctx context.Context, userID, id string) error {
	_, err := s.Update(ctx, userID, id, FoodRequest{})
	return err
}

func withUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != "" {
				r = r.WithContext(auth.NewContextWithIdentity(r.Context(), auth.Identity{UserID: userID, SessionID: "s"}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(svc Service, userID string) chi.Router {
	h := NewHandlers(svc)
	r := chi.NewRouter()
	r.Use(withUser(userID))
	r.Get("/foods", h.HandleList())
	r.Get("/foods/{foodID}", h.HandleGet())
	r.Post("/foods", h.HandleCreate())
	r.Put("/foods/{foodID}", h.HandleUpdate())
	r.Delete("/foods/{foodID}", h.HandleDelete())
	return r
}

func seed() *stubService {
	owner := "u1"
	return &stubService{foods: map[string]*Food{
		"apple": {ID: "apple", Name: "Apple", ServingSize: 100, ServingUnit: "g"},
		"mine":  {ID: "mine", OwnerID: &owner, Name: "Granola", ServingSize: 40, ServingUnit: "g"},
	}}
}

func TestListPassesQueryAndLimit(t *testing.T) {
	svc := seed()
	rec := httptest.NewRecorder()
	newRouter(svc, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foods?q=app&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ListParams{Query: "app", Limit: 5}, svc.lastParams)
	assert.Contains(t, rec.Body.String(), "Apple")
	assert.NotContains(t, rec.Body.String(), "Granola")

	rec = httptest.NewRecorder()
	newRouter(svc, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foods?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateValidatesNutrients(t *testing.T) {
	svc := seed()
	r := newRouter(svc, "u1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/foods",
		strings.NewReader(`{"name":"Bad","servingSize":0,"servingUnit":"g","calories":-1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "servingSize")
	assert.Contains(t, rec.Body.String(), "calories")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/foods",
		strings.NewReader(`{"name":"Oat milk","servingSize":250,"servingUnit":"ml","calories":120,"protein":3}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"calories":120`)
	assert.Contains(t, rec.Body.String(), `"ownerId":"u1"`)
}

func TestGlobalAndForeignFoodsAreForbidden(t *testing.T) {
	svc := seed()
	body := `{"name":"Renamed","servingSize":1,"servingUnit":"g"}`

	rec := httptest.NewRecorder()
	newRouter(svc, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/foods/apple", strings.NewReader(body)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc, "u2").ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/foods/mine", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc, "u2").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foods/mine", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/foods/mine", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
