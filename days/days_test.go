package days

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
	"github.com/user/cookbook-go/foods"
	"github.com/user/cookbook-go/recipes"
)

func TestParseRange(t *testing.T) {
	from, to, err := ParseRange("2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, 366, DaysBetween(from, to))

	_, _, err = ParseRange("2024-01-01", "2025-01-01")
	assert.True(t, apperror.IsValidationError(err), "367 days")

	_, _, err = ParseRange("2024-02-02", "2024-02-01")
	assert.True(t, apperror.IsValidationError(err))

	_, _, err = ParseRange("2024-02-30", "2024-03-01")
	assert.True(t, apperror.IsValidationError(err))

	_, _, err = ParseRange("", "2024-03-01")
	assert.True(t, apperror.IsValidationError(err))

	from, to, err = ParseRange("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, DaysBetween(from, to))
}

func TestResolveEntry(t *testing.T) {
	food := &foods.Food{Name: "Oats", Nutrients: foods.Nutrients{Calories: 150, Protein: 5, Carbs: 27, Fat: 3}}
	name, totals := ResolveEntry(EntryRequest{Servings: 1.5}, food, nil)
	assert.Equal(t, "Oats", name)
	assert.Equal(t, Totals{Calories: 225, Protein: 7.5, Carbs: 40.5, Fat: 4.5}, totals)

	recipe := &recipes.ExportedRecipe{Title: "Stew", PerServing: foods.Nutrients{Calories: 400, Protein: 30}}
	name, totals = ResolveEntry(EntryRequest{Name: " Big stew ", Servings: 2}, nil, recipe)
	assert.Equal(t, "Big stew", name)
	assert.Equal(t, 800.0, totals.Calories)
	assert.Equal(t, 60.0, totals.Protein)

	name, totals = ResolveEntry(EntryRequest{Name: "Coffee", Servings: 3, Calories: 5}, nil, nil)
	assert.Equal(t, "Coffee", name)
	assert.Equal(t, 5.0, totals.Calories, "manual nutrients are stored as given")
}

func TestDayTotals(t *testing.T) {
	d := Day{Entries: []DayEntry{
		{Totals: Totals{Calories: 100.111, Protein: 1}},
		{Totals: Totals{Calories: 200.222, Fat: 2}},
	}}
	d.computeTotals()
	assert.Equal(t, Totals{Calories: 300.33, Protein: 1, Fat: 2}, d.Totals)
}

type stubService struct {
	Service
	lastFrom, lastTo time.Time
	lastEntry        EntryRequest
}

func (s *stubService) List(_ context.Context, _ string, from, to time.Time) ([]Day, error) {
	s.lastFrom, s.lastTo = from, to
	return []Day{}, nil
}

func (s *stubService) Get(_ context.Context, _ string, date time.Time) (*Day, error) {
	return &Day{Date: date.Format(DateLayout), Entries: []DayEntry{}}, nil
}

func (s *stubService) AddEntry(_ context.Context, _ string, _ time.Time, req EntryRequest) (*DayEntry, error) {
	s.lastEntry = req
	return &DayEntry{ID: "e1", Meal: req.Meal, Servings: req.Servings}, nil
}

func newRouter(svc Service) chi.Router {
	h := NewHandlers(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.NewContextWithIdentity(r.Context(), auth.Identity{UserID: "u1", SessionID: "s"})))
		})
	})
	r.Get("/days", h.HandleList())
	r.Get("/days/{date}", h.HandleGet())
	r.Post("/days/{date}/entries", h.HandleAddEntry())
	return r
}

func TestHandlers(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/days?from=2024-01-01&to=2024-01-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-31", svc.lastTo.Format(DateLayout))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/days/2024-13-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/days/2024-05-01", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-05-01","notes":"","entries":[],"totals":{"calories":0,"protein":0,"carbs":0,"fat":0}}`, rec.Body.String())

	for _, body := range []string{
		`{"meal":"brunch","servings":1,"name":"x"}`,
		`{"meal":"lunch","servings":0,"name":"x"}`,
		`{"meal":"lunch","servings":1,"foodId":"f","recipeId":"r"}`,
		`{"meal":"lunch","servings":1,"calories":-5,"name":"x"}`,
	} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/days/2024-05-01/entries", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/days/2024-05-01/entries",
		strings.NewReader(`{"meal":"snack","servings":2,"foodId":"apple"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.lastEntry.FoodID)
	assert.Equal(t, "apple", *svc.lastEntry.FoodID)
}
