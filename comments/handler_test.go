package comments

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
	"github.com/user/cookbook-go/events"
)

type stubService struct {
	comments  map[string]*Comment
	publisher events.Publisher
}

func (s *stubService) GetThread(_ context.Context, _ string, recipeID string) (*ThreadResponse, error) {
	if recipeID != "r1" {
		return nil, apperror.NewNotFoundError("recipe not found", nil)
	}
	resp := &ThreadResponse{RecipeID: recipeID, Comments: []Comment{}}
	for _, c := range s.comments {
		resp.Comments = append(resp.Comments, *c)
	}
	resp.Total = len(resp.Comments)
	return resp, nil
}

func (s *stubService) AddComment(_ context.Context, userID, recipeID string, req NewCommentRequest) (*Comment, error) {
	body, err := NormalizeBody(req.Body)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if p, ok := s.comments[*req.ParentID]; !ok || p.RecipeID != recipeID {
			return nil, apperror.NewValidationError("parent comment must belong to the same recipe", []string{"parentId"}, nil)
		}
	}
	c := &Comment{ID: "c" + string(rune('0'+len(s.comments))), RecipeID: recipeID, UserID: userID, ParentID: req.ParentID, Body: body}
	s.comments[c.ID] = c
	s.publisher.Publish(events.RecipeTopic(recipeID), events.NewEvent(events.TypeCommentCreated, c))
	return c, nil
}

func (s *stubService) DeleteComment(_ context.Context, userID, commentID string) error {
	c, ok := s.comments[commentID]
	if !ok {
		return apperror.NewNotFoundError("comment not found", nil)
	}
	if c.UserID != userID {
		return apperror.NewForbiddenError("only the author or the recipe owner can delete this comment", nil)
	}
	delete(s.comments, commentID)
	return nil
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

func newRouter(svc CommentService, userID string) chi.Router {
	h := NewCommentHandler(svc)
	r := chi.NewRouter()
	r.Use(withUser(userID))
	r.Get("/recipes/{recipeID}/comments", h.getThread)
	r.Post("/recipes/{recipeID}/comments", h.addComment)
	r.Delete("/comments/{commentID}", h.deleteComment)
	return r
}

func TestAddCommentPublishesEvent(t *testing.T) {
	b := events.NewBroadcaster(4)
	defer b.Close()
	sub := b.Subscribe(events.RecipeTopic("r1"))
	svc := &stubService{comments: map[string]*Comment{}, publisher: b}

	rec := httptest.NewRecorder()
	newRouter(svc, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recipes/r1/comments",
		strings.NewReader(`{"body":"  Tasty!  "}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body":"Tasty!"`)

	select {
	case ev := <-sub.C:
		assert.Equal(t, events.TypeCommentCreated, ev.Type)
	default:
		t.Fatal("expected a comment.created event")
	}
}

func TestAddCommentValidation(t *testing.T) {
	svc := &stubService{comments: map[string]*Comment{
		"other": {ID: "other", RecipeID: "r2", UserID: "u2"},
	}, publisher: events.NewBroadcaster(1)}
	r := newRouter(svc, "u1")

	for _, body := range []string{
		`{"body":""}`,
		`{"body":"   "}`,
		`{"body":"` + strings.Repeat("x", MaxBodyLength+1) + `"}`,
		`{"body":"reply","parentId":"other"}`,
		`{"body":"reply","parentId":"missing"}`,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recipes/r1/comments", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDeleteCommentPermissions(t *testing.T) {
	svc := &stubService{comments: map[string]*Comment{
		"c1": {ID: "c1", RecipeID: "r1", UserID: "u1", Body: "hi"},
	}, publisher: events.NewBroadcaster(1)}

	rec := httptest.NewRecorder()
	newRouter(svc, "u2").ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/c1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/c1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc, "u1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/r9/comments", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNormalizeBodyCountsRunes(t *testing.T) {
	body, err := NormalizeBody(strings.Repeat("é", MaxBodyLength))
	require.NoError(t, err)
	assert.Equal(t, MaxBodyLength, len([]rune(body)))

	_, err = NormalizeBody("\n\t ")
	assert.True(t, apperror.IsValidationError(err))
}
