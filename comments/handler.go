package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/httpjson"
)

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	service CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterRecipeRoutes mounts the per-recipe routes under /api/cooking/recipes.
func (h *CommentHandler) RegisterRecipeRoutes(r chi.Router, authn *auth.Authenticator) {
	r.With(authn.OptionalUser).Get("/{recipeID}/comments", h.getThread)
	r.With(authn.RequireUser).Post("/{recipeID}/comments", h.addComment)
}

// RegisterRoutes mounts /api/cooking/comments.
func (h *CommentHandler) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.With(authn.RequireUser).Delete("/{commentID}", h.deleteComment)
}

// getThread godoc
// @Summary List the comments of a recipe
// @Tags Comments
// @Produce json
// @Param recipeID path string true "Recipe ID"
// @Success 200 {object} comments.ThreadResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/comments [get]
func (h *CommentHandler) getThread(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetThread(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, resp)
}

// addComment godoc
// @Summary Comment on a recipe
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Param comment body comments.NewCommentRequest true "Comment"
// @Success 201 {object} comments.Comment
// @Failure 400 {object} apperror.ErrorResponse "Empty or too long body, or parent on another recipe"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/comments [post]
func (h *CommentHandler) addComment(w http.ResponseWriter, r *http.Request) {
	var req NewCommentRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	c, err := h.service.AddComment(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"), req)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, c)
}

// deleteComment godoc
// @Summary Delete a comment
// @Tags Comments
// @Security BearerAuth
// @Param commentID path string true "Comment ID"
// @Success 204
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/comments/{commentID} [delete]
func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteComment(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "commentID")); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.NoContent(w)
}
