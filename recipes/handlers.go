package recipes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/auth"
	"github.com/user/cookbook-go/events"
	"github.com/user/cookbook-go/httpjson"
	"github.com/user/cookbook-go/storage"
)

// imageBodyLimit allows a base64 data URL of MaxImageBytes plus the JSON around it.
const imageBodyLimit = storage.MaxImageBytes/3*4 + 4096

// Handlers exposes /api/cooking/recipes.
type Handlers struct {
	service Service
	stream  *events.Stream
}

// NewHandlers creates the recipe handlers. stream serves the live activity endpoint.
func NewHandlers(service Service, stream *events.Stream) *Handlers {
	return &Handlers{service: service, stream: stream}
}

// RegisterRoutes mounts the recipe routes. Reads work anonymously for public recipes.
func (h *Handlers) RegisterRoutes(r chi.Router, authn *auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(authn.OptionalUser)
		r.Get("/", h.HandleList())
		r.Get("/{recipeID}", h.HandleGet())
		r.Get("/{recipeID}/versions", h.HandleListVersions())
		r.Get("/{recipeID}/export", h.HandleExport())
	})
	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Post("/", h.HandleCreate())
		r.Patch("/{recipeID}", h.HandleUpdate())
		r.Delete("/{recipeID}", h.HandleDelete())
		r.Post("/{recipeID}/versions", h.HandleAddVersion())
		r.Put("/{recipeID}/current-version", h.HandleSetCurrentVersion())
		r.Post("/{recipeID}/like", h.HandleLike())
		r.Delete("/{recipeID}/like", h.HandleUnlike())
		r.Post("/{recipeID}/image", h.HandleSetImage())
		r.Post("/{recipeID}/fork", h.HandleFork())
	})
}

// RegisterStreamRoutes mounts the SSE endpoint. It must sit outside any request timeout.
func (h *Handlers) RegisterStreamRoutes(r chi.Router, authn *auth.Authenticator) {
	r.With(authn.OptionalUser).Get("/{recipeID}/events", h.HandleEvents())
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperror.NewValidationError(name+" must be a non-negative integer", []string{name}, err)
	}
	return v, nil
}

// HandleList godoc
// @Summary List recipes
// @Tags Recipes
// @Produce json
// @Param scope query string false "mine, public or liked (default mine when signed in, public otherwise)"
// @Param q query string false "Case-insensitive title search"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} recipes.ListResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		offset, err := queryInt(r, "offset")
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		params := ListParams{
			Scope:  r.URL.Query().Get("scope"),
			Query:  r.URL.Query().Get("q"),
			Limit:  limit,
			Offset: offset,
		}
		resp, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()), params)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleCreate godoc
// @Summary Create a recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipe body recipes.CreateRecipeRequest true "Recipe with its first version"
// @Success 201 {object} recipes.Recipe
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRecipeRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		recipe, err := h.service.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, recipe)
	}
}

// HandleGet godoc
// @Summary Get a recipe with its current version
// @Tags Recipes
// @Produce json
// @Param recipeID path string true "Recipe ID"
// @Success 200 {object} recipes.Recipe
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipe, err := h.service.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, recipe)
	}
}

// HandleUpdate godoc
// @Summary Update recipe metadata
// @Tags Recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Param recipe body recipes.UpdateRecipeRequest true "Fields to change"
// @Success 200 {object} recipes.Recipe
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID} [patch]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateRecipeRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		recipe, err := h.service.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, recipe)
	}
}

// HandleDelete godoc
// @Summary Delete a recipe
// @Tags Recipes
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Success 204
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID")); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.NoContent(w)
	}
}

// HandleAddVersion godoc
// @Summary Append a version and make it current
// @Tags Recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Param version body recipes.ContentRequest true "Version content"
// @Success 201 {object} recipes.Recipe
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Sub-recipes lead back to this recipe"
// @Router /api/cooking/recipes/{recipeID}/versions [post]
func (h *Handlers) HandleAddVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContentRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		recipe, err := h.service.AddVersion(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, recipe)
	}
}

// HandleListVersions godoc
// @Summary List the versions of a recipe
// @Tags Recipes
// @Produce json
// @Param recipeID path string true "Recipe ID"
// @Success 200 {array} recipes.RecipeVersion
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/versions [get]
func (h *Handlers) HandleListVersions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		versions, err := h.service.ListVersions(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, versions)
	}
}

// HandleSetCurrentVersion godoc
// @Summary Select the current version
// @Tags Recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Param body body recipes.SetCurrentVersionRequest true "Version to select"
// @Success 200 {object} recipes.Recipe
// @Failure 400 {object} apperror.ErrorResponse "Version belongs to another recipe"
// @Router /api/cooking/recipes/{recipeID}/current-version [put]
func (h *Handlers) HandleSetCurrentVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetCurrentVersionRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		recipe, err := h.service.SetCurrentVersion(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"), req.VersionID)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, recipe)
	}
}

// HandleExport godoc
// @Summary Export a recipe tree with nutrition totals
// @Tags Recipes
// @Produce json
// @Param recipeID path string true "Recipe ID"
// @Success 200 {object} recipes.ExportedRecipe
// @Failure 400 {object} apperror.ErrorResponse "Nesting too deep"
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Reference cycle"
// @Router /api/cooking/recipes/{recipeID}/export [get]
func (h *Handlers) HandleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.service.Export(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// HandleLike godoc
// @Summary Like a recipe
// @Tags Recipes
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Success 200 {object} recipes.LikeResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/like [post]
func (h *Handlers) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.service.Like(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleUnlike godoc
// @Summary Remove a like
// @Tags Recipes
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Success 200 {object} recipes.LikeResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/like [delete]
func (h *Handlers) HandleUnlike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.service.Unlike(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleSetImage godoc
// @Summary Upload the recipe picture
// @Tags Recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Param image body recipes.ImageRequest true "Base64 data URL (jpeg, png, webp or gif, up to 5 MiB)"
// @Success 200 {object} recipes.Recipe
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 503 {object} apperror.ErrorResponse "Uploads not configured"
// @Router /api/cooking/recipes/{recipeID}/image [post]
func (h *Handlers) HandleSetImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImageRequest
		if err := httpjson.DecodeLimit(w, r, &req, imageBodyLimit); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		recipe, err := h.service.SetImage(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, recipe)
	}
}

// HandleFork godoc
// @Summary Copy a recipe into a new private recipe
// @Tags Recipes
// @Produce json
// @Security BearerAuth
// @Param recipeID path string true "Recipe ID"
// @Success 201 {object} recipes.Recipe
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/fork [post]
func (h *Handlers) HandleFork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipe, err := h.service.Fork(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "recipeID"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, recipe)
	}
}

// HandleEvents godoc
// @Summary Stream likes and comments of a recipe
// @Description Server-Sent Events: like.created, like.removed, comment.created, comment.deleted.
// @Tags Recipes
// @Produce text/event-stream
// @Param recipeID path string true "Recipe ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/cooking/recipes/{recipeID}/events [get]
func (h *Handlers) HandleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "recipeID")
		if err := h.service.CheckVisible(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		h.stream.Serve(w, r, events.RecipeTopic(id))
	}
}
