package recipes

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
	"github.com/user/cookbook-go/events"
	"github.com/user/cookbook-go/foods"
	"github.com/user/cookbook-go/logging"
	"github.com/user/cookbook-go/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service is the recipe API used by the handlers.
type Service interface {
	List(ctx context.Context, userID string, params ListParams) (*ListResponse, error)
	Create(ctx context.Context, userID string, req CreateRecipeRequest) (*Recipe, error)
	Get(ctx context.Context, userID, id string) (*Recipe, error)
	Update(ctx context.Context, userID, id string, req UpdateRecipeRequest) (*Recipe, error)
	Delete(ctx context.Context, userID, id string) error
	AddVersion(ctx context.Context, userID, id string, req ContentRequest) (*Recipe, error)
	ListVersions(ctx context.Context, userID, id string) ([]RecipeVersion, error)
	SetCurrentVersion(ctx context.Context, userID, id, versionID string) (*Recipe, error)
	Export(ctx context.Context, userID, id string) (*ExportedRecipe, error)
	Like(ctx context.Context, userID, id string) (*LikeResponse, error)
	Unlike(ctx context.Context, userID, id string) (*LikeResponse, error)
	SetImage(ctx context.Context, userID, id string, req ImageRequest) (*Recipe, error)
	Fork(ctx context.Context, userID, id string) (*Recipe, error)
	CheckVisible(ctx context.Context, userID, id string) error
}

// RecipeService implements Service over PostgreSQL.
type RecipeService struct {
	pool      db.Pool
	images    storage.ImageStore
	publisher events.Publisher
}

// NewRecipeService creates a RecipeService. images may be nil when uploads are not configured.
func NewRecipeService(pool db.Pool, images storage.ImageStore, publisher events.Publisher) *RecipeService {
	return &RecipeService{pool: pool, images: images, publisher: publisher}
}

// recipeColumns reads a header with its current version. $1 is the viewer, used for likedByMe.
const recipeColumns = `r.id, r.owner_id, u.name, r.title, r.description, r.is_public, r.image_url,
		r.current_version_id, r.forked_from_id, r.like_count, r.created_at, r.updated_at,
		EXISTS (SELECT 1 FROM likes l WHERE l.recipe_id = r.id AND l.user_id = $1),
		v.id, v.recipe_id, v.version, v.servings, v.ingredients, v.instructions, v.note, v.created_at`

const recipeFrom = `
	FROM recipes r
	JOIN users u ON u.id = r.owner_id
	JOIN recipe_versions v ON v.id = r.current_version_id`

const selectRecipe = `SELECT ` + recipeColumns + recipeFrom

const versionColumns = `id, recipe_id, version, servings, ingredients, instructions, note, created_at`

func scanRecipe(row pgx.Row, extra ...any) (*Recipe, error) {
	var r Recipe
	var v RecipeVersion
	dest := []any{
		&r.ID, &r.OwnerID, &r.OwnerName, &r.Title, &r.Description, &r.IsPublic, &r.ImageURL,
		&r.CurrentVersionID, &r.ForkedFromID, &r.LikeCount, &r.CreatedAt, &r.UpdatedAt,
		&r.LikedByMe,
		&v.ID, &v.RecipeID, &v.Version, &v.Servings, &v.Ingredients, &v.Instructions, &v.Note, &v.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	r.CurrentVersion = &v
	return &r, nil
}

func scanVersion(row pgx.Row) (*RecipeVersion, error) {
	var v RecipeVersion
	if err := row.Scan(&v.ID, &v.RecipeID, &v.Version, &v.Servings, &v.Ingredients, &v.Instructions, &v.Note, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func loadRecipe(ctx context.Context, q db.Querier, viewerID, id string) (*Recipe, error) {
	r, err := scanRecipe(q.QueryRow(ctx, selectRecipe+` WHERE r.id = $2`, nullIfEmpty(viewerID), id))
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	return r, nil
}

// pgLoader feeds the exporter from the database.
type pgLoader struct {
	q        db.Querier
	viewerID string
}

// NewLoader returns a Loader reading through q with foods filtered for viewerID.
func NewLoader(q db.Querier, viewerID string) Loader {
	return &pgLoader{q: q, viewerID: viewerID}
}

func (l *pgLoader) LoadRecipe(ctx context.Context, id string) (*Recipe, error) {
	return loadRecipe(ctx, l.q, l.viewerID, id)
}

func (l *pgLoader) LoadFoods(ctx context.Context, ids []string) (map[string]*foods.Food, error) {
	return foods.LoadMany(ctx, l.q, l.viewerID, ids)
}

// CheckCycle returns a Conflict when recipeID can reach itself through sub-recipe ingredients.
func CheckCycle(ctx context.Context, q db.Querier, userID, recipeID string) error {
	return checkCycle(ctx, NewLoader(q, userID), recipeID)
}

// List returns one page of recipes. Without a scope, signed-in callers get their own recipes
// and anonymous callers get public ones.
func (s *RecipeService) List(ctx context.Context, userID string, params ListParams) (*ListResponse, error) {
	scope := params.Scope
	if scope == "" {
		scope = ScopePublic
		if userID != "" {
			scope = ScopeMine
		}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(params.Offset, 0)

	var where, order string
	switch scope {
	case ScopeMine:
		where = `r.owner_id = $1`
		order = `r.updated_at DESC, r.id`
	case ScopeLiked:
		where = `EXISTS (SELECT 1 FROM likes l WHERE l.recipe_id = r.id AND l.user_id = $1) AND (r.is_public OR r.owner_id = $1)`
		order = `r.updated_at DESC, r.id`
	case ScopePublic:
		where = `r.is_public`
		order = `r.like_count DESC, r.created_at DESC, r.id`
	default:
		return nil, apperror.NewValidationError("scope must be one of mine, public, liked", []string{"scope"}, nil)
	}
	if scope != ScopePublic && userID == "" {
		return nil, apperror.NewAuthError("authentication required for scope "+scope, nil)
	}

	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(params.Query))) + "%"
	rows, err := s.pool.Query(ctx, `SELECT `+recipeColumns+`, count(*) OVER () `+recipeFrom+`
		WHERE `+where+` AND lower(r.title) LIKE $2
		ORDER BY `+order+`
		LIMIT $3 OFFSET $4`, nullIfEmpty(userID), pattern, limit, offset)
	if err != nil {
		return nil, db.MapError(err, "recipes")
	}
	defer rows.Close()

	resp := &ListResponse{Recipes: make([]Recipe, 0), Limit: limit, Offset: offset}
	for rows.Next() {
		var total int
		r, err := scanRecipe(rows, &total)
		if err != nil {
			return nil, db.MapError(err, "recipes")
		}
		resp.Total = total
		resp.Recipes = append(resp.Recipes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "recipes")
	}
	return resp, nil
}

// Insert writes a recipe and its first version through q and returns the new recipe id.
// It is shared by create, fork and guest migration.
func Insert(ctx context.Context, q db.Querier, ownerID string, req CreateRecipeRequest, forkedFromID *string) (string, error) {
	recipeID := uuid.NewString()
	versionID := uuid.NewString()
	// the current-version foreign key is deferred until commit, so the header can point at the version first
	_, err := q.Exec(ctx, `
		INSERT INTO recipes (id, owner_id, title, description, is_public, current_version_id, forked_from_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		recipeID, ownerID, strings.TrimSpace(req.Title), req.Description, req.IsPublic, versionID, forkedFromID)
	if err != nil {
		return "", db.MapError(err, "recipe")
	}
	if _, err := insertVersion(ctx, q, versionID, recipeID, 1, req.ContentRequest); err != nil {
		return "", err
	}
	return recipeID, nil
}

func insertVersion(ctx context.Context, q db.Querier, versionID, recipeID string, number int, req ContentRequest) (*RecipeVersion, error) {
	ingredients := normalizeIngredients(req.Ingredients)
	instructions := req.Instructions
	if instructions == nil {
		instructions = []string{}
	}
	v, err := scanVersion(q.QueryRow(ctx, `
		INSERT INTO recipe_versions (id, recipe_id, version, servings, ingredients, instructions, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+versionColumns,
		versionID, recipeID, number, req.Servings, ingredients, instructions, strings.TrimSpace(req.Note)))
	if err != nil {
		return nil, db.MapError(err, "recipe version")
	}
	return v, nil
}

// Create stores a recipe with version 1 in one transaction.
func (s *RecipeService) Create(ctx context.Context, userID string, req CreateRecipeRequest) (*Recipe, error) {
	var out *Recipe
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		id, err := Insert(ctx, tx, userID, req, nil)
		if err != nil {
			return err
		}
		out, err = loadRecipe(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	return out, nil
}

// Get returns a recipe the caller may see. Private recipes of other users are reported as missing.
func (s *RecipeService) Get(ctx context.Context, userID, id string) (*Recipe, error) {
	r, err := loadRecipe(ctx, s.pool, userID, id)
	if err != nil {
		return nil, err
	}
	if !r.VisibleTo(userID) {
		return nil, apperror.NewNotFoundError("recipe not found", nil)
	}
	return r, nil
}

// CheckVisible returns NotFound unless the caller may read the recipe.
func (s *RecipeService) CheckVisible(ctx context.Context, userID, id string) error {
	var ownerID string
	var public bool
	err := s.pool.QueryRow(ctx, `SELECT owner_id, is_public FROM recipes WHERE id = $1`, id).Scan(&ownerID, &public)
	if err != nil {
		return db.MapError(err, "recipe")
	}
	if !public && ownerID != userID {
		return apperror.NewNotFoundError("recipe not found", nil)
	}
	return nil
}

type header struct {
	ownerID  string
	isPublic bool
	imageURL *string
}

const selectHeader = `SELECT owner_id, is_public, image_url FROM recipes WHERE id = $1`

// lockOwned locks the recipe row and checks that userID owns it. q must be a transaction.
func lockOwned(ctx context.Context, q db.Querier, userID, id string) (*header, error) {
	return readOwned(ctx, q, selectHeader+` FOR UPDATE`, userID, id)
}

// readOwned checks that userID owns the recipe.
// Recipes the caller cannot even see are NotFound; visible recipes of others are Forbidden.
func readOwned(ctx context.Context, q db.Querier, query, userID, id string) (*header, error) {
	var h header
	err := q.QueryRow(ctx, query, id).Scan(&h.ownerID, &h.isPublic, &h.imageURL)
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	if h.ownerID != userID {
		if !h.isPublic {
			return nil, apperror.NewNotFoundError("recipe not found", nil)
		}
		return nil, apperror.NewForbiddenError("only the owner can modify this recipe", nil)
	}
	return &h, nil
}

// Update changes the header fields present in req.
func (s *RecipeService) Update(ctx context.Context, userID, id string, req UpdateRecipeRequest) (*Recipe, error) {
	if req.Title == nil && req.Description == nil && req.IsPublic == nil {
		return nil, apperror.NewValidationError("no fields to update", []string{"title", "description", "isPublic"}, nil)
	}
	var title *string
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		title = &t
	}
	var out *Recipe
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := lockOwned(ctx, tx, userID, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE recipes SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				is_public = COALESCE($4, is_public),
				updated_at = now()
			WHERE id = $1`, id, title, req.Description, req.IsPublic)
		if err != nil {
			return err
		}
		out, err = loadRecipe(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	return out, nil
}

// Delete removes an owned recipe with its versions, likes and comments.
func (s *RecipeService) Delete(ctx context.Context, userID, id string) error {
	var image *string
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		h, err := lockOwned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		image = h.imageURL
		_, err = tx.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return db.MapError(err, "recipe")
	}
	s.deleteImage(ctx, image)
	return nil
}

func (s *RecipeService) deleteImage(ctx context.Context, url *string) {
	if s.images == nil || url == nil || *url == "" {
		return
	}
	if err := s.images.DeleteImage(ctx, *url); err != nil {
		logging.FromContext(ctx).Warn(ctx, "failed to delete recipe image", zap.String("url", *url), zap.Error(err))
	}
}

func rejectSelfReference(id string, ingredients []Ingredient) error {
	for _, ing := range ingredients {
		if ing.RecipeID != nil && *ing.RecipeID == id {
			return apperror.NewValidationError("a recipe cannot use itself as an ingredient", []string{"ingredients"}, nil)
		}
	}
	return nil
}

// AddVersion appends version n+1 and makes it current. A version whose sub-recipes lead back
// to this recipe is rejected and nothing is written.
func (s *RecipeService) AddVersion(ctx context.Context, userID, id string, req ContentRequest) (*Recipe, error) {
	if err := rejectSelfReference(id, req.Ingredients); err != nil {
		return nil, err
	}
	var out *Recipe
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := lockOwned(ctx, tx, userID, id); err != nil {
			return err
		}
		var next int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(max(version), 0) + 1 FROM recipe_versions WHERE recipe_id = $1`, id).Scan(&next); err != nil {
			return err
		}
		v, err := insertVersion(ctx, tx, uuid.NewString(), id, next, req)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE recipes SET current_version_id = $2, updated_at = now() WHERE id = $1`, id, v.ID); err != nil {
			return err
		}
		if err := CheckCycle(ctx, tx, userID, id); err != nil {
			return err
		}
		out, err = loadRecipe(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	return out, nil
}

// ListVersions returns every version of a visible recipe, newest first.
func (s *RecipeService) ListVersions(ctx context.Context, userID, id string) ([]RecipeVersion, error) {
	if err := s.CheckVisible(ctx, userID, id); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT `+versionColumns+` FROM recipe_versions WHERE recipe_id = $1 ORDER BY version DESC`, id)
	if err != nil {
		return nil, db.MapError(err, "recipe versions")
	}
	defer rows.Close()
	out := make([]RecipeVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, db.MapError(err, "recipe versions")
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "recipe versions")
	}
	return out, nil
}

// SetCurrentVersion points the recipe at one of its existing versions.
func (s *RecipeService) SetCurrentVersion(ctx context.Context, userID, id, versionID string) (*Recipe, error) {
	var out *Recipe
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := lockOwned(ctx, tx, userID, id); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM recipe_versions WHERE id = $1 AND recipe_id = $2)`, versionID, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperror.NewValidationError("version does not belong to this recipe", []string{"versionId"}, nil)
		}
		if _, err := tx.Exec(ctx, `UPDATE recipes SET current_version_id = $2, updated_at = now() WHERE id = $1`, id, versionID); err != nil {
			return err
		}
		if err := CheckCycle(ctx, tx, userID, id); err != nil {
			return err
		}
		var err error
		out, err = loadRecipe(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	return out, nil
}

// Export resolves the recipe tree as seen by userID.
func (s *RecipeService) Export(ctx context.Context, userID, id string) (*ExportedRecipe, error) {
	return NewExporter(NewLoader(s.pool, userID), userID).Export(ctx, id)
}

// lockVisible locks the recipe row and returns NotFound unless userID may read the recipe.
func lockVisible(ctx context.Context, tx pgx.Tx, userID, id string) error {
	var ownerID string
	var public bool
	if err := tx.QueryRow(ctx, `SELECT owner_id, is_public FROM recipes WHERE id = $1 FOR UPDATE`, id).Scan(&ownerID, &public); err != nil {
		return err
	}
	if !public && ownerID != userID {
		return apperror.NewNotFoundError("recipe not found", nil)
	}
	return nil
}

// Like records the caller's like. Liking twice changes nothing.
func (s *RecipeService) Like(ctx context.Context, userID, id string) (*LikeResponse, error) {
	resp := &LikeResponse{Liked: true}
	changed := false
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockVisible(ctx, tx, userID, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `INSERT INTO likes (user_id, recipe_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, id)
		if err != nil {
			return err
		}
		changed = tag.RowsAffected() == 1
		return tx.QueryRow(ctx, `
			UPDATE recipes SET like_count = like_count + $2 WHERE id = $1 RETURNING like_count`,
			id, tag.RowsAffected()).Scan(&resp.LikeCount)
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	if changed {
		s.publish(id, events.TypeLikeCreated, map[string]any{"recipeId": id, "userId": userID, "likeCount": resp.LikeCount})
	}
	return resp, nil
}

// Unlike removes the caller's like. Unliking a recipe that was not liked changes nothing.
func (s *RecipeService) Unlike(ctx context.Context, userID, id string) (*LikeResponse, error) {
	resp := &LikeResponse{Liked: false}
	changed := false
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockVisible(ctx, tx, userID, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND recipe_id = $2`, userID, id)
		if err != nil {
			return err
		}
		changed = tag.RowsAffected() == 1
		return tx.QueryRow(ctx, `
			UPDATE recipes SET like_count = GREATEST(like_count - $2, 0) WHERE id = $1 RETURNING like_count`,
			id, tag.RowsAffected()).Scan(&resp.LikeCount)
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	if changed {
		s.publish(id, events.TypeLikeRemoved, map[string]any{"recipeId": id, "userId": userID, "likeCount": resp.LikeCount})
	}
	return resp, nil
}

func (s *RecipeService) publish(recipeID, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.RecipeTopic(recipeID), events.NewEvent(eventType, data))
}

// SetImage uploads a data-URL image and replaces the recipe's picture.
func (s *RecipeService) SetImage(ctx context.Context, userID, id string, req ImageRequest) (*Recipe, error) {
	if s.images == nil {
		return nil, apperror.NewUnavailableError("image uploads are not configured", nil)
	}
	img, err := storage.ParseDataURL(req.DataURL)
	if err != nil {
		return nil, err
	}
	// no row lock is held during the upload; the replaced url is read under the lock afterwards
	if _, err := readOwned(ctx, s.pool, selectHeader, userID, id); err != nil {
		return nil, err
	}
	url, err := s.images.PutImage(ctx, "recipes/"+id, img)
	if err != nil {
		return nil, err
	}
	var replaced *string
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		h, err := lockOwned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		replaced = h.imageURL
		_, err = tx.Exec(ctx, `UPDATE recipes SET image_url = $2, updated_at = now() WHERE id = $1`, id, url)
		return err
	})
	if err != nil {
		s.deleteImage(ctx, &url)
		return nil, db.MapError(err, "recipe")
	}
	s.deleteImage(ctx, replaced)
	return s.Get(ctx, userID, id)
}

// Fork copies the current version of a visible recipe into a new private recipe owned by the caller.
func (s *RecipeService) Fork(ctx context.Context, userID, id string) (*Recipe, error) {
	src, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	v := src.CurrentVersion
	req := CreateRecipeRequest{
		Title:       src.Title,
		Description: src.Description,
		ContentRequest: ContentRequest{
			Servings:     v.Servings,
			Ingredients:  v.Ingredients,
			Instructions: v.Instructions,
			Note:         v.Note,
		},
	}
	var out *Recipe
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		newID, err := Insert(ctx, tx, userID, req, &src.ID)
		if err != nil {
			return err
		}
		out, err = loadRecipe(ctx, tx, userID, newID)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "recipe")
	}
	return out, nil
}

func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
