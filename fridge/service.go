package fridge

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
	"github.com/user/cookbook-go/recipes"
)

// Service is the fridge API used by the handlers.
type Service interface {
	ListItems(ctx context.Context, userID string) ([]FridgeItem, error)
	CreateItem(ctx context.Context, userID string, req ItemRequest) (*FridgeItem, error)
	UpdateItem(ctx context.Context, userID, id string, req ItemRequest) (*FridgeItem, error)
	DeleteItem(ctx context.Context, userID, id string) error
	Expiring(ctx context.Context, userID string, within int) ([]FridgeItem, error)
	Cookable(ctx context.Context, userID string) ([]CookableRecipe, error)

	ListAlternatives(ctx context.Context, userID string) ([]Alternative, error)
	CreateAlternative(ctx context.Context, userID string, req AlternativeRequest) (*Alternative, error)
	UpdateAlternative(ctx context.Context, userID, id string, req AlternativeRequest) (*Alternative, error)
	DeleteAlternative(ctx context.Context, userID, id string) error
}

// FridgeService implements Service over PostgreSQL.
type FridgeService struct {
	pool *pgxpool.Pool
}

// NewFridgeService creates a FridgeService.
func NewFridgeService(pool *pgxpool.Pool) *FridgeService {
	return &FridgeService{pool: pool}
}

const itemColumns = `id, name, food_id, quantity, unit, expires_on, created_at, updated_at`

func scanItem(row pgx.Row) (*FridgeItem, error) {
	var it FridgeItem
	var expires *time.Time
	if err := row.Scan(&it.ID, &it.Name, &it.FoodID, &it.Quantity, &it.Unit, &expires, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	if expires != nil {
		s := expires.Format(time.DateOnly)
		it.ExpiresOn = &s
	}
	return &it, nil
}

func collectItems(rows pgx.Rows) ([]FridgeItem, error) {
	defer rows.Close()
	out := make([]FridgeItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, db.MapError(err, "fridge items")
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "fridge items")
	}
	return out, nil
}

// ListItems returns the user's fridge sorted by name.
func (s *FridgeService) ListItems(ctx context.Context, userID string) ([]FridgeItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM fridge_items WHERE user_id = $1 ORDER BY lower(name), id`, userID)
	if err != nil {
		return nil, db.MapError(err, "fridge items")
	}
	return collectItems(rows)
}

// InsertItem stores a fridge item through q. Guest migration shares it.
func InsertItem(ctx context.Context, q db.Querier, userID string, req ItemRequest) (*FridgeItem, error) {
	it, err := scanItem(q.QueryRow(ctx, `
		INSERT INTO fridge_items (id, user_id, name, food_id, quantity, unit, expires_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date)
		RETURNING `+itemColumns,
		uuid.NewString(), userID, strings.TrimSpace(req.Name), req.FoodID, req.Quantity, strings.TrimSpace(req.Unit), req.ExpiresOn))
	if err != nil {
		return nil, db.MapError(err, "fridge item")
	}
	return it, nil
}

// CreateItem adds an item to the fridge.
func (s *FridgeService) CreateItem(ctx context.Context, userID string, req ItemRequest) (*FridgeItem, error) {
	return InsertItem(ctx, s.pool, userID, req)
}

// UpdateItem replaces one of the user's items.
func (s *FridgeService) UpdateItem(ctx context.Context, userID, id string, req ItemRequest) (*FridgeItem, error) {
	it, err := scanItem(s.pool.QueryRow(ctx, `
		UPDATE fridge_items SET name = $3, food_id = $4, quantity = $5, unit = $6, expires_on = $7::date, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+itemColumns,
		id, userID, strings.TrimSpace(req.Name), req.FoodID, req.Quantity, strings.TrimSpace(req.Unit), req.ExpiresOn))
	if err != nil {
		return nil, db.MapError(err, "fridge item")
	}
	return it, nil
}

// DeleteItem removes one of the user's items.
func (s *FridgeService) DeleteItem(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM fridge_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.MapError(err, "fridge item")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("fridge item not found", nil)
	}
	return nil
}

// Expiring lists items that expire within the next `within` days, already expired ones included.
func (s *FridgeService) Expiring(ctx context.Context, userID string, within int) ([]FridgeItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+` FROM fridge_items
		WHERE user_id = $1 AND expires_on IS NOT NULL AND expires_on <= current_date + $2::int
		ORDER BY expires_on, lower(name)`, userID, within)
	if err != nil {
		return nil, db.MapError(err, "fridge items")
	}
	return collectItems(rows)
}

// UserExpiring is the number of soon-expiring items of one user.
type UserExpiring struct {
	UserID string
	Count  int
}

// ExpiringCounts counts, per user, items that expire within `within` days.
func ExpiringCounts(ctx context.Context, q db.Querier, within int) ([]UserExpiring, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, count(*) FROM fridge_items
		WHERE expires_on IS NOT NULL AND expires_on <= current_date + $1::int
		GROUP BY user_id
		ORDER BY user_id`, within)
	if err != nil {
		return nil, db.MapError(err, "fridge items")
	}
	defer rows.Close()
	var out []UserExpiring
	for rows.Next() {
		var u UserExpiring
		if err := rows.Scan(&u.UserID, &u.Count); err != nil {
			return nil, db.MapError(err, "fridge items")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "fridge items")
	}
	return out, nil
}

// Cookable matches the fridge against the user's recipes and the public recipes they liked.
func (s *FridgeService) Cookable(ctx context.Context, userID string) ([]CookableRecipe, error) {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	alts, err := s.ListAlternatives(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.title, v.ingredients
		FROM recipes r
		JOIN recipe_versions v ON v.id = r.current_version_id
		WHERE r.owner_id = $1
		   OR (r.is_public AND EXISTS (SELECT 1 FROM likes l WHERE l.recipe_id = r.id AND l.user_id = $1))`, userID)
	if err != nil {
		return nil, db.MapError(err, "recipes")
	}
	defer rows.Close()
	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		var ings []recipes.Ingredient
		if err := rows.Scan(&c.RecipeID, &c.Title, &ings); err != nil {
			return nil, db.MapError(err, "recipes")
		}
		c.Ingredients = ings
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "recipes")
	}
	return MatchRecipes(items, alts, candidates), nil
}

const altColumns = `id, ingredient, alternative, ratio, note, created_at`

func scanAlternative(row pgx.Row) (*Alternative, error) {
	var a Alternative
	if err := row.Scan(&a.ID, &a.Ingredient, &a.Alternative, &a.Ratio, &a.Note, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAlternatives returns the user's alternatives sorted by ingredient.
func (s *FridgeService) ListAlternatives(ctx context.Context, userID string) ([]Alternative, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+altColumns+` FROM ingredient_alternatives WHERE user_id = $1 ORDER BY lower(ingredient), lower(alternative)`, userID)
	if err != nil {
		return nil, db.MapError(err, "alternatives")
	}
	defer rows.Close()
	out := make([]Alternative, 0)
	for rows.Next() {
		a, err := scanAlternative(rows)
		if err != nil {
			return nil, db.MapError(err, "alternatives")
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "alternatives")
	}
	return out, nil
}

func normalizeAlternative(req AlternativeRequest) AlternativeRequest {
	req.Ingredient = key(req.Ingredient)
	req.Alternative = key(req.Alternative)
	req.Note = strings.TrimSpace(req.Note)
	if req.Ratio == 0 {
		req.Ratio = 1
	}
	return req
}

// CreateAlternative stores an alternative. The same pair twice is a Conflict.
func (s *FridgeService) CreateAlternative(ctx context.Context, userID string, req AlternativeRequest) (*Alternative, error) {
	req = normalizeAlternative(req)
	a, err := scanAlternative(s.pool.QueryRow(ctx, `
		INSERT INTO ingredient_alternatives (id, user_id, ingredient, alternative, ratio, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+altColumns,
		uuid.NewString(), userID, req.Ingredient, req.Alternative, req.Ratio, req.Note))
	if err != nil {
		return nil, db.MapError(err, "alternative")
	}
	return a, nil
}

// UpdateAlternative replaces one of the user's alternatives.
func (s *FridgeService) UpdateAlternative(ctx context.Context, userID, id string, req AlternativeRequest) (*Alternative, error) {
	req = normalizeAlternative(req)
	a, err := scanAlternative(s.pool.QueryRow(ctx, `
		UPDATE ingredient_alternatives SET ingredient = $3, alternative = $4, ratio = $5, note = $6
		WHERE id = $1 AND user_id = $2
		RETURNING `+altColumns,
		id, userID, req.Ingredient, req.Alternative, req.Ratio, req.Note))
	if err != nil {
		return nil, db.MapError(err, "alternative")
	}
	return a, nil
}

// DeleteAlternative removes one of the user's alternatives.
func (s *FridgeService) DeleteAlternative(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ingredient_alternatives WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.MapError(err, "alternative")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("alternative not found", nil)
	}
	return nil
}
