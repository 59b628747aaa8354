package foods

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service is the food catalogue API.
type Service interface {
	List(ctx context.Context, userID string, params ListParams) ([]Food, error)
	Get(ctx context.Context, userID, id string) (*Food, error)
	Create(ctx context.Context, userID string, req FoodRequest) (*Food, error)
	Update(ctx context.Context, userID, id string, req FoodRequest) (*Food, error)
	Delete(ctx context.Context, userID, id string) error
}

// FoodService implements Service over PostgreSQL.
type FoodService struct {
	pool *pgxpool.Pool
}

// NewFoodService creates a new FoodService.
func NewFoodService(pool *pgxpool.Pool) *FoodService {
	return &FoodService{pool: pool}
}

// Columns lists the foods columns in the order Scan expects.
const Columns = `id, owner_id, name, serving_size, serving_unit,
	calories, protein, carbs, fat, fiber, sugar, sodium, created_at, updated_at`

// Scan reads one food selected with Columns.
func Scan(row pgx.Row) (*Food, error) {
	var f Food
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.ServingSize, &f.ServingUnit,
		&f.Calories, &f.Protein, &f.Carbs, &f.Fat, &f.Fiber, &f.Sugar, &f.Sodium,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// escapeLike makes q safe for use inside a LIKE pattern.
func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}

// List searches global foods and the caller's own foods by case-insensitive name.
// The caller's foods sort first, then by name.
func (s *FoodService) List(ctx context.Context, userID string, params ListParams) ([]Food, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(params.Query))) + "%"

	rows, err := s.pool.Query(ctx, `
		SELECT `+Columns+` FROM foods
		WHERE (owner_id IS NULL OR owner_id = $1)
		  AND lower(name) LIKE $2
		ORDER BY owner_id IS NULL, lower(name), id
		LIMIT $3`, nullIfEmpty(userID), pattern, limit)
	if err != nil {
		return nil, db.MapError(err, "foods")
	}
	defer rows.Close()

	items := make([]Food, 0)
	for rows.Next() {
		f, err := Scan(rows)
		if err != nil {
			return nil, db.MapError(err, "foods")
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "foods")
	}
	return items, nil
}

// Get returns a food the caller can see; other users' private foods are reported as missing.
func (s *FoodService) Get(ctx context.Context, userID, id string) (*Food, error) {
	f, err := Scan(s.pool.QueryRow(ctx, `SELECT `+Columns+` FROM foods WHERE id = $1`, id))
	if err != nil {
		return nil, db.MapError(err, "food")
	}
	if !f.VisibleTo(userID) {
		return nil, apperror.NewNotFoundError("food not found", nil)
	}
	return f, nil
}

// LoadMany loads the foods among ids that userID may see. Missing or hidden ids are absent from the result.
func LoadMany(ctx context.Context, q db.Querier, userID string, ids []string) (map[string]*Food, error) {
	out := make(map[string]*Food, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+Columns+` FROM foods
		WHERE id = ANY($1) AND (owner_id IS NULL OR owner_id = $2)`, ids, nullIfEmpty(userID))
	if err != nil {
		return nil, db.MapError(err, "foods")
	}
	defer rows.Close()
	for rows.Next() {
		f, err := Scan(rows)
		if err != nil {
			return nil, db.MapError(err, "foods")
		}
		out[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "foods")
	}
	return out, nil
}

// Create adds a private food owned by userID.
func (s *FoodService) Create(ctx context.Context, userID string, req FoodRequest) (*Food, error) {
	f, err := Scan(s.pool.QueryRow(ctx, `
		INSERT INTO foods (id, owner_id, name, serving_size, serving_unit,
			calories, protein, carbs, fat, fiber, sugar, sodium)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+Columns,
		uuid.NewString(), userID, strings.TrimSpace(req.Name), req.ServingSize, strings.TrimSpace(req.ServingUnit),
		req.Calories, req.Protein, req.Carbs, req.Fat, req.Fiber, req.Sugar, req.Sodium))
	if err != nil {
		return nil, db.MapError(err, "food")
	}
	return f, nil
}

// checkOwner loads the food and verifies that userID may modify it.
func (s *FoodService) checkOwner(ctx context.Context, q db.Querier, userID, id string) error {
	f, err := Scan(q.QueryRow(ctx, `SELECT `+Columns+` FROM foods WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return db.MapError(err, "food")
	}
	if f.Global() {
		return apperror.NewForbiddenError("global foods cannot be modified", nil)
	}
	if *f.OwnerID != userID {
		return apperror.NewForbiddenError("only the owner can modify this food", nil)
	}
	return nil
}

// Update replaces a private food owned by the caller.
func (s *FoodService) Update(ctx context.Context, userID, id string, req FoodRequest) (*Food, error) {
	var out *Food
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.checkOwner(ctx, tx, userID, id); err != nil {
			return err
		}
		var err error
		out, err = Scan(tx.QueryRow(ctx, `
			UPDATE foods SET name = $2, serving_size = $3, serving_unit = $4,
				calories = $5, protein = $6, carbs = $7, fat = $8, fiber = $9, sugar = $10, sodium = $11,
				updated_at = now()
			WHERE id = $1
			RETURNING `+Columns,
			id, strings.TrimSpace(req.Name), req.ServingSize, strings.TrimSpace(req.ServingUnit),
			req.Calories, req.Protein, req.Carbs, req.Fat, req.Fiber, req.Sugar, req.Sodium))
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "food")
	}
	return out, nil
}

// Delete removes a private food owned by the caller. Day entries and fridge items keep their copied values.
func (s *FoodService) Delete(ctx context.Context, userID, id string) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.checkOwner(ctx, tx, userID, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
		return err
	})
	return db.MapError(err, "food")
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
