package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/days"
	"github.com/user/cookbook-go/db"
	"github.com/user/cookbook-go/fridge"
	"github.com/user/cookbook-go/goals"
	"github.com/user/cookbook-go/recipes"
)

// Service migrates guest data into an account.
type Service interface {
	Migrate(ctx context.Context, userID string, req MigrateRequest) (*MigrateResponse, error)
}

// GuestService implements Service over PostgreSQL.
type GuestService struct {
	pool db.Pool
	now  func() time.Time
}

// NewGuestService creates a GuestService.
func NewGuestService(pool db.Pool) *GuestService {
	return &GuestService{pool: pool, now: time.Now}
}

// insertionOrder orders guest recipes so that every recipe comes after the guest recipes it uses.
// Duplicate local ids are a validation error and references between guest recipes must not loop.
func insertionOrder(recs []Recipe) ([]int, error) {
	index := make(map[string]int, len(recs))
	for i, r := range recs {
		if _, dup := index[r.LocalID]; dup {
			return nil, apperror.NewValidationError(fmt.Sprintf("duplicate guest recipe id %q", r.LocalID), []string{"recipes.localId"}, nil)
		}
		index[r.LocalID] = i
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make([]int, len(recs))
	order := make([]int, 0, len(recs))
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visiting:
			return apperror.NewConflictError("guest recipes reference each other in a cycle", nil)
		case done:
			return nil
		}
		state[i] = visiting
		for _, ing := range recs[i].Ingredients {
			if ing.RecipeID == nil {
				continue
			}
			if j, ok := index[*ing.RecipeID]; ok {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		order = append(order, i)
		return nil
	}
	for i := range recs {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// remap replaces a guest local recipe id with the id it was stored under. Other ids are kept.
func remap(id *string, ids map[string]string) *string {
	if id == nil {
		return nil
	}
	if newID, ok := ids[*id]; ok {
		return &newID
	}
	return id
}

func remapIngredients(ings []recipes.Ingredient, ids map[string]string) []recipes.Ingredient {
	out := make([]recipes.Ingredient, len(ings))
	for i, ing := range ings {
		ing.RecipeID = remap(ing.RecipeID, ids)
		out[i] = ing
	}
	return out
}

// Migrate stores everything in req for userID in a single transaction.
// A guest id can only be migrated once; later attempts are a Conflict.
func (s *GuestService) Migrate(ctx context.Context, userID string, req MigrateRequest) (*MigrateResponse, error) {
	order, err := insertionOrder(req.Recipes)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(req.Days))
	seen := make(map[string]bool, len(req.Days))
	for i, d := range req.Days {
		if seen[d.Date] {
			return nil, apperror.NewValidationError(fmt.Sprintf("day %s appears twice", d.Date), []string{"days.date"}, nil)
		}
		seen[d.Date] = true
		if dates[i], err = days.ParseDate(d.Date); err != nil {
			return nil, err
		}
	}
	goalStart := s.now().UTC().Truncate(24 * time.Hour)
	if req.Goal != nil && req.Goal.StartDate != "" {
		if goalStart, err = days.ParseDate(req.Goal.StartDate); err != nil {
			return nil, err
		}
	}

	res := &MigrateResponse{RecipeIDs: make(map[string]string, len(req.Recipes))}
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO guest_migrations (guest_id, user_id) VALUES ($1, $2)`, req.GuestID, userID)
		if db.IsUniqueViolation(err, "guest_migrations_pkey") {
			return apperror.NewConflictError("guest data was already migrated", err)
		}
		if err != nil {
			return db.MapError(err, "guest migration")
		}

		for _, i := range order {
			r := req.Recipes[i].CreateRecipeRequest
			r.Ingredients = remapIngredients(r.Ingredients, res.RecipeIDs)
			id, err := recipes.Insert(ctx, tx, userID, r, nil)
			if err != nil {
				return err
			}
			res.RecipeIDs[req.Recipes[i].LocalID] = id
		}

		if req.Goal != nil {
			g, err := goals.Insert(ctx, tx, userID, *req.Goal, goalStart)
			if err != nil {
				return err
			}
			res.GoalID = &g.ID
		}

		for i, d := range req.Days {
			if d.Notes != "" {
				if err := days.UpsertNotes(ctx, tx, userID, dates[i], d.Notes); err != nil {
					return err
				}
			} else if _, err := days.UpsertDay(ctx, tx, userID, dates[i]); err != nil {
				return err
			}
			for _, e := range d.Entries {
				e.RecipeID = remap(e.RecipeID, res.RecipeIDs)
				if _, err := days.InsertEntry(ctx, tx, userID, dates[i], e); err != nil {
					return err
				}
				res.Entries++
			}
			res.Days++
		}

		for _, it := range req.Fridge {
			if _, err := fridge.InsertItem(ctx, tx, userID, it); err != nil {
				return err
			}
			res.FridgeItems++
		}
		return nil
	})
	if err != nil {
		return nil, db.MapError(err, "guest migration")
	}
	return res, nil
}
