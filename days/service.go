package days

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
	"github.com/user/cookbook-go/foods"
	"github.com/user/cookbook-go/recipes"
)

// Service is the diary API used by the handlers.
type Service interface {
	List(ctx context.Context, userID string, from, to time.Time) ([]Day, error)
	Get(ctx context.Context, userID string, date time.Time) (*Day, error)
	SetNotes(ctx context.Context, userID string, date time.Time, req NotesRequest) (*Day, error)
	AddEntry(ctx context.Context, userID string, date time.Time, req EntryRequest) (*DayEntry, error)
	DeleteEntry(ctx context.Context, userID string, date time.Time, entryID string) error
}

// DayService implements Service over PostgreSQL.
type DayService struct {
	pool *pgxpool.Pool
}

// NewDayService creates a DayService.
func NewDayService(pool *pgxpool.Pool) *DayService {
	return &DayService{pool: pool}
}

const entryColumns = `e.id, e.meal, e.name, e.servings, e.food_id, e.recipe_id,
	e.calories, e.protein, e.carbs, e.fat, e.created_at`

func scanEntry(row pgx.Row, extra ...any) (*DayEntry, error) {
	var e DayEntry
	dest := []any{&e.ID, &e.Meal, &e.Name, &e.Servings, &e.FoodID, &e.RecipeID,
		&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &e, nil
}

// loadDays returns the stored days of userID in from..to with their entries, ordered by date.
func loadDays(ctx context.Context, q db.Querier, userID string, from, to time.Time) ([]Day, error) {
	rows, err := q.Query(ctx, `
		SELECT id, date, notes FROM days
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, db.MapError(err, "days")
	}
	out := make([]Day, 0)
	index := make(map[string]int)
	ids := make([]string, 0)
	for rows.Next() {
		var d Day
		var date time.Time
		if err := rows.Scan(&d.ID, &date, &d.Notes); err != nil {
			rows.Close()
			return nil, db.MapError(err, "days")
		}
		d.Date = date.Format(DateLayout)
		d.Entries = make([]DayEntry, 0)
		index[d.ID] = len(out)
		ids = append(ids, d.ID)
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "days")
	}
	if len(ids) == 0 {
		return out, nil
	}

	rows, err = q.Query(ctx, `
		SELECT `+entryColumns+`, e.day_id FROM day_entries e
		WHERE e.day_id = ANY($1)
		ORDER BY e.created_at, e.id`, ids)
	if err != nil {
		return nil, db.MapError(err, "day entries")
	}
	defer rows.Close()
	for rows.Next() {
		var dayID string
		e, err := scanEntry(rows, &dayID)
		if err != nil {
			return nil, db.MapError(err, "day entries")
		}
		d := &out[index[dayID]]
		d.Entries = append(d.Entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "day entries")
	}
	for i := range out {
		out[i].computeTotals()
	}
	return out, nil
}

// List returns the days in from..to that have been written to.
func (s *DayService) List(ctx context.Context, userID string, from, to time.Time) ([]Day, error) {
	return loadDays(ctx, s.pool, userID, from, to)
}

// Get returns the day, or an empty day when nothing was logged for that date.
func (s *DayService) Get(ctx context.Context, userID string, date time.Time) (*Day, error) {
	found, err := loadDays(ctx, s.pool, userID, date, date)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return &Day{Date: date.Format(DateLayout), Entries: []DayEntry{}}, nil
	}
	return &found[0], nil
}

// UpsertDay returns the id of the user's day for date, creating the row on first write.
func UpsertDay(ctx context.Context, q db.Querier, userID string, date time.Time) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO days (id, user_id, date) VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT days_user_date_key DO UPDATE SET updated_at = now()
		RETURNING id`, uuid.NewString(), userID, date).Scan(&id)
	if err != nil {
		return "", db.MapError(err, "day")
	}
	return id, nil
}

// UpsertNotes writes the notes of the user's day for date, creating the row on first write.
func UpsertNotes(ctx context.Context, q db.Querier, userID string, date time.Time, notes string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO days (id, user_id, date, notes) VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT days_user_date_key DO UPDATE SET notes = EXCLUDED.notes, updated_at = now()`,
		uuid.NewString(), userID, date, strings.TrimSpace(notes))
	return db.MapError(err, "day")
}

// SetNotes replaces the notes of a day.
func (s *DayService) SetNotes(ctx context.Context, userID string, date time.Time, req NotesRequest) (*Day, error) {
	if err := UpsertNotes(ctx, s.pool, userID, date, req.Notes); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, date)
}

// ResolveEntry computes the name and nutrients of an entry from its source.
// food and recipe are the loaded references named by req, nil when req names neither.
func ResolveEntry(req EntryRequest, food *foods.Food, recipe *recipes.ExportedRecipe) (string, Totals) {
	name := strings.TrimSpace(req.Name)
	switch {
	case food != nil:
		if name == "" {
			name = food.Name
		}
		n := food.Nutrients.Scale(req.Servings)
		return name, Totals{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}.Round()
	case recipe != nil:
		if name == "" {
			name = recipe.Title
		}
		n := recipe.PerServing.Scale(req.Servings)
		return name, Totals{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}.Round()
	default:
		return name, Totals{Calories: req.Calories, Protein: req.Protein, Carbs: req.Carbs, Fat: req.Fat}
	}
}

// AddEntry logs an item on the day, creating the day if needed.
func (s *DayService) AddEntry(ctx context.Context, userID string, date time.Time, req EntryRequest) (*DayEntry, error) {
	var out *DayEntry
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		out, err = InsertEntry(ctx, tx, userID, date, req)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "day entry")
	}
	return out, nil
}

// InsertEntry resolves the entry's nutrients through q and stores it on the user's day.
// q should be a transaction so that the day upsert and the insert commit together.
func InsertEntry(ctx context.Context, q db.Querier, userID string, date time.Time, req EntryRequest) (*DayEntry, error) {
	if req.FoodID == nil && req.RecipeID == nil && strings.TrimSpace(req.Name) == "" {
		return nil, apperror.NewValidationError("manual entries need a name", []string{"name"}, nil)
	}
	var food *foods.Food
	var recipe *recipes.ExportedRecipe
	switch {
	case req.FoodID != nil:
		found, err := foods.LoadMany(ctx, q, userID, []string{*req.FoodID})
		if err != nil {
			return nil, err
		}
		if food = found[*req.FoodID]; food == nil {
			return nil, apperror.NewNotFoundError("food not found", nil)
		}
	case req.RecipeID != nil:
		var err error
		recipe, err = recipes.NewExporter(recipes.NewLoader(q, userID), userID).Export(ctx, *req.RecipeID)
		if err != nil {
			return nil, err
		}
	}
	name, totals := ResolveEntry(req, food, recipe)

	dayID, err := UpsertDay(ctx, q, userID, date)
	if err != nil {
		return nil, err
	}
	e, err := scanEntry(q.QueryRow(ctx, `
		INSERT INTO day_entries AS e (id, day_id, meal, name, servings, food_id, recipe_id, calories, protein, carbs, fat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+entryColumns,
		uuid.NewString(), dayID, req.Meal, name, req.Servings, req.FoodID, req.RecipeID,
		totals.Calories, totals.Protein, totals.Carbs, totals.Fat))
	if err != nil {
		return nil, db.MapError(err, "day entry")
	}
	return e, nil
}

// DeleteEntry removes an entry of the caller's day.
func (s *DayService) DeleteEntry(ctx context.Context, userID string, date time.Time, entryID string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM day_entries e
		USING days d
		WHERE e.id = $1 AND e.day_id = d.id AND d.user_id = $2 AND d.date = $3`, entryID, userID, date)
	if err != nil {
		return db.MapError(err, "day entry")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("day entry not found", nil)
	}
	return nil
}
