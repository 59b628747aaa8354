package goals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/days"
	"github.com/user/cookbook-go/db"
)

// Service is the goals API used by the handlers.
type Service interface {
	History(ctx context.Context, userID string) ([]Goal, error)
	Active(ctx context.Context, userID string) (*Goal, error)
	Create(ctx context.Context, userID string, req GoalRequest) (*Goal, error)
	Analysis(ctx context.Context, userID string, from, to time.Time) (*AnalysisResponse, error)
}

// GoalService implements Service over PostgreSQL.
type GoalService struct {
	pool db.Pool
	now  func() time.Time
}

// NewGoalService creates a GoalService.
func NewGoalService(pool db.Pool) *GoalService {
	return &GoalService{pool: pool, now: time.Now}
}

const goalColumns = `id, calories, protein, carbs, fat, active, start_date, created_at`

func scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	var start time.Time
	if err := row.Scan(&g.ID, &g.Calories, &g.Protein, &g.Carbs, &g.Fat, &g.Active, &start, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.StartDate = start.Format(days.DateLayout)
	return &g, nil
}

// History lists every goal of the user, newest first.
func (s *GoalService) History(ctx context.Context, userID string) ([]Goal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, db.MapError(err, "goals")
	}
	defer rows.Close()
	out := make([]Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, db.MapError(err, "goals")
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "goals")
	}
	return out, nil
}

// Active returns the active goal or NotFound.
func (s *GoalService) Active(ctx context.Context, userID string) (*Goal, error) {
	return activeGoal(ctx, s.pool, userID)
}

func activeGoal(ctx context.Context, q db.Querier, userID string) (*Goal, error) {
	g, err := scanGoal(q.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 AND active`, userID))
	if err != nil {
		return nil, db.MapError(err, "active goal")
	}
	return g, nil
}

// Create makes req the active goal.
func (s *GoalService) Create(ctx context.Context, userID string, req GoalRequest) (*Goal, error) {
	start := s.now().UTC().Truncate(24 * time.Hour)
	if req.StartDate != "" {
		var err error
		if start, err = days.ParseDate(req.StartDate); err != nil {
			return nil, err
		}
	}
	var out *Goal
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		out, err = Insert(ctx, tx, userID, req, start)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "goal")
	}
	return out, nil
}

// Insert retires the user's active goal and stores req as the new one. q must be a transaction.
func Insert(ctx context.Context, q db.Querier, userID string, req GoalRequest, start time.Time) (*Goal, error) {
	if _, err := q.Exec(ctx, `UPDATE goals SET active = false WHERE user_id = $1 AND active`, userID); err != nil {
		return nil, db.MapError(err, "goal")
	}
	g, err := scanGoal(q.QueryRow(ctx, `
		INSERT INTO goals (id, user_id, calories, protein, carbs, fat, active, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7)
		RETURNING `+goalColumns,
		uuid.NewString(), userID, req.Calories, req.Protein, req.Carbs, req.Fat, start))
	if err != nil {
		if db.IsUniqueViolation(err, "goals_one_active_per_user") {
			return nil, apperror.NewConflictError("another goal was activated concurrently", err)
		}
		return nil, db.MapError(err, "goal")
	}
	return g, nil
}

// Analysis compares the logged days in from..to with the active goal.
func (s *GoalService) Analysis(ctx context.Context, userID string, from, to time.Time) (*AnalysisResponse, error) {
	goal, err := activeGoal(ctx, s.pool, userID)
	if apperror.IsNotFound(err) {
		goal, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT d.date, sum(e.calories), sum(e.protein), sum(e.carbs), sum(e.fat)
		FROM days d
		JOIN day_entries e ON e.day_id = d.id
		WHERE d.user_id = $1 AND d.date BETWEEN $2 AND $3
		GROUP BY d.date
		ORDER BY d.date`, userID, from, to)
	if err != nil {
		return nil, db.MapError(err, "analysis")
	}
	defer rows.Close()
	logged := make([]DailyTotals, 0)
	for rows.Next() {
		var date time.Time
		var t days.Totals
		if err := rows.Scan(&date, &t.Calories, &t.Protein, &t.Carbs, &t.Fat); err != nil {
			return nil, db.MapError(err, "analysis")
		}
		logged = append(logged, DailyTotals{Date: date.Format(days.DateLayout), Totals: t.Round()})
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "analysis")
	}
	return Analyze(from.Format(days.DateLayout), to.Format(days.DateLayout), goal, logged), nil
}
