package goals

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
)

var (
	retireGoalSQL = regexp.QuoteMeta(`UPDATE goals SET active = false WHERE user_id = $1 AND active`)
	insertGoalSQL = regexp.QuoteMeta(`INSERT INTO goals`)
)

func newMockGoalService(t *testing.T, now time.Time) (*GoalService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	svc := NewGoalService(mock)
	svc.now = func() time.Time { return now }
	return svc, mock
}

func goalRows(id string, start time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "calories", "protein", "carbs", "fat", "active", "start_date", "created_at"}).
		AddRow(id, 2200.0, 140.0, 250.0, 70.0, true, start, start)
}

func TestCreateRetiresActiveGoalInSameTransaction(t *testing.T) {
	now := time.Date(2024, 5, 3, 17, 30, 0, 0, time.UTC)
	today := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	svc, mock := newMockGoalService(t, now)

	mock.ExpectBegin()
	mock.ExpectExec(retireGoalSQL).WithArgs("u1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(insertGoalSQL).
		WithArgs(pgxmock.AnyArg(), "u1", 2200.0, 140.0, 250.0, 70.0, today).
		WillReturnRows(goalRows("g2", today))
	mock.ExpectCommit()

	g, err := svc.Create(context.Background(), "u1", GoalRequest{Calories: 2200, Protein: 140, Carbs: 250, Fat: 70})
	require.NoError(t, err)
	assert.Equal(t, "g2", g.ID)
	assert.True(t, g.Active)
	assert.Equal(t, "2024-05-03", g.StartDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUsesRequestedStartDate(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, mock := newMockGoalService(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectExec(retireGoalSQL).WithArgs("u1").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(insertGoalSQL).
		WithArgs(pgxmock.AnyArg(), "u1", 2200.0, 140.0, 250.0, 70.0, start).
		WillReturnRows(goalRows("g1", start))
	mock.ExpectCommit()

	g, err := svc.Create(context.Background(), "u1", GoalRequest{Calories: 2200, Protein: 140, Carbs: 250, Fat: 70, StartDate: "2024-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", g.StartDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConcurrentActivationIsConflict(t *testing.T) {
	svc, mock := newMockGoalService(t, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(retireGoalSQL).WithArgs("u1").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(insertGoalSQL).
		WillReturnError(&pgconn.PgError{Code: db.UniqueViolation, ConstraintName: "goals_one_active_per_user"})
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "u1", GoalRequest{Calories: 2000})
	assert.True(t, apperror.IsConflictError(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsBadStartDateWithoutWriting(t *testing.T) {
	svc, mock := newMockGoalService(t, time.Now())

	_, err := svc.Create(context.Background(), "u1", GoalRequest{Calories: 2000, StartDate: "2024-13-01"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
