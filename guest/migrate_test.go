package guest

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
	"github.com/user/cookbook-go/goals"
	"github.com/user/cookbook-go/recipes"
)

var (
	insertMigrationSQL = regexp.QuoteMeta(`INSERT INTO guest_migrations (guest_id, user_id)`)
	insertRecipeSQL    = regexp.QuoteMeta(`INSERT INTO recipes (id, owner_id`)
	insertVersionSQL   = regexp.QuoteMeta(`INSERT INTO recipe_versions`)
)

// captured records the value it is matched against.
type captured struct{ value any }

func (c *captured) Match(v any) bool {
	c.value = v
	return true
}

// usesRecipe matches an ingredient list whose first entry references the captured recipe id.
type usesRecipe struct{ id *captured }

func (u usesRecipe) Match(v any) bool {
	ings, ok := v.([]recipes.Ingredient)
	if !ok || len(ings) == 0 || ings[0].RecipeID == nil {
		return false
	}
	return *ings[0].RecipeID == u.id.value
}

func newMockGuestService(t *testing.T) (*GuestService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	svc := NewGuestService(mock)
	svc.now = func() time.Time { return time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC) }
	return svc, mock
}

func versionRows(recipeID string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "recipe_id", "version", "servings", "ingredients", "instructions", "note", "created_at"}).
		AddRow(recipeID+"-v1", recipeID, 1, 1.0, []recipes.Ingredient{}, []string{}, "", time.Now())
}

func TestMigrateTwiceIsConflict(t *testing.T) {
	svc, mock := newMockGuestService(t)
	guestID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec(insertMigrationSQL).WithArgs(guestID, "u1").
		WillReturnError(&pgconn.PgError{Code: db.UniqueViolation, ConstraintName: "guest_migrations_pkey"})
	mock.ExpectRollback()

	_, err := svc.Migrate(context.Background(), "u1", MigrateRequest{GuestID: guestID, Recipes: []Recipe{guestRecipe("soup")}})
	assert.True(t, apperror.IsConflictError(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStoresRecipesInDependencyOrder(t *testing.T) {
	svc, mock := newMockGuestService(t)
	guestID := uuid.NewString()
	stockID := &captured{}
	soupID := &captured{}
	any7 := []any{pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()}

	mock.ExpectBegin()
	mock.ExpectExec(insertMigrationSQL).WithArgs(guestID, "u1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// stock is listed second but soup uses it, so it is stored first
	mock.ExpectExec(insertRecipeSQL).
		WithArgs(stockID, "u1", "stock", "", false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(insertVersionSQL).WithArgs(any7...).WillReturnRows(versionRows("stock"))
	mock.ExpectExec(insertRecipeSQL).
		WithArgs(soupID, "u1", "soup", "", false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(insertVersionSQL).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 1, 1.0, usesRecipe{id: stockID}, pgxmock.AnyArg(), "").
		WillReturnRows(versionRows("soup"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE goals SET active = false`)).WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO goals`)).
		WithArgs(pgxmock.AnyArg(), "u1", 1800.0, 0.0, 0.0, 0.0, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "calories", "protein", "carbs", "fat", "active", "start_date", "created_at"}).
			AddRow("g1", 1800.0, 0.0, 0.0, 0.0, true, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), time.Now()))
	mock.ExpectCommit()

	res, err := svc.Migrate(context.Background(), "u1", MigrateRequest{
		GuestID: guestID,
		Recipes: []Recipe{guestRecipe("soup", "stock"), guestRecipe("stock")},
		Goal:    &goals.GoalRequest{Calories: 1800},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, res.RecipeIDs, 2)
	assert.Equal(t, stockID.value, res.RecipeIDs["stock"])
	assert.Equal(t, soupID.value, res.RecipeIDs["soup"])
	require.NotNil(t, res.GoalID)
	assert.Equal(t, "g1", *res.GoalID)
}

func TestMigrateValidatesBeforeWriting(t *testing.T) {
	svc, mock := newMockGuestService(t)
	guestID := uuid.NewString()

	_, err := svc.Migrate(context.Background(), "u1", MigrateRequest{GuestID: guestID, Days: []Day{{Date: "2024-05-01"}, {Date: "2024-05-01"}}})
	assert.True(t, apperror.IsValidationError(err))

	_, err = svc.Migrate(context.Background(), "u1", MigrateRequest{GuestID: guestID, Recipes: []Recipe{guestRecipe("a", "b"), guestRecipe("b", "a")}})
	assert.True(t, apperror.IsConflictError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
