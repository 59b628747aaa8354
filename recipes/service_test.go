package recipes

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/events"
	"github.com/user/cookbook-go/storage"
)

var (
	lockVisibleSQL = regexp.QuoteMeta(`SELECT owner_id, is_public FROM recipes WHERE id = $1 FOR UPDATE`)
	lockOwnedSQL   = regexp.QuoteMeta(`SELECT owner_id, is_public, image_url FROM recipes WHERE id = $1 FOR UPDATE`)
	loadRecipeSQL  = regexp.QuoteMeta(`WHERE r.id = $2`)
)

type memImages struct {
	next    string
	deleted []string
}

func (m *memImages) PutImage(context.Context, string, *storage.Image) (string, error) {
	return m.next, nil
}

func (m *memImages) DeleteImage(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

type recordingPublisher struct {
	topics []string
	events []events.Event
}

func (p *recordingPublisher) Publish(topic string, ev events.Event) int {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return 0
}

func newMockService(t *testing.T) (*RecipeService, pgxmock.PgxPoolIface, *recordingPublisher) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	pub := &recordingPublisher{}
	return NewRecipeService(mock, nil, pub), mock, pub
}

func visibilityRow(ownerID string, public bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"owner_id", "is_public"}).AddRow(ownerID, public)
}

func headerRow(ownerID string, public bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"owner_id", "is_public", "image_url"}).AddRow(ownerID, public, (*string)(nil))
}

// recipeRow matches the columns of selectRecipe.
func recipeRow(id, ownerID string, version int) *pgxmock.Rows {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	versionID := id + "-v"
	return pgxmock.NewRows([]string{
		"id", "owner_id", "name", "title", "description", "is_public", "image_url",
		"current_version_id", "forked_from_id", "like_count", "created_at", "updated_at", "liked",
		"v_id", "v_recipe_id", "version", "servings", "ingredients", "instructions", "note", "v_created_at",
	}).AddRow(
		id, ownerID, "Ada", "Soup", "", false, (*string)(nil),
		versionID, (*string)(nil), 0, now, now, false,
		versionID, id, version, 2.0, []Ingredient{}, []string{}, "", now,
	)
}

func TestUnlikeHidesPrivateRecipes(t *testing.T) {
	svc, mock, pub := newMockService(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockVisibleSQL).WithArgs("r1").WillReturnRows(visibilityRow("owner", false))
	mock.ExpectRollback()

	_, err := svc.Unlike(context.Background(), "intruder", "r1")
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeHidesPrivateRecipes(t *testing.T) {
	svc, mock, _ := newMockService(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockVisibleSQL).WithArgs("r1").WillReturnRows(visibilityRow("owner", false))
	mock.ExpectRollback()

	_, err := svc.Like(context.Background(), "intruder", "r1")
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeCountsOnlyNewLikes(t *testing.T) {
	svc, mock, pub := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVisibleSQL).WithArgs("r1").WillReturnRows(visibilityRow("owner", true))
	mock.ExpectExec(`INSERT INTO likes`).WithArgs("u2", "r1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE recipes SET like_count = like_count`).WithArgs("r1", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(5))
	mock.ExpectCommit()

	resp, err := svc.Like(context.Background(), "u2", "r1")
	require.NoError(t, err)
	assert.Equal(t, &LikeResponse{Liked: true, LikeCount: 5}, resp)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.RecipeTopic("r1"), pub.topics[0])
	assert.Equal(t, events.TypeLikeCreated, pub.events[0].Type)

	// a repeated like inserts nothing and adds zero
	mock.ExpectBegin()
	mock.ExpectQuery(lockVisibleSQL).WithArgs("r1").WillReturnRows(visibilityRow("owner", true))
	mock.ExpectExec(`INSERT INTO likes`).WithArgs("u2", "r1").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(`UPDATE recipes SET like_count = like_count`).WithArgs("r1", int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(5))
	mock.ExpectCommit()

	resp, err = svc.Like(context.Background(), "u2", "r1")
	require.NoError(t, err)
	assert.Equal(t, 5, resp.LikeCount)
	assert.Len(t, pub.events, 1, "no event for an unchanged like")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlikeDecrementsOnlyRemovedLikes(t *testing.T) {
	svc, mock, pub := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVisibleSQL).WithArgs("r1").WillReturnRows(visibilityRow("u2", false))
	mock.ExpectExec(`DELETE FROM likes`).WithArgs("u2", "r1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`GREATEST(like_count - $2, 0)`)).WithArgs("r1", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"like_count"}).AddRow(0))
	mock.ExpectCommit()

	resp, err := svc.Unlike(context.Background(), "u2", "r1")
	require.NoError(t, err)
	assert.Equal(t, &LikeResponse{Liked: false, LikeCount: 0}, resp)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeLikeRemoved, pub.events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCurrentVersionRejectsForeignVersion(t *testing.T) {
	svc, mock, _ := newMockService(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lockOwnedSQL).WithArgs("r1").WillReturnRows(headerRow("u1", false))
	mock.ExpectQuery(`FROM recipe_versions WHERE id = \$1 AND recipe_id = \$2`).WithArgs("other-v1", "r1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.SetCurrentVersion(context.Background(), "u1", "r1", "other-v1")
	assert.True(t, apperror.IsValidationError(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyingOthersRecipes(t *testing.T) {
	svc, mock, _ := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockOwnedSQL).WithArgs("r1").WillReturnRows(headerRow("owner", true))
	mock.ExpectRollback()
	_, err := svc.SetCurrentVersion(context.Background(), "u2", "r1", "r1-v")
	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ForbiddenError, ae.Type, "visible recipes of others are forbidden")

	mock.ExpectBegin()
	mock.ExpectQuery(lockOwnedSQL).WithArgs("r1").WillReturnRows(headerRow("owner", false))
	mock.ExpectRollback()
	err = svc.Delete(context.Background(), "u2", "r1")
	assert.True(t, apperror.IsNotFound(err), "private recipes of others are missing")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddVersionAppendsNextNumber(t *testing.T) {
	svc, mock, _ := newMockService(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(lockOwnedSQL).WithArgs("r1").WillReturnRows(headerRow("u1", false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(max(version), 0) + 1 FROM recipe_versions`)).WithArgs("r1").
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectQuery(`INSERT INTO recipe_versions`).
		WithArgs(pgxmock.AnyArg(), "r1", 3, 2.0, pgxmock.AnyArg(), pgxmock.AnyArg(), "less salt").
		WillReturnRows(pgxmock.NewRows([]string{"id", "recipe_id", "version", "servings", "ingredients", "instructions", "note", "created_at"}).
			AddRow("r1-v", "r1", 3, 2.0, []Ingredient{}, []string{}, "less salt", now))
	mock.ExpectExec(`UPDATE recipes SET current_version_id`).WithArgs("r1", "r1-v").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// cycle check, then the response
	mock.ExpectQuery(loadRecipeSQL).WithArgs(pgxmock.AnyArg(), "r1").WillReturnRows(recipeRow("r1", "u1", 3))
	mock.ExpectQuery(loadRecipeSQL).WithArgs(pgxmock.AnyArg(), "r1").WillReturnRows(recipeRow("r1", "u1", 3))
	mock.ExpectCommit()

	out, err := svc.AddVersion(context.Background(), "u1", "r1", ContentRequest{Servings: 2, Note: " less salt "})
	require.NoError(t, err)
	require.NotNil(t, out.CurrentVersion)
	assert.Equal(t, 3, out.CurrentVersion.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddVersionRejectsSelfReferenceWithoutWriting(t *testing.T) {
	svc, mock, _ := newMockService(t)
	_, err := svc.AddVersion(context.Background(), "u1", "r1", ContentRequest{
		Servings:    1,
		Ingredients: []Ingredient{{Name: "Itself", Quantity: 1, RecipeID: ptr("r1")}},
	})
	assert.True(t, apperror.IsValidationError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetImageWithoutStorage(t *testing.T) {
	svc, mock, _ := newMockService(t)
	_, err := svc.SetImage(context.Background(), "u1", "r1", ImageRequest{DataURL: "data:image/png;base64,AAAA"})
	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.UnavailableError, ae.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetImageReplacesUnderRowLock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	images := &memImages{next: "https://cdn.test/recipes/r1/new.png"}
	svc := NewRecipeService(mock, images, nil)
	old := "https://cdn.test/recipes/r1/old.png"

	// ownership is checked without a lock before the upload
	mock.ExpectQuery(regexp.QuoteMeta(selectHeader) + "$").WithArgs("r1").WillReturnRows(headerRow("u1", false))
	mock.ExpectBegin()
	mock.ExpectQuery(lockOwnedSQL).WithArgs("r1").
		WillReturnRows(pgxmock.NewRows([]string{"owner_id", "is_public", "image_url"}).AddRow("u1", false, &old))
	mock.ExpectExec(`UPDATE recipes SET image_url`).WithArgs("r1", images.next).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(loadRecipeSQL).WithArgs(pgxmock.AnyArg(), "r1").WillReturnRows(recipeRow("r1", "u1", 1))

	_, err = svc.SetImage(context.Background(), "u1", "r1", ImageRequest{DataURL: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.Equal(t, []string{old}, images.deleted, "only the replaced image is removed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetImageDiscardsUploadWhenUpdateFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	images := &memImages{next: "https://cdn.test/recipes/r1/new.png"}
	svc := NewRecipeService(mock, images, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectHeader) + "$").WithArgs("r1").WillReturnRows(headerRow("u1", false))
	mock.ExpectBegin()
	// ownership changed between the check and the lock
	mock.ExpectQuery(lockOwnedSQL).WithArgs("r1").WillReturnRows(headerRow("u2", false))
	mock.ExpectRollback()

	_, err = svc.SetImage(context.Background(), "u1", "r1", ImageRequest{DataURL: "data:image/png;base64,AAAA"})
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
	assert.Equal(t, []string{images.next}, images.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
