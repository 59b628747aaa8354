// Package users manages the signed-in user's own profile: reading it, editing the display
// name and avatar, and deleting the account with everything it owns.
package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
)

// Service is the profile API used by the handlers.
type Service interface {
	GetUserProfile(ctx context.Context, userID string) (*UserProfileResponse, error)
	GetPublicProfile(ctx context.Context, userID string) (*PublicProfileResponse, error)
	UpdateUserProfile(ctx context.Context, userID string, req UpdateUserProfileRequest) (*UserProfileResponse, error)
	DeleteUser(ctx context.Context, userID string) error
}

// UserService implements Service over PostgreSQL.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(pool *pgxpool.Pool) *UserService {
	return &UserService{db: pool}
}

// GetUserProfile retrieves a user's profile with linked providers and activity counts.
func (s *UserService) GetUserProfile(ctx context.Context, userID string) (*UserProfileResponse, error) {
	var p UserProfileResponse
	err := s.db.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.image, u.created_at,
			COALESCE(ARRAY(SELECT a.provider FROM accounts a WHERE a.user_id = u.id ORDER BY a.provider), '{}'),
			(SELECT count(*) FROM recipes r WHERE r.owner_id = u.id),
			(SELECT count(*) FROM recipes r WHERE r.owner_id = u.id AND r.is_public),
			(SELECT COALESCE(sum(r.like_count), 0) FROM recipes r WHERE r.owner_id = u.id),
			(SELECT count(*) FROM days d WHERE d.user_id = u.id)
		FROM users u
		WHERE u.id = $1`, userID).Scan(
		&p.ID, &p.Email, &p.Name, &p.Image, &p.CreatedAt,
		&p.Providers,
		&p.Stats.Recipes, &p.Stats.PublicRecipes, &p.Stats.LikesReceived, &p.Stats.DaysLogged,
	)
	if err != nil {
		return nil, db.MapError(err, "user")
	}
	return &p, nil
}

// GetPublicProfile retrieves the fields of a user that anyone may see.
func (s *UserService) GetPublicProfile(ctx context.Context, userID string) (*PublicProfileResponse, error) {
	var p PublicProfileResponse
	err := s.db.QueryRow(ctx, `
		SELECT u.id, u.name, u.image, u.created_at,
			(SELECT count(*) FROM recipes r WHERE r.owner_id = u.id AND r.is_public)
		FROM users u WHERE u.id = $1`, userID).
		Scan(&p.ID, &p.Name, &p.Image, &p.CreatedAt, &p.PublicRecipes)
	if err != nil {
		return nil, db.MapError(err, "user")
	}
	return &p, nil
}

// UpdateUserProfile applies the non-nil fields of req.
func (s *UserService) UpdateUserProfile(ctx context.Context, userID string, req UpdateUserProfileRequest) (*UserProfileResponse, error) {
	if req.Name == nil && req.Image == nil {
		return nil, apperror.NewValidationError("no fields to update", []string{"name", "image"}, nil)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			image = CASE WHEN $3::boolean THEN NULLIF($4, '') ELSE image END,
			updated_at = now()
		WHERE id = $1`, userID, req.Name, req.Image != nil, deref(req.Image))
	if err != nil {
		return nil, db.MapError(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return s.GetUserProfile(ctx, userID)
}

// DeleteUser removes the user. Foreign keys cascade to sessions, accounts, recipes, days,
// goals, fridge items, comments and likes; like counters on other users' recipes are corrected first.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE recipes r SET like_count = GREATEST(r.like_count - 1, 0)
			FROM likes l
			WHERE l.recipe_id = r.id AND l.user_id = $1 AND r.owner_id <> $1`, userID)
		if err != nil {
			return db.MapError(err, "likes")
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return db.MapError(err, "user")
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFoundError("user not found", errors.New("no rows deleted"))
		}
		return nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
