package comments

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
	"github.com/user/cookbook-go/events"
)

// maxThreadSize bounds one thread response.
const maxThreadSize = 1000

// CommentService defines the comment operations used by the handlers.
type CommentService interface {
	GetThread(ctx context.Context, userID, recipeID string) (*ThreadResponse, error)
	AddComment(ctx context.Context, userID, recipeID string, req NewCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

type commentServiceImpl struct {
	db        *pgxpool.Pool
	publisher events.Publisher
}

// NewCommentService creates a CommentService. publisher receives comment events and may be nil.
func NewCommentService(pool *pgxpool.Pool, publisher events.Publisher) CommentService {
	return &commentServiceImpl{db: pool, publisher: publisher}
}

const selectComment = `
	SELECT c.id, c.recipe_id, c.user_id, u.name, u.image, c.parent_id, c.body, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.RecipeID, &c.UserID, &c.AuthorName, &c.AuthorImage, &c.ParentID, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// checkRecipeVisible returns the recipe owner, or NotFound when userID may not read the recipe.
func checkRecipeVisible(ctx context.Context, q db.Querier, userID, recipeID string) (string, error) {
	var ownerID string
	var public bool
	if err := q.QueryRow(ctx, `SELECT owner_id, is_public FROM recipes WHERE id = $1`, recipeID).Scan(&ownerID, &public); err != nil {
		return "", db.MapError(err, "recipe")
	}
	if !public && ownerID != userID {
		return "", apperror.NewNotFoundError("recipe not found", nil)
	}
	return ownerID, nil
}

// NormalizeBody trims the body and enforces the length limits on the trimmed text.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperror.NewValidationError("comment body must not be empty", []string{"body"}, nil)
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return "", apperror.NewValidationError("comment body is too long", []string{"body"}, nil)
	}
	return body, nil
}

func (s *commentServiceImpl) GetThread(ctx context.Context, userID, recipeID string) (*ThreadResponse, error) {
	if _, err := checkRecipeVisible(ctx, s.db, userID, recipeID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, selectComment+`
		WHERE c.recipe_id = $1
		ORDER BY c.created_at, c.id
		LIMIT $2`, recipeID, maxThreadSize)
	if err != nil {
		return nil, db.MapError(err, "comments")
	}
	defer rows.Close()

	resp := &ThreadResponse{RecipeID: recipeID, Comments: make([]Comment, 0)}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, db.MapError(err, "comments")
		}
		resp.Comments = append(resp.Comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "comments")
	}
	resp.Total = len(resp.Comments)
	return resp, nil
}

func (s *commentServiceImpl) AddComment(ctx context.Context, userID, recipeID string, req NewCommentRequest) (*Comment, error) {
	body, err := NormalizeBody(req.Body)
	if err != nil {
		return nil, err
	}
	var out *Comment
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := checkRecipeVisible(ctx, tx, userID, recipeID); err != nil {
			return err
		}
		if req.ParentID != nil {
			var parentRecipe string
			err := tx.QueryRow(ctx, `SELECT recipe_id FROM comments WHERE id = $1`, *req.ParentID).Scan(&parentRecipe)
			if errors.Is(err, pgx.ErrNoRows) || (err == nil && parentRecipe != recipeID) {
				return apperror.NewValidationError("parent comment must belong to the same recipe", []string{"parentId"}, nil)
			}
			if err != nil {
				return err
			}
		}
		id := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO comments (id, recipe_id, user_id, parent_id, body) VALUES ($1, $2, $3, $4, $5)`,
			id, recipeID, userID, req.ParentID, body); err != nil {
			return err
		}
		var err error
		out, err = scanComment(tx.QueryRow(ctx, selectComment+` WHERE c.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "comment")
	}
	s.publish(recipeID, events.TypeCommentCreated, out)
	return out, nil
}

// DeleteComment removes a comment and its replies. The author and the recipe owner may delete.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID, commentID string) error {
	var recipeID string
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var authorID, ownerID string
		var public bool
		err := tx.QueryRow(ctx, `
			SELECT c.recipe_id, c.user_id, r.owner_id, r.is_public
			FROM comments c JOIN recipes r ON r.id = c.recipe_id
			WHERE c.id = $1
			FOR UPDATE OF c`, commentID).Scan(&recipeID, &authorID, &ownerID, &public)
		if err != nil {
			return err
		}
		if authorID != userID && ownerID != userID {
			if !public {
				return apperror.NewNotFoundError("comment not found", nil)
			}
			return apperror.NewForbiddenError("only the author or the recipe owner can delete this comment", nil)
		}
		_, err = tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
		return err
	})
	if err != nil {
		return db.MapError(err, "comment")
	}
	s.publish(recipeID, events.TypeCommentDeleted, map[string]string{"id": commentID, "recipeId": recipeID})
	return nil
}

func (s *commentServiceImpl) publish(recipeID, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.RecipeTopic(recipeID), events.NewEvent(eventType, data))
}
