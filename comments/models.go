// Package comments handles discussion threads on recipes. A comment may answer another
// comment of the same recipe; deleting a comment removes its replies.
package comments

import "time"

// MaxBodyLength is the longest comment body accepted, in characters.
const MaxBodyLength = 2000

// Comment is one message on a recipe.
type Comment struct {
	ID          string    `json:"id"`
	RecipeID    string    `json:"recipeId"`
	UserID      string    `json:"userId"`
	AuthorName  string    `json:"authorName"`
	AuthorImage *string   `json:"authorImage,omitempty"`
	ParentID    *string   `json:"parentId,omitempty"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCommentRequest is the body of a new comment.
type NewCommentRequest struct {
	Body     string  `json:"body" validate:"required,notblank,max=2000" example:"Added a pinch of chili, great!"`
	ParentID *string `json:"parentId,omitempty" validate:"omitempty,min=1"`
}

// ThreadResponse lists the comments of a recipe in posting order.
type ThreadResponse struct {
	RecipeID string    `json:"recipeId"`
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}
