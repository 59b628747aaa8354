package recipes

import "github.com/user/cookbook-go/foods"

// Scopes accepted by the list endpoint.
const (
	ScopeMine   = "mine"
	ScopePublic = "public"
	ScopeLiked  = "liked"
)

// ContentRequest is the versioned part of a recipe.
type ContentRequest struct {
	Servings     float64      `json:"servings" validate:"gt=0,lte=1000" example:"4"`
	Ingredients  []Ingredient `json:"ingredients" validate:"max=200,dive"`
	Instructions []string     `json:"instructions" validate:"max=100,dive,max=4000"`
	Note         string       `json:"note" validate:"max=1000"`
}

// CreateRecipeRequest creates a recipe with version 1.
type CreateRecipeRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200" example:"Banana bread"`
	Description string `json:"description" validate:"max=5000"`
	IsPublic    bool   `json:"isPublic"`
	ContentRequest
}

// UpdateRecipeRequest changes header fields only; nil fields are left alone.
type UpdateRecipeRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}

// SetCurrentVersionRequest selects an existing version.
type SetCurrentVersionRequest struct {
	VersionID string `json:"versionId" validate:"required"`
}

// ImageRequest uploads a recipe picture as a data URL.
type ImageRequest struct {
	DataURL string `json:"dataUrl" validate:"required"`
}

// ListParams filters the recipe list.
type ListParams struct {
	Scope  string
	Query  string
	Limit  int
	Offset int
}

// ListResponse is one page of recipes.
type ListResponse struct {
	Recipes []Recipe `json:"recipes"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// LikeResponse reports the like state after a like or unlike.
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// ExportedIngredient is an ingredient resolved for export.
// Unavailable marks references the viewer cannot see or that no longer exist; they export by name only.
type ExportedIngredient struct {
	Ingredient
	Food        *foods.Food     `json:"food,omitempty"`
	Recipe      *ExportedRecipe `json:"recipe,omitempty"`
	Unavailable bool            `json:"unavailable,omitempty"`
	Nutrients   foods.Nutrients `json:"nutrients"`
}

// ExportedRecipe is a recipe's current version with every reference resolved.
type ExportedRecipe struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	OwnerID      string               `json:"ownerId"`
	VersionID    string               `json:"versionId"`
	Version      int                  `json:"version"`
	Servings     float64              `json:"servings"`
	Ingredients  []ExportedIngredient `json:"ingredients"`
	Instructions []string             `json:"instructions"`
	Note         string               `json:"note"`
	Totals       foods.Nutrients      `json:"totals"`
	PerServing   foods.Nutrients      `json:"perServing"`

	// height is the number of nested recipe levels below this one.
	height int
}
