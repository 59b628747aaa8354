// Package recipes stores recipes as a mutable header plus immutable numbered versions.
// A recipe always points at one of its own versions (currentVersionId); editing the content
// appends a version instead of rewriting one. Ingredients may reference a food or another
// recipe, and the export walks those references to compute nutrition bottom-up.
package recipes

import (
	"strings"
	"time"
)

// Recipe is the header row plus, on reads, the current version.
type Recipe struct {
	ID               string         `json:"id"`
	OwnerID          string         `json:"ownerId"`
	OwnerName        string         `json:"ownerName,omitempty"`
	Title            string         `json:"title" example:"Banana bread"`
	Description      string         `json:"description"`
	IsPublic         bool           `json:"isPublic"`
	ImageURL         *string        `json:"imageUrl,omitempty"`
	CurrentVersionID string         `json:"currentVersionId"`
	ForkedFromID     *string        `json:"forkedFromId,omitempty"`
	LikeCount        int            `json:"likeCount"`
	LikedByMe        bool           `json:"likedByMe"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	CurrentVersion   *RecipeVersion `json:"currentVersion,omitempty"`
}

// VisibleTo reports whether userID may read the recipe.
func (r *Recipe) VisibleTo(userID string) bool {
	return r.IsPublic || (userID != "" && r.OwnerID == userID)
}

// RecipeVersion is immutable once written.
type RecipeVersion struct {
	ID           string       `json:"id"`
	RecipeID     string       `json:"recipeId"`
	Version      int          `json:"version" example:"1"`
	Servings     float64      `json:"servings" example:"4"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Note         string       `json:"note"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Ingredient is one line of a version. FoodID and RecipeID are mutually exclusive;
// with neither set the ingredient is free text and contributes no nutrition.
type Ingredient struct {
	Name     string  `json:"name" validate:"required,notblank,max=200" example:"Flour"`
	Quantity float64 `json:"quantity" validate:"gte=0" example:"250"`
	Unit     string  `json:"unit" validate:"max=30" example:"g"`
	FoodID   *string `json:"foodId,omitempty" validate:"excluded_with=RecipeID"`
	RecipeID *string `json:"recipeId,omitempty"`
}

// subRecipeIDs returns the distinct recipe references of ingredients in order.
func subRecipeIDs(ingredients []Ingredient) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, ing := range ingredients {
		if ing.RecipeID != nil && *ing.RecipeID != "" && !seen[*ing.RecipeID] {
			seen[*ing.RecipeID] = true
			ids = append(ids, *ing.RecipeID)
		}
	}
	return ids
}

// foodIDs returns the distinct food references of ingredients.
func foodIDs(ingredients []Ingredient) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, ing := range ingredients {
		if ing.FoodID != nil && *ing.FoodID != "" && !seen[*ing.FoodID] {
			seen[*ing.FoodID] = true
			ids = append(ids, *ing.FoodID)
		}
	}
	return ids
}

// normalizeIngredients trims names and units and drops empty references.
func normalizeIngredients(in []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(in))
	for _, ing := range in {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Unit = strings.TrimSpace(ing.Unit)
		if ing.FoodID != nil && strings.TrimSpace(*ing.FoodID) == "" {
			ing.FoodID = nil
		}
		if ing.RecipeID != nil && strings.TrimSpace(*ing.RecipeID) == "" {
			ing.RecipeID = nil
		}
		out = append(out, ing)
	}
	return out
}
