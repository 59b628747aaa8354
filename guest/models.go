// Package guest lets someone use the cooking features before signing in and later move
// what they created into their account. Guest data lives on the client; the server only
// hands out a guest id and performs the one-time migration.
package guest

import (
	"github.com/user/cookbook-go/days"
	"github.com/user/cookbook-go/fridge"
	"github.com/user/cookbook-go/goals"
	"github.com/user/cookbook-go/recipes"
)

// Limits on one migration.
const (
	MaxRecipes     = 200
	MaxDays        = 366
	MaxFridgeItems = 500
	MaxDayEntries  = 100
)

// Recipe is a recipe created in guest mode. Ingredients may reference other guest recipes by LocalID.
type Recipe struct {
	LocalID string `json:"localId" validate:"required,max=100"`
	recipes.CreateRecipeRequest
}

// Day is a diary day created in guest mode. Entries may reference guest recipes by LocalID.
type Day struct {
	Date    string              `json:"date" validate:"required,datetime=2006-01-02" example:"2024-05-01"`
	Notes   string              `json:"notes" validate:"max=5000"`
	Entries []days.EntryRequest `json:"entries" validate:"max=100,dive"`
}

// MigrateRequest carries everything a guest created.
type MigrateRequest struct {
	GuestID string               `json:"guestId" validate:"required,uuid"`
	Recipes []Recipe             `json:"recipes" validate:"max=200,dive"`
	Goal    *goals.GoalRequest   `json:"goal,omitempty"`
	Days    []Day                `json:"days" validate:"max=366,dive"`
	Fridge  []fridge.ItemRequest `json:"fridge" validate:"max=500,dive"`
}

// MigrateResponse reports what was created. RecipeIDs maps guest local ids to the new recipe ids.
type MigrateResponse struct {
	RecipeIDs   map[string]string `json:"recipeIds"`
	Days        int               `json:"days"`
	Entries     int               `json:"entries"`
	FridgeItems int               `json:"fridgeItems"`
	GoalID      *string           `json:"goalId,omitempty"`
}

// GuestResponse returns the caller's guest id.
type GuestResponse struct {
	GuestID string `json:"guestId"`
}
