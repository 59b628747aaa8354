package days

// NotesRequest replaces the notes of a day.
type NotesRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// EntryRequest logs an item. With FoodID the nutrients come from the food times servings,
// with RecipeID from the recipe's per-serving export times servings, and otherwise the
// given nutrients are stored as they are.
type EntryRequest struct {
	Meal     string  `json:"meal" validate:"required,oneof=breakfast lunch dinner snack" example:"dinner"`
	Name     string  `json:"name" validate:"max=200"`
	Servings float64 `json:"servings" validate:"gt=0,lte=100" example:"1"`
	FoodID   *string `json:"foodId,omitempty" validate:"omitempty,min=1,excluded_with=RecipeID"`
	RecipeID *string `json:"recipeId,omitempty" validate:"omitempty,min=1"`
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}
