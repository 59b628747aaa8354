package foods

import "strings"

// FoodRequest creates or replaces a private food.
type FoodRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=200" example:"Oat milk"`
	ServingSize float64 `json:"servingSize" validate:"gt=0" example:"250"`
	ServingUnit string  `json:"servingUnit" validate:"required,notblank,max=20" example:"ml"`
	Nutrients
}

// ListParams filters the food list.
type ListParams struct {
	Query string
	Limit int
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
