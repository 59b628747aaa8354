// Package foods is the nutrition database: global foods shared by everyone plus private
// foods each user adds. Recipes, day entries and the fridge reference foods by id.
package foods

import (
	"math"
	"time"
)

// Nutrients are per serving. Calories in kcal, masses in grams except sodium in milligrams.
type Nutrients struct {
	Calories float64 `json:"calories" validate:"gte=0" example:"52"`
	Protein  float64 `json:"protein" validate:"gte=0" example:"0.3"`
	Carbs    float64 `json:"carbs" validate:"gte=0" example:"14"`
	Fat      float64 `json:"fat" validate:"gte=0" example:"0.2"`
	Fiber    float64 `json:"fiber" validate:"gte=0" example:"2.4"`
	Sugar    float64 `json:"sugar" validate:"gte=0" example:"10"`
	Sodium   float64 `json:"sodium" validate:"gte=0" example:"1"`
}

// Add returns n + o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
		Sugar:    n.Sugar + o.Sugar,
		Sodium:   n.Sodium + o.Sodium,
	}
}

// Scale returns n multiplied by factor.
func (n Nutrients) Scale(factor float64) Nutrients {
	return Nutrients{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Carbs:    n.Carbs * factor,
		Fat:      n.Fat * factor,
		Fiber:    n.Fiber * factor,
		Sugar:    n.Sugar * factor,
		Sodium:   n.Sodium * factor,
	}
}

// Round returns n rounded to two decimals for presentation.
func (n Nutrients) Round() Nutrients {
	r := func(v float64) float64 { return math.Round(v*100) / 100 }
	return Nutrients{
		Calories: r(n.Calories),
		Protein:  r(n.Protein),
		Carbs:    r(n.Carbs),
		Fat:      r(n.Fat),
		Fiber:    r(n.Fiber),
		Sugar:    r(n.Sugar),
		Sodium:   r(n.Sodium),
	}
}

// Food is one nutrition record. OwnerID is nil for global foods, which nobody may edit.
type Food struct {
	ID          string  `json:"id"`
	OwnerID     *string `json:"ownerId,omitempty"`
	Name        string  `json:"name" example:"Apple"`
	ServingSize float64 `json:"servingSize" example:"100"`
	ServingUnit string  `json:"servingUnit" example:"g"`
	Nutrients
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Global reports whether the food belongs to the shared database.
func (f *Food) Global() bool {
	return f.OwnerID == nil
}

// VisibleTo reports whether userID may read the food.
func (f *Food) VisibleTo(userID string) bool {
	return f.OwnerID == nil || (userID != "" && *f.OwnerID == userID)
}

// FactorFor converts an ingredient amount into a multiple of the food's serving.
// When unit matches the serving unit (case-insensitively) the quantity is measured in that unit;
// otherwise the quantity counts servings.
func (f *Food) FactorFor(quantity float64, unit string) float64 {
	if unit != "" && equalFoldTrim(unit, f.ServingUnit) && f.ServingSize > 0 {
		return quantity / f.ServingSize
	}
	return quantity
}
