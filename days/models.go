// Package days is the food diary: one Day per user and calendar date, holding meal entries
// whose nutrients are copied at logging time so later edits to foods or recipes do not rewrite history.
package days

import (
	"math"
	"time"

	"github.com/user/cookbook-go/apperror"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MaxRangeDays bounds list and analysis queries.
const MaxRangeDays = 366

// Meals accepted for entries.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// Totals are the tracked macros of an entry or a day.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns t + o.
func (t Totals) Add(o Totals) Totals {
	return Totals{Calories: t.Calories + o.Calories, Protein: t.Protein + o.Protein, Carbs: t.Carbs + o.Carbs, Fat: t.Fat + o.Fat}
}

// Round returns t rounded to two decimals.
func (t Totals) Round() Totals {
	r := func(v float64) float64 { return math.Round(v*100) / 100 }
	return Totals{Calories: r(t.Calories), Protein: r(t.Protein), Carbs: r(t.Carbs), Fat: r(t.Fat)}
}

// DayEntry is one logged item.
type DayEntry struct {
	ID       string  `json:"id"`
	Meal     string  `json:"meal" example:"lunch"`
	Name     string  `json:"name" example:"Banana bread"`
	Servings float64 `json:"servings" example:"1.5"`
	FoodID   *string `json:"foodId,omitempty"`
	RecipeID *string `json:"recipeId,omitempty"`
	Totals
	CreatedAt time.Time `json:"createdAt"`
}

// Day is a diary page. ID is empty for days nothing was written to yet.
type Day struct {
	ID      string     `json:"id,omitempty"`
	Date    string     `json:"date" example:"2024-05-01"`
	Notes   string     `json:"notes"`
	Entries []DayEntry `json:"entries"`
	Totals  Totals     `json:"totals"`
}

func (d *Day) computeTotals() {
	var t Totals
	for _, e := range d.Entries {
		t = t.Add(e.Totals)
	}
	d.Totals = t.Round()
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.NewValidationError("date must be formatted as YYYY-MM-DD", []string{"date"}, err)
	}
	return t, nil
}

// ParseRange parses an inclusive from..to range of at most MaxRangeDays days.
func ParseRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, apperror.NewValidationError("from and to are required", []string{"from", "to"}, nil)
	}
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewValidationError("from must be formatted as YYYY-MM-DD", []string{"from"}, err)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewValidationError("to must be formatted as YYYY-MM-DD", []string{"to"}, err)
	}
	if t.Before(f) {
		return time.Time{}, time.Time{}, apperror.NewValidationError("to must not be before from", []string{"to"}, nil)
	}
	if DaysBetween(f, t) > MaxRangeDays {
		return time.Time{}, time.Time{}, apperror.NewValidationError("range must not exceed 366 days", []string{"from", "to"}, nil)
	}
	return f, t, nil
}

// DaysBetween counts the calendar days in the inclusive range from..to.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}
