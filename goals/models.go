// Package goals stores daily macro targets and compares logged days against the active one.
// A user has at most one active goal; creating a goal retires the previous one.
package goals

import (
	"math"
	"time"

	"github.com/user/cookbook-go/days"
)

// Goal is a daily target.
type Goal struct {
	ID        string    `json:"id"`
	Calories  float64   `json:"calories" example:"2200"`
	Protein   float64   `json:"protein" example:"140"`
	Carbs     float64   `json:"carbs" example:"250"`
	Fat       float64   `json:"fat" example:"70"`
	Active    bool      `json:"active"`
	StartDate string    `json:"startDate" example:"2024-05-01"`
	CreatedAt time.Time `json:"createdAt"`
}

// GoalRequest creates a new active goal. StartDate defaults to today.
type GoalRequest struct {
	Calories  float64 `json:"calories" validate:"gte=0,lte=20000"`
	Protein   float64 `json:"protein" validate:"gte=0,lte=2000"`
	Carbs     float64 `json:"carbs" validate:"gte=0,lte=2000"`
	Fat       float64 `json:"fat" validate:"gte=0,lte=2000"`
	StartDate string  `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Percent is the share of each target reached, capped at 1.
type Percent struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DailyTotals is what was logged on one date.
type DailyTotals struct {
	Date   string      `json:"date"`
	Totals days.Totals `json:"totals"`
}

// DayAnalysis compares one logged date with the goal.
type DayAnalysis struct {
	DailyTotals
	Percent Percent `json:"percent"`
}

// AnalysisResponse covers a date range. Averages are over the days that have entries.
type AnalysisResponse struct {
	From           string        `json:"from"`
	To             string        `json:"to"`
	Goal           *Goal         `json:"goal"`
	Days           []DayAnalysis `json:"days"`
	DaysLogged     int           `json:"daysLogged"`
	Averages       days.Totals   `json:"averages"`
	AveragePercent Percent       `json:"averagePercent"`
}

// Ratio returns actual/target capped at 1, or 0 for a target that is not positive.
func Ratio(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(math.Min(actual/target, 1)*10000) / 10000
}

func percentOf(t days.Totals, g *Goal) Percent {
	if g == nil {
		return Percent{}
	}
	return Percent{
		Calories: Ratio(t.Calories, g.Calories),
		Protein:  Ratio(t.Protein, g.Protein),
		Carbs:    Ratio(t.Carbs, g.Carbs),
		Fat:      Ratio(t.Fat, g.Fat),
	}
}

// Analyze compares logged days with goal, which may be nil when no goal is active.
func Analyze(from, to string, goal *Goal, logged []DailyTotals) *AnalysisResponse {
	resp := &AnalysisResponse{From: from, To: to, Goal: goal, Days: make([]DayAnalysis, 0, len(logged))}
	var sum days.Totals
	for _, d := range logged {
		resp.Days = append(resp.Days, DayAnalysis{DailyTotals: d, Percent: percentOf(d.Totals, goal)})
		sum = sum.Add(d.Totals)
	}
	resp.DaysLogged = len(logged)
	if resp.DaysLogged > 0 {
		n := float64(resp.DaysLogged)
		resp.Averages = days.Totals{
			Calories: sum.Calories / n,
			Protein:  sum.Protein / n,
			Carbs:    sum.Carbs / n,
			Fat:      sum.Fat / n,
		}.Round()
		resp.AveragePercent = percentOf(resp.Averages, goal)
	}
	return resp
}
