// Package fridge tracks what a user has at home and which of their recipes it can make.
// Ingredient alternatives let a recipe ingredient be satisfied by something else in the fridge.
package fridge

import (
	"sort"
	"strings"
	"time"

	"github.com/user/cookbook-go/recipes"
)

// DefaultExpiringDays is the look-ahead of the expiring list.
const DefaultExpiringDays = 3

// MaxMissing is the most missing ingredients a near-miss recipe may have.
const MaxMissing = 2

// FridgeItem is something the user has.
type FridgeItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" example:"Eggs"`
	FoodID    *string   `json:"foodId,omitempty"`
	Quantity  float64   `json:"quantity" example:"6"`
	Unit      string    `json:"unit" example:"piece"`
	ExpiresOn *string   `json:"expiresOn,omitempty" example:"2024-05-03"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemRequest creates or replaces a fridge item.
type ItemRequest struct {
	Name      string  `json:"name" validate:"required,notblank,max=200"`
	FoodID    *string `json:"foodId,omitempty" validate:"omitempty,min=1"`
	Quantity  float64 `json:"quantity" validate:"gte=0"`
	Unit      string  `json:"unit" validate:"max=30"`
	ExpiresOn *string `json:"expiresOn,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Alternative says that Alternative can replace Ingredient, Ratio units per unit.
type Alternative struct {
	ID          string    `json:"id"`
	Ingredient  string    `json:"ingredient" example:"butter"`
	Alternative string    `json:"alternative" example:"margarine"`
	Ratio       float64   `json:"ratio" example:"1"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AlternativeRequest creates or replaces an alternative. A zero ratio means 1.
type AlternativeRequest struct {
	Ingredient  string  `json:"ingredient" validate:"required,notblank,max=200"`
	Alternative string  `json:"alternative" validate:"required,notblank,max=200,nefieldfold=Ingredient"`
	Ratio       float64 `json:"ratio" validate:"gte=0,lte=100"`
	Note        string  `json:"note" validate:"max=500"`
}

// Candidate is a recipe considered by the cookable search.
type Candidate struct {
	RecipeID    string
	Title       string
	Ingredients []recipes.Ingredient
}

// Substitution records an ingredient satisfied through an alternative.
type Substitution struct {
	Ingredient  string  `json:"ingredient"`
	Alternative string  `json:"alternative"`
	Ratio       float64 `json:"ratio"`
}

// CookableRecipe is a recipe that can be made now, or nearly.
type CookableRecipe struct {
	RecipeID      string         `json:"recipeId"`
	Title         string         `json:"title"`
	Cookable      bool           `json:"cookable"`
	Missing       []string       `json:"missing"`
	Substitutions []Substitution `json:"substitutions"`
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchRecipes checks each candidate against the fridge. An ingredient is available when a fridge
// item has its food id or its name (case-insensitively), or when an alternative for it is in the fridge.
// Recipes missing more than MaxMissing ingredients, and recipes without ingredients, are left out.
// Cookable recipes come first, then those missing fewer ingredients, then by title.
func MatchRecipes(items []FridgeItem, alts []Alternative, candidates []Candidate) []CookableRecipe {
	haveFood := make(map[string]bool)
	haveName := make(map[string]bool)
	for _, it := range items {
		if it.FoodID != nil {
			haveFood[*it.FoodID] = true
		}
		haveName[key(it.Name)] = true
	}
	altsFor := make(map[string][]Alternative)
	for _, a := range alts {
		k := key(a.Ingredient)
		altsFor[k] = append(altsFor[k], a)
	}

	out := make([]CookableRecipe, 0)
	for _, c := range candidates {
		if len(c.Ingredients) == 0 {
			continue
		}
		res := CookableRecipe{RecipeID: c.RecipeID, Title: c.Title, Missing: []string{}, Substitutions: []Substitution{}}
		for _, ing := range c.Ingredients {
			if ing.FoodID != nil && haveFood[*ing.FoodID] {
				continue
			}
			if haveName[key(ing.Name)] {
				continue
			}
			substituted := false
			for _, a := range altsFor[key(ing.Name)] {
				if haveName[key(a.Alternative)] {
					res.Substitutions = append(res.Substitutions, Substitution{Ingredient: ing.Name, Alternative: a.Alternative, Ratio: a.Ratio})
					substituted = true
					break
				}
			}
			if !substituted {
				res.Missing = append(res.Missing, ing.Name)
			}
		}
		if len(res.Missing) > MaxMissing {
			continue
		}
		res.Cookable = len(res.Missing) == 0
		out = append(out, res)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Missing) != len(out[j].Missing) {
			return len(out[i].Missing) < len(out[j].Missing)
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}
