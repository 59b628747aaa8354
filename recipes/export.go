package recipes

import (
	"context"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/foods"
)

// MaxExportDepth is the deepest sub-recipe nesting an export follows.
const MaxExportDepth = 8

// Loader fetches what the exporter needs. LoadRecipe returns the header with CurrentVersion set,
// or a NotFound error. LoadFoods returns the foods the viewer may see; unknown ids are absent.
type Loader interface {
	LoadRecipe(ctx context.Context, id string) (*Recipe, error)
	LoadFoods(ctx context.Context, ids []string) (map[string]*foods.Food, error)
}

// Exporter resolves a recipe tree once. It memoizes sub-recipes, so a recipe used
// several times in the tree is loaded and computed once per export.
type Exporter struct {
	loader  Loader
	visible func(*Recipe) bool
	memo    map[string]*ExportedRecipe
}

// NewExporter exports as seen by viewerID ("" for anonymous callers).
func NewExporter(loader Loader, viewerID string) *Exporter {
	return &Exporter{
		loader:  loader,
		visible: func(r *Recipe) bool { return r.VisibleTo(viewerID) },
		memo:    make(map[string]*ExportedRecipe),
	}
}

// Export resolves recipeID. A root recipe the viewer cannot see is NotFound, a reference
// cycle is a Conflict and nesting deeper than MaxExportDepth is a BadRequest.
func (e *Exporter) Export(ctx context.Context, recipeID string) (*ExportedRecipe, error) {
	root, err := e.loader.LoadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !e.visible(root) {
		return nil, apperror.NewNotFoundError("recipe not found", nil)
	}
	out, err := e.export(ctx, root, nil, 0)
	if err != nil {
		return nil, err
	}
	roundTree(out, make(map[*ExportedRecipe]bool))
	return out, nil
}

func (e *Exporter) export(ctx context.Context, r *Recipe, path []string, depth int) (*ExportedRecipe, error) {
	for _, id := range path {
		if id == r.ID {
			return nil, apperror.NewConflictError("recipe cycle detected: "+r.Title+" uses itself", nil)
		}
	}
	if depth > MaxExportDepth {
		return nil, depthError()
	}
	v := r.CurrentVersion
	if v == nil {
		return nil, apperror.NewInternalError("recipe "+r.ID+" has no current version", nil)
	}

	fs, err := e.loader.LoadFoods(ctx, foodIDs(v.Ingredients))
	if err != nil {
		return nil, err
	}

	out := &ExportedRecipe{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		OwnerID:      r.OwnerID,
		VersionID:    v.ID,
		Version:      v.Version,
		Servings:     v.Servings,
		Ingredients:  make([]ExportedIngredient, 0, len(v.Ingredients)),
		Instructions: v.Instructions,
		Note:         v.Note,
	}
	path = append(path, r.ID)

	for _, ing := range v.Ingredients {
		item := ExportedIngredient{Ingredient: ing}
		switch {
		case ing.FoodID != nil:
			f, ok := fs[*ing.FoodID]
			if !ok {
				item.Unavailable = true
				break
			}
			item.Food = f
			item.Nutrients = f.Nutrients.Scale(f.FactorFor(ing.Quantity, ing.Unit))
		case ing.RecipeID != nil:
			exported, err := e.exportSub(ctx, *ing.RecipeID, path, depth+1)
			if err != nil {
				return nil, err
			}
			if exported == nil {
				item.Unavailable = true
				break
			}
			item.Recipe = exported
			item.Nutrients = exported.PerServing.Scale(ing.Quantity)
			if exported.height+1 > out.height {
				out.height = exported.height + 1
			}
		}
		out.Totals = out.Totals.Add(item.Nutrients)
		out.Ingredients = append(out.Ingredients, item)
	}

	if v.Servings > 0 {
		out.PerServing = out.Totals.Scale(1 / v.Servings)
	}
	e.memo[r.ID] = out
	return out, nil
}

// exportSub resolves a sub-recipe reference, reusing an earlier result for the same id.
// It returns nil for references that are missing or hidden from the viewer.
func (e *Exporter) exportSub(ctx context.Context, id string, path []string, depth int) (*ExportedRecipe, error) {
	if done, ok := e.memo[id]; ok {
		if depth+done.height > MaxExportDepth {
			return nil, depthError()
		}
		return done, nil
	}
	sub, err := e.loader.LoadRecipe(ctx, id)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !e.visible(sub) {
		return nil, nil
	}
	return e.export(ctx, sub, path, depth)
}

func depthError() error {
	return apperror.NewBadRequestError("recipe nesting is deeper than the export limit", nil)
}

// roundTree rounds every nutrient figure once computation is finished.
func roundTree(r *ExportedRecipe, seen map[*ExportedRecipe]bool) {
	if seen[r] {
		return
	}
	seen[r] = true
	r.Totals = r.Totals.Round()
	r.PerServing = r.PerServing.Round()
	for i := range r.Ingredients {
		r.Ingredients[i].Nutrients = r.Ingredients[i].Nutrients.Round()
		if r.Ingredients[i].Recipe != nil {
			roundTree(r.Ingredients[i].Recipe, seen)
		}
	}
}

// checkCycle walks the sub-recipe references reachable from rootID regardless of visibility
// and returns a Conflict if any recipe can reach itself.
func checkCycle(ctx context.Context, loader Loader, rootID string) error {
	const (
		visiting = 1
		finished = 2
	)
	state := make(map[string]int)
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return apperror.NewConflictError("recipe cycle detected", nil)
		case finished:
			return nil
		}
		r, err := loader.LoadRecipe(ctx, id)
		if apperror.IsNotFound(err) {
			state[id] = finished
			return nil
		}
		if err != nil {
			return err
		}
		state[id] = visiting
		if r.CurrentVersion != nil {
			for _, sub := range subRecipeIDs(r.CurrentVersion.Ingredients) {
				if err := visit(sub); err != nil {
					return err
				}
			}
		}
		state[id] = finished
		return nil
	}
	return visit(rootID)
}
