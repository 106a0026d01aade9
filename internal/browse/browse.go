// Package browse lists recipes and assembles the details view: the recipe
// with its ingredients, steps and comments, plus which actions the current
// session is offered.
package browse

import (
	"context"

	"cookbook/internal/comments"
	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/policy"
	"cookbook/internal/session"
	"cookbook/internal/workflow"
)

// Recipes is the read and delete side of the recipe resource.
type Recipes interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, id string) (*models.Recipe, error)
	Delete(ctx context.Context, id, token string) error
}

// Children lists the rows of one recipe.
type Children[T any] interface {
	ListByRecipe(ctx context.Context, recipeID string) ([]T, error)
}

// Entry is one line of the recipe list.
type Entry struct {
	Recipe    models.Recipe
	CanEdit   bool
	CanDelete bool
}

// Details is everything the details view shows.
type Details struct {
	Recipe      *models.Recipe
	Ingredients []models.Ingredient
	Steps       []models.Step
	Thread      *comments.Thread
	CanEdit     bool
	CanDelete   bool
}

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(prompt string) (bool, error)

// Browser serves the list and details views to one session.
type Browser struct {
	recipes     Recipes
	ingredients Children[models.Ingredient]
	steps       Children[models.Step]
	comments    comments.Store
	session     session.Session
	guard       *workflow.Guard
}

// New returns a browser acting as s.
func New(r Recipes, ingredients Children[models.Ingredient], steps Children[models.Step], c comments.Store, s session.Session) *Browser {
	return &Browser{
		recipes:     r,
		ingredients: ingredients,
		steps:       steps,
		comments:    c,
		session:     s,
		guard:       workflow.NewGuard(),
	}
}

// List returns every recipe with the actions offered on it. Listing
// requires a signed-in session.
func (b *Browser) List(ctx context.Context) ([]Entry, error) {
	if err := policy.Decide(b.session, policy.ListRecipes, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	list, err := b.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(list))
	for _, r := range list {
		res := policy.Resource{OwnerID: r.OwnerID()}
		entries = append(entries, Entry{
			Recipe:    r,
			CanEdit:   policy.Allowed(b.session, policy.EditRecipe, res),
			CanDelete: policy.Allowed(b.session, policy.DeleteRecipe, res),
		})
	}
	return entries, nil
}

// Details loads one recipe, its rows and its comments, one call after another.
func (b *Browser) Details(ctx context.Context, id string) (*Details, error) {
	recipe, err := b.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ingredients, err := b.ingredients.ListByRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := b.steps.ListByRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	thread := comments.NewThread(b.comments, b.session, recipe)
	if err := thread.Load(ctx); err != nil {
		return nil, err
	}
	res := policy.Resource{OwnerID: recipe.OwnerID()}
	return &Details{
		Recipe:      recipe,
		Ingredients: ingredients,
		Steps:       steps,
		Thread:      thread,
		CanEdit:     policy.Allowed(b.session, policy.EditRecipe, res),
		CanDelete:   policy.Allowed(b.session, policy.DeleteRecipe, res),
	}, nil
}

// Delete removes a recipe after confirm approves. A declined confirmation
// returns (false, nil) and issues no call.
func (b *Browser) Delete(ctx context.Context, r models.Recipe, confirm ConfirmFunc) (bool, error) {
	var deleted bool
	err := b.guard.Do(func() error {
		if err := policy.Decide(b.session, policy.DeleteRecipe, policy.Resource{OwnerID: r.OwnerID()}).Err(); err != nil {
			return err
		}
		ok, err := confirm("Delete recipe " + r.Title + "?")
		if err != nil || !ok {
			return err
		}
		if err := b.recipes.Delete(ctx, r.ID, b.session.Token); err != nil {
			observability.LogWorkflowError(ctx, "browse", "delete", err)
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
