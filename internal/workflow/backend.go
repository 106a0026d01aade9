// Package workflow turns "create a recipe" and "edit a recipe" into single
// actions over an API that only exposes independent per-entity calls.
// Calls within one action are issued strictly in order; nothing is retried
// or rolled back.
package workflow

import (
	"context"

	"cookbook/internal/apiclient"
	"cookbook/internal/models"
)

// RecipeStore is the subset of the recipe resource the workflows use.
type RecipeStore interface {
	Get(ctx context.Context, id string) (*models.Recipe, error)
	Create(ctx context.Context, in models.RecipeInput, token string) (*models.Recipe, error)
	Update(ctx context.Context, id string, in models.RecipeInput, token string) (*models.Recipe, error)
}

// ChildStore is a resource whose entities belong to one recipe.
type ChildStore[T any, In any] interface {
	ListByRecipe(ctx context.Context, recipeID string) ([]T, error)
	Create(ctx context.Context, in In, token string) (*T, error)
	Update(ctx context.Context, id string, in In, token string) (*T, error)
	Delete(ctx context.Context, id, token string) error
}

// Backend groups the resources one recipe aggregate spans.
type Backend struct {
	Recipes     RecipeStore
	Ingredients ChildStore[models.Ingredient, models.IngredientInput]
	Steps       ChildStore[models.Step, models.StepInput]
}

// NewBackend wires the workflows to the REST client.
func NewBackend(c *apiclient.Client) Backend {
	return Backend{
		Recipes:     c.Recipes(),
		Ingredients: c.Ingredients(),
		Steps:       c.Steps(),
	}
}
