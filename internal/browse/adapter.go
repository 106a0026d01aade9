package browse

import (
	"context"

	"cookbook/internal/apiclient"
	"cookbook/internal/models"
	"cookbook/internal/session"
)

type recipeResource struct {
	*apiclient.Resource[models.Recipe, models.RecipeInput]
}

func (r recipeResource) List(ctx context.Context) ([]models.Recipe, error) {
	return r.Resource.List(ctx, apiclient.Filter{})
}

// FromClient wires a browser to the REST client.
func FromClient(c *apiclient.Client, s session.Session) *Browser {
	return New(recipeResource{c.Recipes()}, c.Ingredients(), c.Steps(), c.Comments(), s)
}
