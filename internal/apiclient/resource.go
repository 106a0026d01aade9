package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"cookbook/internal/models"
)

// Filter narrows a List call. The zero value lists everything.
type Filter struct {
	RecipeID string
}

func (f Filter) query() url.Values {
	if f.RecipeID == "" {
		return nil
	}
	return url.Values{"recipe_id": {f.RecipeID}}
}

// Resource is one REST collection: T is the entity the API returns, In the
// payload it accepts on create and update. Reads are unauthenticated;
// mutations require a bearer token.
type Resource[T any, In any] struct {
	client *Client
	name   string
}

// Name returns the collection path segment, e.g. "recipesteps".
func (r *Resource[T, In]) Name() string {
	return r.name
}

// List fetches the collection, optionally filtered by owning recipe.
func (r *Resource[T, In]) List(ctx context.Context, f Filter) ([]T, error) {
	var out []T
	if err := r.client.doJSON(ctx, http.MethodGet, r.name, "", f.query(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// ListByRecipe is List filtered to one recipe's children.
func (r *Resource[T, In]) ListByRecipe(ctx context.Context, recipeID string) ([]T, error) {
	return r.List(ctx, Filter{RecipeID: recipeID})
}

// Get fetches one entity. A missing entity yields an error matching models.ErrNotFound.
func (r *Resource[T, In]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, models.NewValidationError(r.name + " id is required")
	}
	var out T
	if err := r.client.doJSON(ctx, http.MethodGet, r.path(id), "", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new entity and returns it as stored.
func (r *Resource[T, In]) Create(ctx context.Context, in In, token string) (*T, error) {
	if token == "" {
		return nil, errTokenRequired(r.name)
	}
	var out T
	if err := r.client.doJSON(ctx, http.MethodPost, r.name, token, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the mutable fields of an entity.
func (r *Resource[T, In]) Update(ctx context.Context, id string, in In, token string) (*T, error) {
	if token == "" {
		return nil, errTokenRequired(r.name)
	}
	if id == "" {
		return nil, models.NewValidationError(r.name + " id is required")
	}
	var out T
	if err := r.client.doJSON(ctx, http.MethodPut, r.path(id), token, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an entity.
func (r *Resource[T, In]) Delete(ctx context.Context, id, token string) error {
	if token == "" {
		return errTokenRequired(r.name)
	}
	if id == "" {
		return models.NewValidationError(r.name + " id is required")
	}
	return r.client.doJSON(ctx, http.MethodDelete, r.path(id), token, nil, nil, nil)
}

func (r *Resource[T, In]) path(id string) string {
	return r.name + "/" + url.PathEscape(id)
}

func errTokenRequired(resource string) error {
	return models.NewAuthorizationDenied("you must be signed in to modify " + resource)
}
