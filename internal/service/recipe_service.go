package service

import (
	"context"

	"cookbook/internal/models"
	"cookbook/internal/policy"
	"cookbook/internal/repository"
	"cookbook/internal/session"
)

type RecipeService struct {
	recipeRepo repository.RecipeRepository
}

func NewRecipeService(recipeRepo repository.RecipeRepository) *RecipeService {
	return &RecipeService{recipeRepo: recipeRepo}
}

// ListRecipes is public. Requiring a sign-in to browse is the client's rule.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]*models.Recipe, error) {
	return s.recipeRepo.List(ctx)
}

func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, id)
}

func (s *RecipeService) CreateRecipe(ctx context.Context, actor session.Session, in models.RecipeInput) (*models.Recipe, error) {
	if err := authorize(ctx, actor, policy.CreateRecipe, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := validateRecipe(in, true); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:        in.Title,
		Descriptions: in.Descriptions,
		ImageURL:     in.ImageURL,
		CreatedByID:  actor.UserID,
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe is allowed to the creator and to admins.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor session.Session, id string, in models.RecipeInput) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, actor, policy.EditRecipe, policy.Resource{OwnerID: recipe.OwnerID()}); err != nil {
		return nil, err
	}
	if err := validateRecipe(in, false); err != nil {
		return nil, err
	}

	recipe.Title = in.Title
	recipe.Descriptions = in.Descriptions
	recipe.ImageURL = in.ImageURL
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}
	return s.recipeRepo.GetByID(ctx, id)
}

// DeleteRecipe is admin only and removes every row that belongs to the recipe.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor session.Session, id string) error {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, actor, policy.DeleteRecipe, policy.Resource{OwnerID: recipe.OwnerID()}); err != nil {
		return err
	}
	return s.recipeRepo.Delete(ctx, id)
}

// validateRecipe checks the recipe fields. An update may clear the image.
func validateRecipe(in models.RecipeInput, requireImage bool) error {
	var problems []string
	if blank(in.Title) {
		problems = append(problems, "title is required")
	}
	if blank(in.Descriptions) {
		problems = append(problems, "descriptions are required")
	}
	if requireImage && blank(in.ImageURL) {
		problems = append(problems, "image url is required")
	}
	if len(problems) > 0 {
		return models.NewValidationError("Please fill out all required fields", problems...)
	}
	return nil
}
