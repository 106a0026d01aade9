package service

import (
	"context"
	"errors"
	"fmt"

	"cookbook/internal/models"
	"cookbook/internal/policy"
	"cookbook/internal/repository"
	"cookbook/internal/session"
)

// rowKind adapts one child row type (ingredient or step) to ChildService.
type rowKind[T repository.ChildRow, In any] struct {
	recipeOf  func(In) string
	rowRecipe func(*T) string
	build     func(In) *T
	apply     func(*T, In)
	check     func(In) []string
}

// ChildService manages rows that belong to a recipe. Changing them is
// editing the recipe: only its creator or an admin may do it.
type ChildService[T repository.ChildRow, In any] struct {
	rows       repository.ChildRepository[T]
	recipeRepo repository.RecipeRepository
	kind       rowKind[T, In]
}

type (
	IngredientService = ChildService[models.Ingredient, models.IngredientInput]
	StepService       = ChildService[models.Step, models.StepInput]
)

func NewIngredientService(rows repository.ChildRepository[models.Ingredient], recipeRepo repository.RecipeRepository) *IngredientService {
	return &IngredientService{rows: rows, recipeRepo: recipeRepo, kind: rowKind[models.Ingredient, models.IngredientInput]{
		recipeOf:  func(in models.IngredientInput) string { return in.RecipeID },
		rowRecipe: func(i *models.Ingredient) string { return i.RecipeID },
		build: func(in models.IngredientInput) *models.Ingredient {
			return &models.Ingredient{RecipeID: in.RecipeID, Name: in.Name, Quantity: in.Quantity, Unit: in.Unit}
		},
		apply: func(i *models.Ingredient, in models.IngredientInput) {
			i.Name, i.Quantity, i.Unit = in.Name, in.Quantity, in.Unit
		},
		check: func(in models.IngredientInput) []string {
			if blank(in.Name) || blank(in.Quantity) || blank(in.Unit) {
				return []string{"ingredient needs a name, quantity and unit"}
			}
			return nil
		},
	}}
}

func NewStepService(rows repository.ChildRepository[models.Step], recipeRepo repository.RecipeRepository) *StepService {
	return &StepService{rows: rows, recipeRepo: recipeRepo, kind: rowKind[models.Step, models.StepInput]{
		recipeOf:  func(in models.StepInput) string { return in.RecipeID },
		rowRecipe: func(s *models.Step) string { return s.RecipeID },
		build: func(in models.StepInput) *models.Step {
			return &models.Step{RecipeID: in.RecipeID, InstructionText: in.InstructionText}
		},
		apply: func(s *models.Step, in models.StepInput) { s.InstructionText = in.InstructionText },
		check: func(in models.StepInput) []string {
			if blank(in.InstructionText) {
				return []string{"step needs instruction text"}
			}
			return nil
		},
	}}
}

// List returns the rows of recipeID in display order, or every row when
// recipeID is empty.
func (s *ChildService[T, In]) List(ctx context.Context, recipeID string) ([]*T, error) {
	return s.rows.List(ctx, recipeID)
}

func (s *ChildService[T, In]) Get(ctx context.Context, id string) (*T, error) {
	return s.rows.GetByID(ctx, id)
}

func (s *ChildService[T, In]) Create(ctx context.Context, actor session.Session, in In) (*T, error) {
	recipeID := s.kind.recipeOf(in)
	if blank(recipeID) {
		return nil, models.NewValidationError("recipe_id is required")
	}
	if err := s.authorizeRecipe(ctx, actor, recipeID); err != nil {
		return nil, err
	}
	if problems := s.kind.check(in); len(problems) > 0 {
		return nil, models.NewValidationError("Please fill out all required fields", problems...)
	}

	row := s.kind.build(in)
	if err := s.rows.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update changes the row's fields. A row never moves to another recipe.
func (s *ChildService[T, In]) Update(ctx context.Context, actor session.Session, id string, in In) (*T, error) {
	row, err := s.rows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRecipe(ctx, actor, s.kind.rowRecipe(row)); err != nil {
		return nil, err
	}
	if problems := s.kind.check(in); len(problems) > 0 {
		return nil, models.NewValidationError("Please fill out all required fields", problems...)
	}

	s.kind.apply(row, in)
	if err := s.rows.Update(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *ChildService[T, In]) Delete(ctx context.Context, actor session.Session, id string) error {
	row, err := s.rows.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeRecipe(ctx, actor, s.kind.rowRecipe(row)); err != nil {
		return err
	}
	return s.rows.Delete(ctx, id)
}

func (s *ChildService[T, In]) authorizeRecipe(ctx context.Context, actor session.Session, recipeID string) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewValidationError(fmt.Sprintf("recipe %s does not exist", recipeID))
		}
		return err
	}
	return authorize(ctx, actor, policy.EditRecipe, policy.Resource{OwnerID: recipe.OwnerID()})
}
