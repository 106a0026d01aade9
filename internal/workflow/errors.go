package workflow

import (
	"fmt"

	"cookbook/internal/models"
)

// Stages of a recipe write.
const (
	StageRecipe     = "recipe"
	StageIngredient = "ingredient"
	StageStep       = "step"
)

// PartialFailure reports a save that stopped after the recipe itself was
// written. Rows before Index in Stage were written; nothing after it was
// attempted and nothing was undone.
type PartialFailure struct {
	RecipeID string
	Stage    string
	Index    int
	// Written counts the child rows that were stored before the failure.
	Written int
	Err     error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("recipe %s saved, but %s %d failed after %d row(s) were written: %v",
		e.RecipeID, e.Stage, e.Index+1, e.Written, e.Err)
}

func (e *PartialFailure) Unwrap() error {
	return e.Err
}

// Is matches models.ErrPartialFailure; the cause stays reachable through Unwrap.
func (e *PartialFailure) Is(target error) bool {
	t, ok := target.(*models.AppError)
	return ok && t.Code == models.CodePartialFailure
}
