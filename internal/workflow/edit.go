package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/policy"
	"cookbook/internal/session"
)

// Editor holds the form state of one existing recipe. Removing a saved row
// is admin only and deletes it on the server at once; every other change stays local until
// Save. Apart from the in-flight guard an Editor is meant for one caller.
type Editor struct {
	backend Backend
	session session.Session
	guard   *Guard
	recipe  *models.Recipe
	draft   Draft
}

// Open loads the recipe and its rows. An empty ingredient or step list is
// seeded with one blank row so there is always a line to fill in.
func Open(ctx context.Context, b Backend, s session.Session, recipeID string) (*Editor, error) {
	recipe, err := b.Recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := policy.Decide(s, policy.EditRecipe, policy.Resource{OwnerID: recipe.OwnerID()}).Err(); err != nil {
		return nil, err
	}
	ingredients, err := b.Ingredients.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	steps, err := b.Steps.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := DraftFrom(recipe, ingredients, steps)
	if len(d.Ingredients) == 0 {
		d.Ingredients = append(d.Ingredients, IngredientRow{})
	}
	if len(d.Steps) == 0 {
		d.Steps = append(d.Steps, StepRow{})
	}
	return &Editor{backend: b, session: s, guard: NewGuard(), recipe: recipe, draft: d}, nil
}

// Recipe returns the recipe as loaded.
func (e *Editor) Recipe() *models.Recipe {
	return e.recipe
}

// Draft returns a copy of the current form state.
func (e *Editor) Draft() Draft {
	d := e.draft
	d.Ingredients = append([]IngredientRow(nil), e.draft.Ingredients...)
	d.Steps = append([]StepRow(nil), e.draft.Steps...)
	return d
}

// Busy reports whether a save or removal is pending.
func (e *Editor) Busy() bool {
	return e.guard.Busy()
}

// SetFields replaces the recipe's own fields.
func (e *Editor) SetFields(title, descriptions, imageURL string) {
	e.draft.Title = title
	e.draft.Descriptions = descriptions
	e.draft.ImageURL = imageURL
}

// AddIngredient appends an unsaved row.
func (e *Editor) AddIngredient(row IngredientRow) {
	row.ID = ""
	e.draft.Ingredients = append(e.draft.Ingredients, row)
}

// SetIngredient changes the fields of row i, keeping its identity.
func (e *Editor) SetIngredient(i int, row IngredientRow) error {
	if i < 0 || i >= len(e.draft.Ingredients) {
		return rowOutOfRange(StageIngredient, i)
	}
	row.ID = e.draft.Ingredients[i].ID
	e.draft.Ingredients[i] = row
	return nil
}

// RemoveIngredient drops row i. A saved row can only be removed by an admin
// and is deleted on the server first; if that fails the row stays.
func (e *Editor) RemoveIngredient(ctx context.Context, i int) error {
	return e.guard.Do(func() error {
		if i < 0 || i >= len(e.draft.Ingredients) {
			return rowOutOfRange(StageIngredient, i)
		}
		if row := e.draft.Ingredients[i]; row.Persisted() {
			if err := e.mayRemoveSaved(); err != nil {
				return err
			}
			if err := e.backend.Ingredients.Delete(ctx, row.ID, e.session.Token); err != nil {
				observability.LogWorkflowError(ctx, "edit", "remove "+StageIngredient, err)
				return err
			}
			observability.LogWorkflowStep(ctx, "edit", "remove "+StageIngredient, slog.String("id", row.ID))
		}
		e.draft.Ingredients = append(e.draft.Ingredients[:i], e.draft.Ingredients[i+1:]...)
		return nil
	})
}

// AddStep appends an unsaved row.
func (e *Editor) AddStep(row StepRow) {
	row.ID = ""
	e.draft.Steps = append(e.draft.Steps, row)
}

// SetStep changes the text of row i, keeping its identity.
func (e *Editor) SetStep(i int, row StepRow) error {
	if i < 0 || i >= len(e.draft.Steps) {
		return rowOutOfRange(StageStep, i)
	}
	row.ID = e.draft.Steps[i].ID
	e.draft.Steps[i] = row
	return nil
}

// RemoveStep drops row i, deleting it on the server first when it was saved.
// Saved rows are admin only.
func (e *Editor) RemoveStep(ctx context.Context, i int) error {
	return e.guard.Do(func() error {
		if i < 0 || i >= len(e.draft.Steps) {
			return rowOutOfRange(StageStep, i)
		}
		if row := e.draft.Steps[i]; row.Persisted() {
			if err := e.mayRemoveSaved(); err != nil {
				return err
			}
			if err := e.backend.Steps.Delete(ctx, row.ID, e.session.Token); err != nil {
				observability.LogWorkflowError(ctx, "edit", "remove "+StageStep, err)
				return err
			}
			observability.LogWorkflowStep(ctx, "edit", "remove "+StageStep, slog.String("id", row.ID))
		}
		e.draft.Steps = append(e.draft.Steps[:i], e.draft.Steps[i+1:]...)
		return nil
	})
}

// CanRemoveSaved reports whether the session may remove rows that are
// already stored.
func (e *Editor) CanRemoveSaved() bool {
	return e.mayRemoveSaved() == nil
}

func (e *Editor) mayRemoveSaved() error {
	return policy.Decide(e.session, policy.RemoveRow, policy.Resource{OwnerID: e.recipe.OwnerID()}).Err()
}

// ArrangeIngredients replaces the ingredient rows with rows, in that order.
// A row keeps its saved identity only if its id names a row the editor
// holds; any other row is added as new. Every saved row must be listed
// once, so removals still go through RemoveIngredient.
func (e *Editor) ArrangeIngredients(rows []IngredientRow) error {
	arranged, err := arrange(StageIngredient, e.draft.Ingredients, rows,
		func(r IngredientRow) string { return r.ID },
		func(r IngredientRow) IngredientRow {
			r.ID = ""
			return r
		})
	if err != nil {
		return err
	}
	e.draft.Ingredients = arranged
	return nil
}

// ArrangeSteps is ArrangeIngredients for steps.
func (e *Editor) ArrangeSteps(rows []StepRow) error {
	arranged, err := arrange(StageStep, e.draft.Steps, rows,
		func(r StepRow) string { return r.ID },
		func(r StepRow) StepRow {
			r.ID = ""
			return r
		})
	if err != nil {
		return err
	}
	e.draft.Steps = arranged
	return nil
}

func arrange[R any](stage string, current, rows []R, id func(R) string, unsaved func(R) R) ([]R, error) {
	pending := make(map[string]bool)
	for _, r := range current {
		if id(r) != "" {
			pending[id(r)] = true
		}
	}
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if !pending[id(r)] {
			out = append(out, unsaved(r))
			continue
		}
		delete(pending, id(r))
		out = append(out, r)
	}
	if len(pending) > 0 {
		return nil, models.NewValidationError(fmt.Sprintf("%d saved %s row(s) must be removed, not left out", len(pending), stage))
	}
	return out, nil
}

// Problems lists what keeps the draft from being saved.
func (e *Editor) Problems() []string {
	return e.draft.Problems(true, false)
}

// CanSave reports whether the title, descriptions and every row pass
// validation and at least one ingredient and one step are present. The image
// url may be left empty.
func (e *Editor) CanSave() bool {
	return len(e.Problems()) == 0
}

// Save writes the recipe fields, then every ingredient row and every step
// row in display order. Rows created here keep their new ids, so saving
// again updates them.
func (e *Editor) Save(ctx context.Context) error {
	return e.guard.Do(func() error {
		if err := e.draft.Validate(true, false); err != nil {
			return err
		}
		ctx := observability.WithUserID(ctx, e.session.UserID)

		updated, err := e.backend.Recipes.Update(ctx, e.recipe.ID, e.draft.recipeInput(), e.session.Token)
		if err != nil {
			observability.LogWorkflowError(ctx, "edit", StageRecipe, err)
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if updated != nil && updated.ID != "" {
			e.recipe = updated
		}
		observability.LogWorkflowStep(ctx, "edit", StageRecipe, slog.String("recipe_id", e.recipe.ID))

		w := rowWriter{backend: e.backend, token: e.session.Token, recipeID: e.recipe.ID, workflow: "edit"}
		if err := w.ingredients(ctx, e.draft.Ingredients); err != nil {
			return err
		}
		return w.steps(ctx, e.draft.Steps)
	})
}

func rowOutOfRange(stage string, i int) error {
	return models.NewValidationError(fmt.Sprintf("no %s row %d", stage, i+1))
}
