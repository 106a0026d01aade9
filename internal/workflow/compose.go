package workflow

import (
	"context"
	"log/slog"

	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/policy"
	"cookbook/internal/session"
)

// Composer creates a recipe together with its ingredients and steps.
type Composer struct {
	backend Backend
	session session.Session
	guard   *Guard
}

// NewComposer returns a composer acting as s.
func NewComposer(b Backend, s session.Session) *Composer {
	return &Composer{backend: b, session: s, guard: NewGuard()}
}

// Busy reports whether a Create is pending.
func (c *Composer) Busy() bool {
	return c.guard.Busy()
}

// Create validates the whole draft, then writes the recipe, each ingredient
// and each step in that order. An invalid draft issues no calls. A failed
// recipe write returns the error unchanged; a failed child write returns the
// stored recipe together with a *PartialFailure.
func (c *Composer) Create(ctx context.Context, d Draft) (*models.Recipe, error) {
	var created *models.Recipe
	err := c.guard.Do(func() error {
		var err error
		created, err = c.create(ctx, d)
		return err
	})
	return created, err
}

func (c *Composer) create(ctx context.Context, d Draft) (*models.Recipe, error) {
	if err := policy.Decide(c.session, policy.CreateRecipe, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	if err := d.Validate(false, true); err != nil {
		return nil, err
	}
	ctx = observability.WithUserID(ctx, c.session.UserID)

	recipe, err := c.backend.Recipes.Create(ctx, d.recipeInput(), c.session.Token)
	if err != nil {
		observability.LogWorkflowError(ctx, "create", StageRecipe, err)
		return nil, err
	}
	w := rowWriter{backend: c.backend, token: c.session.Token, recipeID: recipe.ID, workflow: "create"}
	if err := ctx.Err(); err != nil {
		return recipe, w.fail(ctx, StageIngredient, 0, err)
	}
	observability.LogWorkflowStep(ctx, "create", StageRecipe, slog.String("recipe_id", recipe.ID))

	// every row is new here, whatever ids a loaded file carried
	ingredients := make([]IngredientRow, len(d.Ingredients))
	for i, row := range d.Ingredients {
		row.ID = ""
		ingredients[i] = row
	}
	steps := make([]StepRow, len(d.Steps))
	for i, row := range d.Steps {
		row.ID = ""
		steps[i] = row
	}

	if err := w.ingredients(ctx, ingredients); err != nil {
		return recipe, err
	}
	if err := w.steps(ctx, steps); err != nil {
		return recipe, err
	}
	return recipe, nil
}

// rowWriter stores child rows of one recipe in display order, creating rows
// without an id and updating the rest. It stops at the first failure.
type rowWriter struct {
	backend  Backend
	token    string
	recipeID string
	workflow string
	written  int
}

func (w *rowWriter) fail(ctx context.Context, stage string, index int, err error) error {
	observability.LogWorkflowError(ctx, w.workflow, stage, err)
	return &PartialFailure{RecipeID: w.recipeID, Stage: stage, Index: index, Written: w.written, Err: err}
}

// ingredients writes rows and records the ids of created ones in place.
func (w *rowWriter) ingredients(ctx context.Context, rows []IngredientRow) error {
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return w.fail(ctx, StageIngredient, i, err)
		}
		row := &rows[i]
		if row.Persisted() {
			if _, err := w.backend.Ingredients.Update(ctx, row.ID, row.input(""), w.token); err != nil {
				return w.fail(ctx, StageIngredient, i, err)
			}
		} else {
			created, err := w.backend.Ingredients.Create(ctx, row.input(w.recipeID), w.token)
			if err != nil {
				return w.fail(ctx, StageIngredient, i, err)
			}
			row.ID = created.ID
		}
		w.written++
		observability.LogWorkflowStep(ctx, w.workflow, StageIngredient, slog.Int("index", i), slog.String("id", row.ID))
	}
	return nil
}

// steps writes rows and records the ids of created ones in place.
func (w *rowWriter) steps(ctx context.Context, rows []StepRow) error {
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return w.fail(ctx, StageStep, i, err)
		}
		row := &rows[i]
		if row.Persisted() {
			if _, err := w.backend.Steps.Update(ctx, row.ID, row.input(""), w.token); err != nil {
				return w.fail(ctx, StageStep, i, err)
			}
		} else {
			created, err := w.backend.Steps.Create(ctx, row.input(w.recipeID), w.token)
			if err != nil {
				return w.fail(ctx, StageStep, i, err)
			}
			row.ID = created.ID
		}
		w.written++
		observability.LogWorkflowStep(ctx, w.workflow, StageStep, slog.Int("index", i), slog.String("id", row.ID))
	}
	return nil
}
