package workflow

import (
	"context"
	"errors"
	"testing"

	"cookbook/internal/models"
	"cookbook/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_InvalidDraftIssuesNoCalls(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(d *Draft)
	}{
		{"empty title", func(d *Draft) { d.Title = "" }},
		{"blank descriptions", func(d *Draft) { d.Descriptions = "   " }},
		{"empty image", func(d *Draft) { d.ImageURL = "" }},
		{"ingredient without unit", func(d *Draft) { d.Ingredients[1].Unit = "" }},
		{"ingredient without quantity", func(d *Draft) { d.Ingredients[0].Quantity = "" }},
		{"empty step", func(d *Draft) { d.Steps[2].InstructionText = "" }},
		{"everything wrong", func(d *Draft) {
			d.Title, d.Descriptions, d.ImageURL = "", "", ""
			d.Ingredients[0].Name = ""
			d.Steps[0].InstructionText = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			d := validDraft()
			tt.mutate(&d)

			recipe, err := NewComposer(f.backend(), owner).Create(context.Background(), d)
			require.Error(t, err)
			assert.Nil(t, recipe)
			assert.ErrorIs(t, err, models.ErrValidation)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.NotEmpty(t, appErr.Problems)
			assert.Empty(t, f.log.all())
		})
	}
}

func TestComposer_AggregatesAllProblems(t *testing.T) {
	t.Parallel()
	f := newFixture()
	d := validDraft()
	d.Title = ""
	d.Steps[1].InstructionText = ""

	_, err := NewComposer(f.backend(), owner).Create(context.Background(), d)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"title is required", "step 2 needs instruction text"}, appErr.Problems)
}

func TestComposer_CreateOrderAndRecipeID(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.recipes.createFn = func(_ context.Context, in models.RecipeInput) (*models.Recipe, error) {
		return &models.Recipe{ID: "r42", Title: in.Title}, nil
	}

	recipe, err := NewComposer(f.backend(), owner).Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "r42", recipe.ID)

	assert.Equal(t, []string{
		"create recipes",
		"create ingredients",
		"create ingredients",
		"create recipesteps",
		"create recipesteps",
		"create recipesteps",
	}, f.log.writes())

	calls := f.log.all()
	assert.Equal(t, "flour", calls[1].Payload.(models.IngredientInput).Name)
	assert.Equal(t, "milk", calls[2].Payload.(models.IngredientInput).Name)
	assert.Equal(t, "fry", calls[5].Payload.(models.StepInput).InstructionText)
	for _, c := range calls[1:3] {
		assert.Equal(t, "r42", c.Payload.(models.IngredientInput).RecipeID)
	}
	for _, c := range calls[3:] {
		assert.Equal(t, "r42", c.Payload.(models.StepInput).RecipeID)
	}
	for _, c := range calls {
		assert.Equal(t, owner.Token, c.Token)
	}
}

func TestComposer_CreateWithoutRows(t *testing.T) {
	t.Parallel()
	f := newFixture()
	d := validDraft()
	d.Ingredients, d.Steps = nil, nil

	_, err := NewComposer(f.backend(), owner).Create(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"create recipes"}, f.log.writes())
}

func TestComposer_IgnoresIDsFromLoadedFile(t *testing.T) {
	t.Parallel()
	f := newFixture()
	d := validDraft()
	d.Ingredients[0].ID = "stale"

	_, err := NewComposer(f.backend(), owner).Create(context.Background(), d)
	require.NoError(t, err)
	assert.NotContains(t, f.log.writes(), "update ingredients")
}

func TestComposer_RecipeFailureAbortsEverything(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.recipes.createFn = func(context.Context, models.RecipeInput) (*models.Recipe, error) {
		return nil, models.NewServerRejection(500, "db down")
	}

	recipe, err := NewComposer(f.backend(), owner).Create(context.Background(), validDraft())
	assert.Nil(t, recipe)
	assert.ErrorIs(t, err, models.ErrServerRejection)
	assert.NotErrorIs(t, err, models.ErrPartialFailure)
	assert.Equal(t, []string{"create recipes"}, f.log.writes())
}

func TestComposer_ChildFailureIsPartial(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.steps.createFn = func(_ context.Context, in models.StepInput, id string) (*models.Step, error) {
		if in.InstructionText == "rest" {
			return nil, models.NewNetworkError("POST /api/recipesteps", errors.New("connection reset"))
		}
		return &models.Step{ID: id}, nil
	}

	recipe, err := NewComposer(f.backend(), owner).Create(context.Background(), validDraft())
	require.Error(t, err)
	require.NotNil(t, recipe, "the stored recipe is reported")
	assert.ErrorIs(t, err, models.ErrPartialFailure)
	assert.ErrorIs(t, err, models.ErrNetwork)

	var pf *PartialFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, recipe.ID, pf.RecipeID)
	assert.Equal(t, StageStep, pf.Stage)
	assert.Equal(t, 1, pf.Index)
	assert.Equal(t, 3, pf.Written)

	// no rollback, no retry, nothing after the failing row
	assert.Equal(t, []string{
		"create recipes",
		"create ingredients",
		"create ingredients",
		"create recipesteps",
		"create recipesteps",
	}, f.log.writes())
}

func TestComposer_RequiresSignIn(t *testing.T) {
	t.Parallel()
	f := newFixture()
	_, err := NewComposer(f.backend(), session.Session{}).Create(context.Background(), validDraft())
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)
	assert.Empty(t, f.log.all())
}

func TestComposer_InFlightGuard(t *testing.T) {
	t.Parallel()
	f := newFixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	f.recipes.createFn = func(_ context.Context, in models.RecipeInput) (*models.Recipe, error) {
		close(entered)
		<-release
		return &models.Recipe{ID: "r1"}, nil
	}
	c := NewComposer(f.backend(), owner)
	d := validDraft()
	d.Ingredients, d.Steps = nil, nil

	done := make(chan error, 1)
	go func() {
		_, err := c.Create(context.Background(), d)
		done <- err
	}()
	<-entered

	assert.True(t, c.Busy())
	_, err := c.Create(context.Background(), d)
	assert.ErrorIs(t, err, models.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
	assert.Equal(t, []string{"create recipes"}, f.log.writes())
}

func TestComposer_CanceledAfterRecipeIsPartial(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.recipes.createFn = func(context.Context, models.RecipeInput) (*models.Recipe, error) {
		cancel()
		return &models.Recipe{ID: "r1"}, nil
	}

	recipe, err := NewComposer(f.backend(), owner).Create(ctx, validDraft())
	require.NotNil(t, recipe, "the stored recipe is still reported")
	assert.Equal(t, "r1", recipe.ID)
	assert.ErrorIs(t, err, models.ErrPartialFailure)
	assert.ErrorIs(t, err, context.Canceled)

	var pf *PartialFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "r1", pf.RecipeID)
	assert.Equal(t, StageIngredient, pf.Stage)
	assert.Zero(t, pf.Index)
	assert.Zero(t, pf.Written)
	assert.Equal(t, []string{"create recipes"}, f.log.writes())
}
