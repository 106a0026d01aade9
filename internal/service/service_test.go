package service

import (
	"context"
	"testing"

	"cookbook/internal/models"
	"cookbook/internal/repository"
	"cookbook/internal/session"
	"cookbook/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	recipes     *RecipeService
	ingredients *IngredientService
	steps       *StepService
	comments    *CommentService
	owner       session.Session
	other       session.Session
	admin       session.Session
	recipe      *models.Recipe
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	recipeRepo := repository.NewRecipeRepository(db, nil)
	f := &fixture{
		recipes:     NewRecipeService(recipeRepo),
		ingredients: NewIngredientService(repository.NewIngredientRepository(db), recipeRepo),
		steps:       NewStepService(repository.NewStepRepository(db), recipeRepo),
		comments:    NewCommentService(repository.NewCommentRepository(db), recipeRepo),
	}
	as := func(u *models.User) session.Session {
		return session.Session{Token: "t", UserID: u.ID, Role: u.Role, Name: u.Name}
	}
	f.owner = as(testutil.CreateUser(t, db, "owner", models.RoleUser))
	f.other = as(testutil.CreateUser(t, db, "other", models.RoleUser))
	f.admin = as(testutil.CreateUser(t, db, "admin", models.RoleAdmin))

	r, err := f.recipes.CreateRecipe(context.Background(), f.owner, models.RecipeInput{Title: "Soup", Descriptions: "Warm", ImageURL: "/i.jpg"})
	require.NoError(t, err)
	f.recipe = r
	return f
}

func TestRecipePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := models.RecipeInput{Title: "Stew", Descriptions: "Hearty", ImageURL: "/s.jpg"}

	list, err := f.recipes.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.recipes.CreateRecipe(ctx, session.Session{}, in)
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)

	_, err = f.recipes.UpdateRecipe(ctx, f.other, f.recipe.ID, in)
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)

	updated, err := f.recipes.UpdateRecipe(ctx, f.owner, f.recipe.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Stew", updated.Title)
	assert.Equal(t, f.owner.UserID, updated.OwnerID())

	_, err = f.recipes.UpdateRecipe(ctx, f.admin, f.recipe.ID, in)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.recipes.DeleteRecipe(ctx, f.owner, f.recipe.ID), models.ErrAuthorizationDenied)
	require.NoError(t, f.recipes.DeleteRecipe(ctx, f.admin, f.recipe.ID))
	_, err = f.recipes.GetRecipe(ctx, f.recipe.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecipeValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.recipes.CreateRecipe(context.Background(), f.owner, models.RecipeInput{Title: " "})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Len(t, appErr.Problems, 3)
}

func TestUpdateRecipeMayClearImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.recipes.UpdateRecipe(ctx, f.owner, f.recipe.ID, models.RecipeInput{Title: "Soup", Descriptions: "Warm"})
	require.NoError(t, err)
	assert.Empty(t, updated.ImageURL)

	_, err = f.recipes.UpdateRecipe(ctx, f.owner, f.recipe.ID, models.RecipeInput{Descriptions: "Warm"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.recipes.CreateRecipe(ctx, f.owner, models.RecipeInput{Title: "Stew", Descriptions: "Hearty"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestChildRowsFollowRecipeOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := models.IngredientInput{RecipeID: f.recipe.ID, Name: "salt", Quantity: "1", Unit: "tsp"}

	_, err := f.ingredients.Create(ctx, f.other, in)
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)

	row, err := f.ingredients.Create(ctx, f.owner, in)
	require.NoError(t, err)
	assert.Equal(t, f.recipe.ID, row.RecipeID)

	in.Name = "sea salt"
	in.RecipeID = "elsewhere"
	row, err = f.ingredients.Update(ctx, f.admin, row.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "sea salt", row.Name)
	assert.Equal(t, f.recipe.ID, row.RecipeID, "rows never move")

	assert.ErrorIs(t, f.ingredients.Delete(ctx, f.other, row.ID), models.ErrAuthorizationDenied)
	require.NoError(t, f.ingredients.Delete(ctx, f.owner, row.ID))

	_, err = f.ingredients.Create(ctx, f.owner, models.IngredientInput{RecipeID: "missing", Name: "a", Quantity: "1", Unit: "u"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.ingredients.Create(ctx, f.owner, models.IngredientInput{RecipeID: f.recipe.ID, Name: "a"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStepsListInCreationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, text := range []string{"chop", "boil", "serve"} {
		_, err := f.steps.Create(ctx, f.owner, models.StepInput{RecipeID: f.recipe.ID, InstructionText: text})
		require.NoError(t, err)
	}
	rows, err := f.steps.List(ctx, f.recipe.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "chop", rows[0].InstructionText)
	assert.Equal(t, "serve", rows[2].InstructionText)

	_, err = f.steps.Create(ctx, f.owner, models.StepInput{RecipeID: f.recipe.ID, InstructionText: "  "})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCommentPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.comments.CreateComment(ctx, f.owner, models.CommentInput{RecipeID: f.recipe.ID, Content: "mine is great"})
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied, "creators do not comment on their own recipe")

	_, err = f.comments.CreateComment(ctx, session.Session{}, models.CommentInput{RecipeID: f.recipe.ID, Content: "hi"})
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)

	_, err = f.comments.CreateComment(ctx, f.other, models.CommentInput{RecipeID: f.recipe.ID, Content: " "})
	assert.ErrorIs(t, err, models.ErrValidation)

	c, err := f.comments.CreateComment(ctx, f.other, models.CommentInput{RecipeID: f.recipe.ID, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, "other", c.AuthorName())

	_, err = f.comments.UpdateComment(ctx, f.owner, c.ID, models.CommentInput{Content: "edited"})
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)
	c, err = f.comments.UpdateComment(ctx, f.other, c.ID, models.CommentInput{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Content)
	_, err = f.comments.UpdateComment(ctx, f.admin, c.ID, models.CommentInput{Content: "moderated"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.comments.DeleteComment(ctx, f.other, c.ID), models.ErrAuthorizationDenied)
	require.NoError(t, f.comments.DeleteComment(ctx, f.admin, c.ID))

	list, err := f.comments.ListComments(ctx, f.recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
