package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cookbook/internal/browse"
	"cookbook/internal/comments"
	"cookbook/internal/models"
	"cookbook/internal/session"
	"cookbook/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedComments struct {
	list []models.Comment
}

func (f fixedComments) ListByRecipe(context.Context, string) ([]models.Comment, error) {
	return f.list, nil
}

func (fixedComments) Create(context.Context, models.CommentInput, string) (*models.Comment, error) {
	return nil, errors.New("not used")
}

func (fixedComments) Update(context.Context, string, models.CommentInput, string) (*models.Comment, error) {
	return nil, errors.New("not used")
}

func (fixedComments) Delete(context.Context, string, string) error {
	return errors.New("not used")
}

func TestRecipeList(t *testing.T) {
	var buf bytes.Buffer
	RecipeList(&buf, []browse.Entry{
		{Recipe: models.Recipe{ID: "r1", Title: "Soup", CreatedBy: models.User{Name: "Olive"}}, CanEdit: true},
		{Recipe: models.Recipe{ID: "r2", Title: "Bread"}},
	})
	out := buf.String()
	assert.Contains(t, out, "Soup")
	assert.Contains(t, out, "by Olive")
	assert.Contains(t, out, "[edit]")
	assert.Contains(t, out, "by Unknown")
	assert.NotContains(t, out, "delete")

	buf.Reset()
	RecipeList(&buf, nil)
	assert.Contains(t, buf.String(), "No recipes yet.")
}

func TestRecipeDetails(t *testing.T) {
	recipe := &models.Recipe{ID: "r1", Title: "Soup", Descriptions: "Warm", CreatedBy: models.User{ID: "owner", Name: "Olive"}}
	s := session.Session{Token: "t", UserID: "ann", Role: models.RoleUser}
	th := comments.NewThread(fixedComments{list: []models.Comment{
		{ID: "c1", User: models.User{ID: "ann", Name: "Ann"}, Content: "yum"},
	}}, s, recipe)
	require.NoError(t, th.Load(context.Background()))

	var buf bytes.Buffer
	RecipeDetails(&buf, &browse.Details{
		Recipe:      recipe,
		Ingredients: []models.Ingredient{{Name: "water", Quantity: "1", Unit: "l"}},
		Steps:       []models.Step{{InstructionText: "boil"}},
		Thread:      th,
	})
	out := buf.String()
	assert.Contains(t, out, "INGREDIENTS")
	assert.Contains(t, out, "1 l water")
	assert.Contains(t, out, "1. boil")
	assert.Contains(t, out, "yum")
	assert.Contains(t, out, "[edit]")
	assert.NotContains(t, out, "Commenting is not available")
}

func TestDraft(t *testing.T) {
	var buf bytes.Buffer
	Draft(&buf, workflow.Draft{
		Title:       "Soup",
		Ingredients: []workflow.IngredientRow{{ID: "i1", Name: "water"}, {Name: "salt"}},
	}, []string{"descriptions are required"})
	out := buf.String()
	assert.Contains(t, out, "(new)")
	assert.Contains(t, out, "descriptions are required")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	Error(&buf, models.NewValidationError("Please fill out all required fields", "title is required"))
	assert.Contains(t, buf.String(), "Please fill out all required fields")
	assert.Contains(t, buf.String(), "title is required")

	buf.Reset()
	Error(&buf, &workflow.PartialFailure{RecipeID: "r9", Stage: workflow.StageStep, Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "recipe r9 exists")
}
