package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"cookbook/internal/models"
	"cookbook/internal/session"
	"cookbook/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecipes struct{}

func (memRecipes) Get(_ context.Context, id string) (*models.Recipe, error) {
	return &models.Recipe{ID: id, Title: "Soup", Descriptions: "Warm", ImageURL: "/i.jpg", CreatedByID: "u1"}, nil
}

func (memRecipes) Create(_ context.Context, in models.RecipeInput, _ string) (*models.Recipe, error) {
	return &models.Recipe{ID: "new", Title: in.Title}, nil
}

func (memRecipes) Update(_ context.Context, id string, in models.RecipeInput, _ string) (*models.Recipe, error) {
	return &models.Recipe{ID: id, Title: in.Title}, nil
}

type memChildren[T any, In any] struct {
	rows    []T
	deleted []string
}

func (m *memChildren[T, In]) ListByRecipe(context.Context, string) ([]T, error) { return m.rows, nil }

func (m *memChildren[T, In]) Create(context.Context, In, string) (*T, error) { return new(T), nil }

func (m *memChildren[T, In]) Update(context.Context, string, In, string) (*T, error) {
	return new(T), nil
}

func (m *memChildren[T, In]) Delete(_ context.Context, id, _ string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

var (
	cook = session.Session{Token: "t", UserID: "u1", Role: models.RoleUser}
	root = session.Session{Token: "t-root", UserID: "a1", Role: models.RoleAdmin}
)

func openSoup(t *testing.T, s session.Session) (*workflow.Editor, *memChildren[models.Ingredient, models.IngredientInput], *memChildren[models.Step, models.StepInput]) {
	t.Helper()
	ingredients := &memChildren[models.Ingredient, models.IngredientInput]{rows: []models.Ingredient{
		{ID: "i1", Name: "water", Quantity: "1", Unit: "l"},
		{ID: "i2", Name: "salt", Quantity: "1", Unit: "tsp"},
	}}
	steps := &memChildren[models.Step, models.StepInput]{rows: []models.Step{
		{ID: "s1", InstructionText: "boil"},
	}}
	b := workflow.Backend{Recipes: memRecipes{}, Ingredients: ingredients, Steps: steps}
	e, err := workflow.Open(context.Background(), b, s, "r1")
	require.NoError(t, err)
	return e, ingredients, steps
}

func TestParseIngredient(t *testing.T) {
	row, err := parseIngredient(" 2 | cups |  flour, sifted ")
	require.NoError(t, err)
	assert.Equal(t, workflow.IngredientRow{Quantity: "2", Unit: "cups", Name: "flour, sifted"}, row)

	row, err = parseIngredient("1|pinch|salt | pepper")
	require.NoError(t, err)
	assert.Equal(t, "salt | pepper", row.Name)

	_, err = parseIngredient("just flour")
	assert.Error(t, err)
}

func TestParseLines(t *testing.T) {
	rows, err := parseIngredientLines("2 | cups | flour\n\n1 | cup | milk\n")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	steps := parseStepLines("mix\n  \nbake ")
	assert.Equal(t, []workflow.StepRow{{InstructionText: "mix"}, {InstructionText: "bake"}}, steps)

	assert.Equal(t, "2 | cups | flour\n1 | cup | milk", formatIngredients(rows))
}

func TestLoadDraft(t *testing.T) {
	src := `
title: Pancakes
descriptions: Fluffy
image_url: /api/uploads/p.jpg
ingredients:
  - {name: flour, quantity: "2", unit: cups}
steps:
  - instruction_text: mix
`
	d, err := loadDraft("-", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", d.Title)
	assert.Equal(t, "2", d.Ingredients[0].Quantity)
	assert.Equal(t, "mix", d.Steps[0].InstructionText)
	assert.NoError(t, d.Validate(true, true))

	_, err = loadDraft("-", strings.NewReader("titel: typo\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestDumpDraftKeepsIDs(t *testing.T) {
	e, _, _ := openSoup(t, cook)
	var buf bytes.Buffer
	require.NoError(t, dumpDraft(&buf, e.Draft()))
	assert.Contains(t, buf.String(), "id: i1")

	back, err := loadDraft("-", &buf)
	require.NoError(t, err)
	assert.Equal(t, e.Draft(), back)
}

func TestApplyDraft(t *testing.T) {
	e, ingredients, steps := openSoup(t, root)

	target := workflow.Draft{
		Title:        "Better soup",
		Descriptions: "Warmer",
		ImageURL:     "/i.jpg",
		Ingredients: []workflow.IngredientRow{
			{ID: "i2", Name: "sea salt", Quantity: "1", Unit: "tsp"},
			{Name: "leek", Quantity: "1", Unit: "pc"},
		},
		Steps: []workflow.StepRow{
			{ID: "s1", InstructionText: "boil gently"},
		},
	}
	require.NoError(t, applyDraft(context.Background(), e, target))

	assert.Equal(t, []string{"i1"}, ingredients.deleted, "dropped saved row is deleted at once")
	assert.Empty(t, steps.deleted)

	d := e.Draft()
	assert.Equal(t, "Better soup", d.Title)
	require.Len(t, d.Ingredients, 2)
	assert.Equal(t, workflow.IngredientRow{ID: "i2", Name: "sea salt", Quantity: "1", Unit: "tsp"}, d.Ingredients[0])
	assert.False(t, d.Ingredients[1].Persisted())
	assert.Equal(t, "boil gently", d.Steps[0].InstructionText)
	assert.True(t, e.CanSave())

	// applying the same draft again changes nothing on the server
	require.NoError(t, applyDraft(context.Background(), e, e.Draft()))
	assert.Equal(t, []string{"i1"}, ingredients.deleted)
	assert.Len(t, e.Draft().Ingredients, 2)
}

func TestApplyDraftKeepsFileOrder(t *testing.T) {
	e, ingredients, steps := openSoup(t, cook)

	target := e.Draft()
	target.Ingredients = []workflow.IngredientRow{
		{Name: "leek", Quantity: "1", Unit: "pc"},
		{ID: "i2", Name: "salt", Quantity: "1", Unit: "tsp"},
		{ID: "i1", Name: "water", Quantity: "2", Unit: "l"},
	}
	target.Steps = []workflow.StepRow{
		{InstructionText: "chop the leek"},
		{ID: "s1", InstructionText: "boil"},
	}
	require.NoError(t, applyDraft(context.Background(), e, target))
	assert.Empty(t, ingredients.deleted)
	assert.Empty(t, steps.deleted)

	d := e.Draft()
	require.Len(t, d.Ingredients, 3)
	assert.Equal(t, []string{"leek", "salt", "water"}, []string{d.Ingredients[0].Name, d.Ingredients[1].Name, d.Ingredients[2].Name})
	assert.False(t, d.Ingredients[0].Persisted())
	assert.Equal(t, "i2", d.Ingredients[1].ID)
	assert.Equal(t, workflow.IngredientRow{ID: "i1", Name: "water", Quantity: "2", Unit: "l"}, d.Ingredients[2])
	require.Len(t, d.Steps, 2)
	assert.Equal(t, workflow.StepRow{InstructionText: "chop the leek"}, d.Steps[0])
	assert.Equal(t, "s1", d.Steps[1].ID)
}

func TestApplyDraftOwnerCannotDropSavedRow(t *testing.T) {
	e, ingredients, _ := openSoup(t, cook)

	target := e.Draft()
	target.Ingredients = target.Ingredients[1:]
	err := applyDraft(context.Background(), e, target)
	assert.ErrorIs(t, err, models.ErrAuthorizationDenied)
	assert.Empty(t, ingredients.deleted)
	assert.Len(t, e.Draft().Ingredients, 2)
}

func TestCarryIDs(t *testing.T) {
	shown := workflow.Draft{
		Ingredients: []workflow.IngredientRow{{ID: "i1"}, {ID: "i2"}},
		Steps:       []workflow.StepRow{{ID: "s1"}},
	}
	edited := workflow.Draft{
		Ingredients: []workflow.IngredientRow{{Name: "a"}},
		Steps:       []workflow.StepRow{{InstructionText: "x"}, {InstructionText: "y"}},
	}
	carryIDs(&shown, &edited)
	assert.Equal(t, "i1", edited.Ingredients[0].ID)
	assert.Equal(t, "s1", edited.Steps[0].ID)
	assert.Empty(t, edited.Steps[1].ID)
}
