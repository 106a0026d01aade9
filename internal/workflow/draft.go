package workflow

import (
	"fmt"
	"strings"

	"cookbook/internal/models"
)

// IngredientRow is one editable ingredient line. ID is empty until the row
// has been saved.
type IngredientRow struct {
	ID       string `yaml:"id,omitempty" json:"_id,omitempty"`
	Name     string `yaml:"name" json:"name"`
	Quantity string `yaml:"quantity" json:"quantity"`
	Unit     string `yaml:"unit" json:"unit"`
}

// Persisted reports whether the row exists on the server.
func (r IngredientRow) Persisted() bool { return r.ID != "" }

func (r IngredientRow) input(recipeID string) models.IngredientInput {
	return models.IngredientInput{RecipeID: recipeID, Name: r.Name, Quantity: r.Quantity, Unit: r.Unit}
}

// StepRow is one editable instruction line.
type StepRow struct {
	ID              string `yaml:"id,omitempty" json:"_id,omitempty"`
	InstructionText string `yaml:"instruction_text" json:"instruction_text"`
}

// Persisted reports whether the row exists on the server.
func (r StepRow) Persisted() bool { return r.ID != "" }

func (r StepRow) input(recipeID string) models.StepInput {
	return models.StepInput{RecipeID: recipeID, InstructionText: r.InstructionText}
}

// Draft is the form state of a recipe aggregate.
type Draft struct {
	Title        string          `yaml:"title" json:"title"`
	Descriptions string          `yaml:"descriptions" json:"descriptions"`
	ImageURL     string          `yaml:"image_url" json:"image_url"`
	Ingredients  []IngredientRow `yaml:"ingredients" json:"ingredients"`
	Steps        []StepRow       `yaml:"steps" json:"steps"`
}

func (d Draft) recipeInput() models.RecipeInput {
	return models.RecipeInput{Title: d.Title, Descriptions: d.Descriptions, ImageURL: d.ImageURL}
}

// DraftFrom builds the form state of a loaded aggregate.
func DraftFrom(r *models.Recipe, ingredients []models.Ingredient, steps []models.Step) Draft {
	d := Draft{
		Title:        r.Title,
		Descriptions: r.Descriptions,
		ImageURL:     r.ImageURL,
		Ingredients:  make([]IngredientRow, 0, len(ingredients)),
		Steps:        make([]StepRow, 0, len(steps)),
	}
	for _, i := range ingredients {
		d.Ingredients = append(d.Ingredients, IngredientRow{ID: i.ID, Name: i.Name, Quantity: i.Quantity, Unit: i.Unit})
	}
	for _, s := range steps {
		d.Steps = append(d.Steps, StepRow{ID: s.ID, InstructionText: s.InstructionText})
	}
	return d
}

// Problems lists every failed check. When requireRows is set the draft must
// also carry at least one ingredient and one step. The image url is checked
// only when requireImage is set; an edit may clear it.
func (d Draft) Problems(requireRows, requireImage bool) []string {
	var problems []string
	if blank(d.Title) {
		problems = append(problems, "title is required")
	}
	if blank(d.Descriptions) {
		problems = append(problems, "descriptions are required")
	}
	if requireImage && blank(d.ImageURL) {
		problems = append(problems, "image url is required")
	}
	for i, row := range d.Ingredients {
		if blank(row.Name) || blank(row.Quantity) || blank(row.Unit) {
			problems = append(problems, fmt.Sprintf("ingredient %d needs a name, quantity and unit", i+1))
		}
	}
	for i, row := range d.Steps {
		if blank(row.InstructionText) {
			problems = append(problems, fmt.Sprintf("step %d needs instruction text", i+1))
		}
	}
	if requireRows {
		if len(d.Ingredients) == 0 {
			problems = append(problems, "at least one ingredient is required")
		}
		if len(d.Steps) == 0 {
			problems = append(problems, "at least one step is required")
		}
	}
	return problems
}

// Validate returns one aggregate VALIDATION_ERROR carrying every problem, or nil.
func (d Draft) Validate(requireRows, requireImage bool) error {
	problems := d.Problems(requireRows, requireImage)
	if len(problems) == 0 {
		return nil
	}
	return models.NewValidationError("Please fill out all required fields", problems...)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
