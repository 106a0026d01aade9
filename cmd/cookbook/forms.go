package main

import (
	"errors"
	"fmt"
	"strings"

	"cookbook/internal/models"
	"cookbook/internal/ui"
	"cookbook/internal/workflow"

	"github.com/charmbracelet/huh"
)

var errCancelled = errors.New("cancelled")

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func runForm(form *huh.Form) error {
	if !ui.IsInteractive() {
		return models.NewValidationError("missing input; pass it as flags or run in a terminal")
	}
	if err := form.WithTheme(huh.ThemeDracula()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCancelled
		}
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

// credentialsForm fills in whichever of name, email and password are empty.
// name is nil for login.
func credentialsForm(name, email, password *string) error {
	var fields []huh.Field
	if name != nil && *name == "" {
		fields = append(fields, huh.NewInput().Title("Name").Value(name).Validate(required("name")))
	}
	if *email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(email).Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return runForm(huh.NewForm(huh.NewGroup(fields...)))
}

// draftForm collects a recipe interactively. Ingredients are entered one
// per line as "quantity | unit | name", steps one per line. An edit may
// leave the image url empty.
func draftForm(d *workflow.Draft, requireImage bool) error {
	ingredients := formatIngredients(d.Ingredients)
	steps := formatSteps(d.Steps)
	imageCheck := required("image url")
	if !requireImage {
		imageCheck = func(string) error { return nil }
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&d.Title).Validate(required("title")),
			huh.NewText().Title("Descriptions").CharLimit(5000).Value(&d.Descriptions).Validate(required("descriptions")),
			huh.NewInput().
				Title("Image URL").
				Description("Use `cookbook image upload` or --image to get one").
				Value(&d.ImageURL).
				Validate(imageCheck),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Ingredients").
				Description("One per line: quantity | unit | name").
				Placeholder("2 | cups | flour").
				Value(&ingredients).
				Validate(func(s string) error {
					_, err := parseIngredientLines(s)
					return err
				}),
			huh.NewText().
				Title("Steps").
				Description("One instruction per line, in order").
				Value(&steps),
		),
	)
	if err := runForm(form); err != nil {
		return err
	}

	rows, err := parseIngredientLines(ingredients)
	if err != nil {
		return err
	}
	d.Ingredients = rows
	d.Steps = parseStepLines(steps)
	return nil
}

func confirm(prompt string) (bool, error) {
	ok := false
	err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(prompt).Affirmative("Delete").Negative("Cancel").Value(&ok),
	)))
	if errors.Is(err, errCancelled) {
		return false, nil
	}
	return ok, err
}

// parseIngredient reads "quantity | unit | name". A name may itself contain "|".
func parseIngredient(line string) (workflow.IngredientRow, error) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return workflow.IngredientRow{}, fmt.Errorf("ingredient %q must look like \"quantity | unit | name\"", line)
	}
	return workflow.IngredientRow{
		Quantity: strings.TrimSpace(parts[0]),
		Unit:     strings.TrimSpace(parts[1]),
		Name:     strings.TrimSpace(parts[2]),
	}, nil
}

func parseIngredientLines(s string) ([]workflow.IngredientRow, error) {
	var rows []workflow.IngredientRow
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := parseIngredient(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseStepLines(s string) []workflow.StepRow {
	var rows []workflow.StepRow
	for _, line := range strings.Split(s, "\n") {
		if text := strings.TrimSpace(line); text != "" {
			rows = append(rows, workflow.StepRow{InstructionText: text})
		}
	}
	return rows
}

func formatIngredients(rows []workflow.IngredientRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s | %s | %s", r.Quantity, r.Unit, r.Name))
	}
	return strings.Join(lines, "\n")
}

func formatSteps(rows []workflow.StepRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.InstructionText)
	}
	return strings.Join(lines, "\n")
}
