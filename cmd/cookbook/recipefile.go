package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"cookbook/internal/workflow"

	"gopkg.in/yaml.v3"
)

// loadDraft reads a recipe file; "-" reads stdin.
func loadDraft(path string, stdin io.Reader) (workflow.Draft, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return workflow.Draft{}, fmt.Errorf("failed to open recipe file: %w", err)
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d workflow.Draft
	if err := dec.Decode(&d); err != nil && err != io.EOF {
		return workflow.Draft{}, fmt.Errorf("failed to parse recipe file %s: %w", path, err)
	}
	return d, nil
}

func dumpDraft(w io.Writer, d workflow.Draft) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode recipe: %w", err)
	}
	return enc.Close()
}

// applyDraft makes the editor's rows match target, in target's order.
// Saved rows are matched by id; saved rows that target no longer lists are
// removed, which deletes them on the server right away. Rows without a known
// id are added as new rows at the position they appear.
func applyDraft(ctx context.Context, e *workflow.Editor, target workflow.Draft) error {
	e.SetFields(target.Title, target.Descriptions, target.ImageURL)

	keepIngredients := map[string]bool{}
	for _, row := range target.Ingredients {
		if row.ID != "" {
			keepIngredients[row.ID] = true
		}
	}
	current := e.Draft().Ingredients
	for i := len(current) - 1; i >= 0; i-- {
		if !keepIngredients[current[i].ID] {
			if err := e.RemoveIngredient(ctx, i); err != nil {
				return err
			}
		}
	}
	if err := e.ArrangeIngredients(target.Ingredients); err != nil {
		return err
	}

	keepSteps := map[string]bool{}
	for _, row := range target.Steps {
		if row.ID != "" {
			keepSteps[row.ID] = true
		}
	}
	steps := e.Draft().Steps
	for i := len(steps) - 1; i >= 0; i-- {
		if !keepSteps[steps[i].ID] {
			if err := e.RemoveStep(ctx, i); err != nil {
				return err
			}
		}
	}
	return e.ArrangeSteps(target.Steps)
}

// carryIDs gives rows entered in a form the ids of the rows shown at the
// same position, so editing a line updates it instead of replacing it.
func carryIDs(from, to *workflow.Draft) {
	for i := range to.Ingredients {
		if i < len(from.Ingredients) {
			to.Ingredients[i].ID = from.Ingredients[i].ID
		}
	}
	for i := range to.Steps {
		if i < len(from.Steps) {
			to.Steps[i].ID = from.Steps[i].ID
		}
	}
}
