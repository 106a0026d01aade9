package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"cookbook/internal/browse"
	"cookbook/internal/models"
	"cookbook/internal/workflow"

	"github.com/charmbracelet/lipgloss"
)

// RecipeList prints one line per entry with the actions offered on it.
func RecipeList(w io.Writer, entries []browse.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, RenderMuted("No recipes yet."))
		return
	}
	for _, e := range entries {
		var actions []string
		if e.CanEdit {
			actions = append(actions, "edit")
		}
		if e.CanDelete {
			actions = append(actions, "delete")
		}
		line := fmt.Sprintf("%s  %s  %s", RenderMuted(e.Recipe.ID), TitleStyle.Render(e.Recipe.Title),
			RenderMuted("by "+authorName(e.Recipe.CreatedBy)))
		if len(actions) > 0 {
			line += "  " + RenderAccent("["+strings.Join(actions, ", ")+"]")
		}
		fmt.Fprintln(w, line)
	}
}

// RecipeDetails prints the recipe, its rows and its comment thread.
func RecipeDetails(w io.Writer, d *browse.Details) {
	r := d.Recipe
	fmt.Fprintln(w, TitleStyle.Render(r.Title))
	fmt.Fprintln(w, RenderMuted(fmt.Sprintf("by %s on %s", authorName(r.CreatedBy), r.CreatedAt.Format("2006-01-02"))))
	if r.ImageURL != "" {
		fmt.Fprintln(w, RenderMuted("image: "+r.ImageURL))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, wrap(r.Descriptions))

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderHeading("Ingredients"))
	for _, i := range d.Ingredients {
		fmt.Fprintf(w, "  %s %s %s %s\n", Bullet, i.Quantity, i.Unit, i.Name)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderHeading("Steps"))
	for n, s := range d.Steps {
		fmt.Fprintf(w, "  %d. %s\n", n+1, s.InstructionText)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderHeading("Comments"))
	comments := d.Thread.Comments()
	if len(comments) == 0 {
		fmt.Fprintln(w, "  "+RenderMuted("No comments yet."))
	}
	for _, c := range comments {
		var actions []string
		if d.Thread.CanEdit(c) {
			actions = append(actions, "edit")
		}
		if d.Thread.CanDelete(c) {
			actions = append(actions, "delete")
		}
		header := fmt.Sprintf("  %s %s", RenderAccent(c.AuthorName()), RenderMuted(c.ID))
		if len(actions) > 0 {
			header += "  " + RenderMuted("["+strings.Join(actions, ", ")+"]")
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, "    "+c.Content)
	}
	if !d.Thread.CanPost() {
		fmt.Fprintln(w, "  "+RenderMuted("Commenting is not available to you on this recipe."))
	}
}

// Draft prints a recipe form with its validation state.
func Draft(w io.Writer, d workflow.Draft, problems []string) {
	body := fmt.Sprintf("%s\n%s\n%s", TitleStyle.Render(d.Title), d.Descriptions, RenderMuted(d.ImageURL))
	fmt.Fprintln(w, BoxStyle.Render(body))
	fmt.Fprintln(w, RenderHeading("Ingredients"))
	for n, i := range d.Ingredients {
		fmt.Fprintf(w, "  %d. %s %s %s %s\n", n+1, i.Quantity, i.Unit, i.Name, rowState(i.Persisted()))
	}
	fmt.Fprintln(w, RenderHeading("Steps"))
	for n, s := range d.Steps {
		fmt.Fprintf(w, "  %d. %s %s\n", n+1, s.InstructionText, rowState(s.Persisted()))
	}
	if len(problems) == 0 {
		fmt.Fprintln(w, RenderPass(IconPass+" ready to save"))
		return
	}
	for _, p := range problems {
		fmt.Fprintln(w, RenderWarn(IconWarn+" "+p))
	}
}

// Error prints err the way the user should see it: the message, every
// validation problem, and what was already stored after a partial save.
func Error(w io.Writer, err error) {
	fmt.Fprintln(w, RenderFail(IconFail+" "+err.Error()))

	var pf *workflow.PartialFailure
	if errors.As(err, &pf) {
		fmt.Fprintln(w, RenderWarn(fmt.Sprintf("  recipe %s exists; edit it to finish the remaining rows", pf.RecipeID)))
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		for _, p := range appErr.Problems {
			fmt.Fprintln(w, "  "+RenderWarn(Bullet+" "+p))
		}
	}
}

// Success prints a confirmation line.
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, RenderPass(IconPass+" "+msg))
}

func rowState(saved bool) string {
	if saved {
		return ""
	}
	return RenderMuted("(new)")
}

func authorName(u models.User) string {
	if u.Name == "" {
		return "Unknown"
	}
	return u.Name
}

func wrap(s string) string {
	width := max(Width()-4, 20)
	return lipgloss.NewStyle().Width(width).Render(s)
}
