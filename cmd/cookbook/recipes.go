package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"

	"cookbook/internal/browse"
	"cookbook/internal/models"
	"cookbook/internal/ui"
	"cookbook/internal/workflow"

	"github.com/spf13/cobra"
)

var recipesCmd = &cobra.Command{
	Use:     "recipes",
	Aliases: []string{"recipe"},
	Short:   "List, show, create, edit and delete recipes",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every recipe (requires sign-in)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := browse.FromClient(cli.client, cli.session).List(cmd.Context())
		if err != nil {
			return err
		}
		ui.RecipeList(cmd.OutOrStdout(), entries)
		return nil
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Show a recipe with its ingredients, steps and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := browse.FromClient(cli.client, cli.session).Details(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ui.RecipeDetails(cmd.OutOrStdout(), d)
		return nil
	},
}

var recipesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a recipe with its ingredients and steps",
	Long: `Create a recipe with its ingredients and steps.

The recipe comes from --file (YAML, "-" for stdin), from flags, or from an
interactive form when neither is given. Everything is validated before the
first request; the recipe is then written, followed by each ingredient and
each step in order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		var d workflow.Draft
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			loaded, err := loadDraft(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			d = loaded
		}
		if err := applyFieldFlags(ctx, cmd, &d); err != nil {
			return err
		}
		if err := appendRowFlags(cmd, &d); err != nil {
			return err
		}
		if d.Title == "" && len(d.Ingredients) == 0 && len(d.Steps) == 0 {
			if err := draftForm(&d, true); err != nil {
				return err
			}
		}

		recipe, err := workflow.NewComposer(workflow.NewBackend(cli.client), cli.session).Create(ctx, d)
		if err != nil {
			return err
		}
		ui.Success(cmd.OutOrStdout(), fmt.Sprintf("created %s (%s)", recipe.Title, recipe.ID))
		return nil
	},
}

var recipesEditCmd = &cobra.Command{
	Use:   "edit <recipe-id>",
	Short: "Change a recipe, its ingredients and its steps",
	Long: `Change a recipe, its ingredients and its steps.

Only an admin can remove a saved ingredient or step (--remove-ingredient,
--remove-step, or leaving it out of --file). The row is deleted on the server
immediately, before the rest of the changes are saved. Rows that were never
saved can be dropped by anyone.

Rows are saved in the order they appear in --file, saved rows and new rows
alike. The image url may be cleared.

Use --dump to print the current recipe as YAML, edit it, and pass it back
with --file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		e, err := workflow.Open(ctx, workflow.NewBackend(cli.client), cli.session, args[0])
		if err != nil {
			return err
		}
		if dump, _ := cmd.Flags().GetBool("dump"); dump {
			return dumpDraft(out, e.Draft())
		}

		if err := removeRows(ctx, cmd, e); err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			target, err := loadDraft(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := applyDraft(ctx, e, target); err != nil {
				return err
			}
		}

		d := e.Draft()
		if err := applyFieldFlags(ctx, cmd, &d); err != nil {
			return err
		}
		if err := appendRowFlags(cmd, &d); err != nil {
			return err
		}
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			shown := d
			if err := draftForm(&d, false); err != nil {
				return err
			}
			carryIDs(&shown, &d)
		}
		if err := applyDraft(ctx, e, d); err != nil {
			return err
		}

		ui.Draft(out, e.Draft(), e.Problems())
		if !e.CanSave() {
			return models.NewValidationError("Please fill out all required fields", e.Problems()...)
		}
		if err := e.Save(ctx); err != nil {
			return err
		}
		ui.Success(out, "saved "+e.Recipe().Title)
		return nil
	},
}

var recipesDeleteCmd = &cobra.Command{
	Use:   "delete <recipe-id>",
	Short: "Delete a recipe (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		recipe, err := cli.client.Recipes().Get(ctx, args[0])
		if err != nil {
			return err
		}
		ask := confirm
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			ask = func(string) (bool, error) { return true, nil }
		}
		deleted, err := browse.FromClient(cli.client, cli.session).Delete(ctx, *recipe, ask)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMuted("not deleted"))
			return nil
		}
		ui.Success(cmd.OutOrStdout(), "deleted "+recipe.Title)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{recipesNewCmd, recipesEditCmd} {
		c.Flags().StringP("file", "f", "", "recipe YAML file, - for stdin")
		c.Flags().String("title", "", "recipe title")
		c.Flags().String("descriptions", "", "recipe descriptions")
		c.Flags().String("image-url", "", "URL of an already uploaded image")
		c.Flags().String("image", "", "upload this image file and use its URL")
		c.Flags().StringArray("ingredient", nil, `add an ingredient as "quantity | unit | name" (repeatable)`)
		c.Flags().StringArray("step", nil, "add a step (repeatable)")
	}
	recipesEditCmd.Flags().IntSlice("remove-ingredient", nil, "remove ingredient rows by position, starting at 1")
	recipesEditCmd.Flags().IntSlice("remove-step", nil, "remove step rows by position, starting at 1")
	recipesEditCmd.Flags().Bool("dump", false, "print the recipe as YAML and exit")
	recipesEditCmd.Flags().BoolP("interactive", "i", false, "edit in a form")
	recipesDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd, recipesNewCmd, recipesEditCmd, recipesDeleteCmd)
}

func applyFieldFlags(ctx context.Context, cmd *cobra.Command, d *workflow.Draft) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		d.Title, _ = flags.GetString("title")
	}
	if flags.Changed("descriptions") {
		d.Descriptions, _ = flags.GetString("descriptions")
	}
	if flags.Changed("image-url") {
		d.ImageURL, _ = flags.GetString("image-url")
	}
	if path, _ := flags.GetString("image"); path != "" {
		url, err := uploadFile(ctx, path)
		if err != nil {
			return err
		}
		d.ImageURL = url
	}
	return nil
}

func appendRowFlags(cmd *cobra.Command, d *workflow.Draft) error {
	ingredients, _ := cmd.Flags().GetStringArray("ingredient")
	for _, line := range ingredients {
		row, err := parseIngredient(line)
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		d.Ingredients = append(d.Ingredients, row)
	}
	steps, _ := cmd.Flags().GetStringArray("step")
	for _, text := range steps {
		d.Steps = append(d.Steps, workflow.StepRow{InstructionText: text})
	}
	return nil
}

// removeRows applies --remove-ingredient and --remove-step, highest position
// first so earlier positions stay valid.
func removeRows(ctx context.Context, cmd *cobra.Command, e *workflow.Editor) error {
	ingredients, _ := cmd.Flags().GetIntSlice("remove-ingredient")
	sort.Sort(sort.Reverse(sort.IntSlice(ingredients)))
	for _, pos := range slices.Compact(ingredients) {
		if err := e.RemoveIngredient(ctx, pos-1); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "removed ingredient %d\n", pos)
	}
	steps, _ := cmd.Flags().GetIntSlice("remove-step")
	sort.Sort(sort.Reverse(sort.IntSlice(steps)))
	for _, pos := range slices.Compact(steps) {
		if err := e.RemoveStep(ctx, pos-1); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "removed step %d\n", pos)
	}
	return nil
}

func uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return cli.client.UploadImage(ctx, path, f, cli.session.Token)
}
