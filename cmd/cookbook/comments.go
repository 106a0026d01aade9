package main

import (
	"context"
	"fmt"
	"strings"

	"cookbook/internal/comments"
	"cookbook/internal/ui"

	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Read and write the comments on a recipe",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <recipe-id>",
	Short: "List a recipe's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		th, err := openThread(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printThread(cmd, th)
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <recipe-id> <text...>",
	Short: "Comment on a recipe (not your own)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		th, err := openThread(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := th.Post(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
			return err
		}
		printThread(cmd, th)
		return nil
	},
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit <recipe-id> <comment-id> <text...>",
	Short: "Change a comment (author or admin)",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		th, err := openThread(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := th.Edit(cmd.Context(), args[1], strings.Join(args[2:], " ")); err != nil {
			return err
		}
		printThread(cmd, th)
		return nil
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <recipe-id> <comment-id>",
	Short: "Delete a comment (admin only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		th, err := openThread(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := th.Delete(cmd.Context(), args[1]); err != nil {
			return err
		}
		printThread(cmd, th)
		return nil
	},
}

func init() {
	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsEditCmd, commentsDeleteCmd)
}

func openThread(ctx context.Context, recipeID string) (*comments.Thread, error) {
	recipe, err := cli.client.Recipes().Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	th := comments.NewThread(cli.client.Comments(), cli.session, recipe)
	if err := th.Load(ctx); err != nil {
		return nil, err
	}
	return th, nil
}

func printThread(cmd *cobra.Command, th *comments.Thread) {
	out := cmd.OutOrStdout()
	list := th.Comments()
	if len(list) == 0 {
		fmt.Fprintln(out, ui.RenderMuted("No comments yet."))
		return
	}
	for _, c := range list {
		fmt.Fprintf(out, "%s %s %s\n", ui.RenderAccent(c.AuthorName()), ui.RenderMuted(c.ID),
			ui.RenderMuted(c.CreatedAt.Format("2006-01-02 15:04")))
		fmt.Fprintln(out, "  "+c.Content)
	}
}
