package main

import (
	"fmt"

	"cookbook/internal/session"
	"cookbook/internal/ui"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if err := credentialsForm(nil, &email, &password); err != nil {
			return err
		}
		auth, err := cli.client.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		return remember(cmd, session.FromAuth(auth))
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if err := credentialsForm(&name, &email, &password); err != nil {
			return err
		}
		auth, err := cli.client.Signup(cmd.Context(), name, email, password)
		if err != nil {
			return err
		}
		return remember(cmd, session.FromAuth(auth))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cli.store.Clear(); err != nil {
			return err
		}
		ui.Success(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		s := cli.session
		if !s.Authenticated() {
			fmt.Fprintln(out, ui.RenderMuted("not signed in"))
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", ui.TitleStyle.Render(s.Name), ui.RenderMuted(s.UserID))
		if s.Email != "" {
			fmt.Fprintln(out, s.Email)
		}
		if s.IsAdmin() {
			fmt.Fprintln(out, ui.RenderAccent("admin"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	signupCmd.Flags().String("name", "", "display name")
	signupCmd.Flags().String("email", "", "account email")
	signupCmd.Flags().String("password", "", "account password (prompted when omitted)")
}

func remember(cmd *cobra.Command, s session.Session) error {
	if err := cli.store.Save(s); err != nil {
		return err
	}
	cli.session = s
	ui.Success(cmd.OutOrStdout(), "signed in as "+s.Name)
	return nil
}
