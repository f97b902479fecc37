package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Account and session commands",
	}

	cmd.AddCommand(newUserRegisterCmd())
	cmd.AddCommand(newUserLoginCmd())
	cmd.AddCommand(newUserLogoutCmd())
	cmd.AddCommand(newUserMeCmd())

	return cmd
}

// credentialsCmd builds a command that posts --user and --pass and stores the returned session token
func credentialsCmd(use, short, path, done string) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result Session

			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := output(cmd)
			out.PrintMessage(done)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newUserRegisterCmd() *cobra.Command {
	return credentialsCmd("register", "Create an account", "/api/v1/users/register",
		"Registration successful! Please login.")
}

func newUserLoginCmd() *cobra.Command {
	return credentialsCmd("login", "Login with an existing account", "/api/v1/users/login",
		"Login successful!")
}

func newUserLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post(cmd.Context(), "/api/v1/users/logout", nil, &result); err != nil {
				return err
			}

			output(cmd).PrintMessage("You have been logged out.")
			return nil
		},
	}
}

func newUserMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get(cmd.Context(), "/api/v1/session", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
