package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/client/session"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := promptMissing(cmd, &password, "Password: "); err != nil {
				return err
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			s, err := a.Register(cmd.Context(), name, email, password)
			if err != nil {
				return describeAuthError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Welcome, %s! Signed in as %s.", s.User.Name, s.User.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and push expenses recorded while signed out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := promptMissing(cmd, &password, "Password: "); err != nil {
				return err
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			s, err := a.Login(cmd.Context(), email, password)
			if err != nil {
				return describeAuthError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Signed in as "+s.User.Email+"."))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session; local expenses are kept",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			current := a.Sessions.Current()
			if current == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", current.User.Name, current.User.Email)
			fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("id "+current.User.ID))
			return nil
		},
	}
}

func resetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			token, err := a.Sessions.ResetPassword(cmd.Context(), email)
			if err != nil {
				if errors.Is(err, remote.ErrNotFound) {
					return fmt.Errorf("no account for %s", email)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reset token: "+token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptMissing(cmd *cobra.Command, value *string, prompt string) error {
	if *value != "" {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read input: %w", err)
	}
	*value = strings.TrimSpace(line)
	return nil
}

func describeAuthError(err error) error {
	var apiErr *remote.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return errors.New(apiErr.Message)
	case errors.Is(err, remote.ErrUnavailable):
		return errors.New("server unreachable, try again when online")
	case errors.Is(err, session.ErrSessionExpired):
		return errors.New("session expired, sign in again")
	}
	return err
}
