package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
)

func loginCmd(g *globalFlags) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a backend session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("STOREFRONT_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			a, err := g.publicOnly(cmd.Context(), cmd.OutOrStdout())
			if err != nil || a == nil {
				return err
			}
			defer a.Close()

			if err := a.Auth.Login(cmd.Context(), username, password); err != nil {
				return errors.New(auth.LoginFailedMessage)
			}
			u := a.Auth.User()
			if u == nil {
				return errSessionNotStarted
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $STOREFRONT_PASSWORD)")
	return cmd
}

func logoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the backend session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Auth.Logout(cmd.Context()); err != nil {
				a.Logger.Warn("Backend logout failed, local session cleared anyway", "error", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			_ = a.Auth.Check(cmd.Context())
			return printJSON(cmd.OutOrStdout(), a.Auth.Snapshot())
		},
	}
}
