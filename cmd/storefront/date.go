package main

import (
	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
)

func dateCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Show or change the simulated date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.Date.View())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set YYYY-MM-DD",
			Short: "Simulate the given date",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := simdate.Parse(args[0])
				if err != nil {
					return err
				}
				a, err := g.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Date.Set(cmd.Context(), &d); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), a.Date.View())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Stop simulating a date",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := g.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Date.Set(cmd.Context(), nil); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), a.Date.View())
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Simulate today",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := g.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Date.ResetToToday(cmd.Context()); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), a.Date.View())
			},
		},
	)
	return cmd
}
