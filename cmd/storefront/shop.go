package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

func productsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			products, err := a.Hooks.Products(cmd.Context())
			if err != nil {
				return fmt.Errorf("Error al cargar productos: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), products)
		},
	}
}

func addCmd(g *globalFlags) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the active cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			active, err := a.Hooks.ActiveCart(cmd.Context(), a.Auth.User())
			if err != nil {
				return err
			}
			item, err := a.Hooks.AddToCart(cmd.Context(), productID, quantity, active.Type)
			if err != nil {
				return fmt.Errorf("%s", clients.ErrorMessage(err, err.Error()))
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Units to add")
	return cmd
}

func promotionsCmd(g *globalFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "promotions",
		Short: "List promotions for the simulated date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var list model.PromotionList
			if date != "" {
				list, err = a.Hooks.PromotionsByDate(cmd.Context(), date)
			} else {
				list, err = a.Hooks.Promotions(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("Error al cargar promociones: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to query instead of the simulated date")
	return cmd
}

func cartsCmd(g *globalFlags) *cobra.Command {
	var status, cartType string

	cmd := &cobra.Command{
		Use:   "carts",
		Short: "List carts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			carts, err := a.Hooks.Carts(cmd.Context(), clients.CartFilter{
				Status: model.CartStatus(status),
				Type:   model.CartType(cartType),
			})
			if err != nil {
				return fmt.Errorf("Error al cargar los carritos: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), carts)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "ACTIVO or FINALIZADO")
	cmd.Flags().StringVar(&cartType, "type", "", "COMUN, VIP or FECHA_ESPECIAL")
	return cmd
}

func cartCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart CART_ID",
		Short: "Show a cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid cart id %q", args[0])
			}
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cart, err := a.Hooks.CartByID(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("Carrito no encontrado: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), cart)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "finalize CART_ID",
		Short: "Turn a cart into an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid cart id %q", args[0])
			}
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			order, err := a.Hooks.FinalizeOrder(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("%s", clients.ErrorMessage(err, "Error al finalizar el pedido"))
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	})
	return cmd
}

func ordersCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			orders, err := a.Hooks.Orders(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), orders)
		},
	}
}

func vipCmd(g *globalFlags) *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "vip",
		Short: "Show VIP status, or VIP changes with --month and --year",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if month != 0 || year != 0 {
				changes, err := a.Hooks.VipChanges(cmd.Context(), month, year)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), changes)
			}
			status, err := a.Hooks.VipStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("Error al cargar el estado VIP: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "Month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "Year")
	return cmd
}
