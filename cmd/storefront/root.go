package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/app"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
)

var (
	errNotLoggedIn       = errors.New("not logged in, run `storefront login` first")
	errSessionNotStarted = errors.New("login accepted but the session check failed")
)

// landingCommand is the CLI counterpart of the landing route.
const landingCommand = "storefront products"

type globalFlags struct {
	configPath string
	logLevel   string
	backendURL string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client for the e-commerce backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file (default $STOREFRONT_CONFIG)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.backendURL, "backend", "", "Backend base URL (overrides BACKEND_URL)")

	cmd.AddCommand(
		serveCmd(&g),
		loginCmd(&g),
		logoutCmd(&g),
		whoamiCmd(&g),
		dateCmd(&g),
		productsCmd(&g),
		addCmd(&g),
		promotionsCmd(&g),
		cartsCmd(&g),
		cartCmd(&g),
		ordersCmd(&g),
		vipCmd(&g),
	)
	return cmd
}

func (g *globalFlags) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.backendURL != "" {
		cfg.BackendURL = g.backendURL
	}
	return cfg, app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

// open builds the app for a one-shot command. Background sync is left off.
func (g *globalFlags) open(ctx context.Context) (*app.App, error) {
	cfg, logger, err := g.load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger, app.Options{})
}

// openSession is open plus the session check private commands need.
func (g *globalFlags) openSession(ctx context.Context) (*app.App, error) {
	a, err := g.open(ctx)
	if err != nil {
		return nil, err
	}
	_ = a.Auth.Check(ctx)
	if !a.Auth.IsAuthenticated() {
		_ = a.Close()
		return nil, errNotLoggedIn
	}
	return a, nil
}

// publicOnly is open for commands that only make sense while logged out. When
// a session already exists it prints the landing hint and returns a nil app.
func (g *globalFlags) publicOnly(ctx context.Context, out io.Writer) (*app.App, error) {
	a, err := g.open(ctx)
	if err != nil {
		return nil, err
	}
	_ = a.Auth.Check(ctx)
	if u := a.Auth.User(); u != nil {
		_ = a.Close()
		fmt.Fprintf(out, "Already logged in as %s, try `%s`\n", u.Username, landingCommand)
		return nil, nil
	}
	return a, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
