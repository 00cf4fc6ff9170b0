// Package app assembles the storefront from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/hooks"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

type App struct {
	Cfg     config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Store   storage.Store
	Jar     *clients.FileJar
	Backend *clients.Client
	Query   *query.Client
	Auth    *auth.State
	Date    *simdate.State
	Hooks   *hooks.Hooks

	// Origin identifies this process on the invalidation bus.
	Origin string

	amqpConn  *amqp.Connection
	publisher *events.Publisher
}

// Options lets tests swap out pieces that would otherwise come from cfg.
type Options struct {
	Store     storage.Store
	Transport http.RoundTripper
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	base, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_URL: %w", err)
	}

	store := opts.Store
	if store == nil {
		store, err = OpenStorage(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	jar, err := clients.NewFileJar(cfg.CookieJarPath, base)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	m := metrics.New()
	httpClient := clients.NewHTTPClient(clients.HTTPOptions{
		Timeout: cfg.BackendTimeout,
		Jar:     jar,
		Storage: store,
		Metrics: m,
		Logger:  logger,
		Base:    opts.Transport,
	})
	backend := clients.NewClient("backend", cfg.BackendURL, httpClient)
	svc := hooks.NewServices(backend)

	q := query.NewClient(cfg.QueryStaleTime, m)
	date := simdate.New(ctx, store, logger)
	session := auth.New(svc.Session, store, logger)
	h := hooks.New(q, date, svc, logger)
	// A new identity must never see the previous one's cached data.
	session.OnLogout(func(ctx context.Context) {
		h.SessionEnded(ctx)
		q.Clear()
	})

	return &App{
		Cfg:     cfg,
		Logger:  logger,
		Metrics: m,
		Store:   store,
		Jar:     jar,
		Backend: backend,
		Query:   q,
		Auth:    session,
		Date:    date,
		Hooks:   h,
		Origin:  uuid.NewString(),
	}, nil
}

// Start begins the session check and follows changes other processes make
// to the shared storage and cache.
func (a *App) Start(ctx context.Context) error {
	a.Auth.Start(ctx)

	if err := a.Date.Sync(ctx, func(date *string) {
		a.Logger.Debug("Simulated date synced", "date", date)
	}); err != nil {
		return err
	}
	if err := a.watchSession(ctx); err != nil {
		return err
	}
	if a.Cfg.RabbitMQURL != "" {
		if err := a.startBus(ctx); err != nil {
			return err
		}
	}
	return nil
}

// watchSession re-checks the session when another process logs in or out.
// Rewrites of the cached user that agree with our state are ignored, or two
// processes would keep re-checking each other.
func (a *App) watchSession(ctx context.Context) error {
	ch, err := a.Store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch storage: %w", err)
	}
	go func() {
		for c := range ch {
			if c.Key != storage.KeyAuthUser {
				continue
			}
			if (c.NewValue != nil) == a.Auth.IsAuthenticated() {
				continue
			}
			if err := a.Auth.Check(ctx); err != nil {
				a.Logger.Debug("Session re-check after external change", "error", err)
			}
		}
	}()
	return nil
}

func (a *App) startBus(ctx context.Context) error {
	conn, err := events.Dial(a.Cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	pub, err := events.NewPublisher(conn, events.PublisherOptions{Origin: a.Origin})
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := events.StartCacheInvalidatedConsumer(ctx, conn, a.Origin, func(k []string) {
		a.Query.InvalidateRemote(query.Key(k))
	}, a.Logger); err != nil {
		_ = pub.Close()
		_ = conn.Close()
		return err
	}

	a.Query.OnInvalidate(func(ctx context.Context, prefix query.Key) {
		cid := middleware.GetCorrelationID(ctx)
		if err := pub.PublishCacheInvalidated(ctx, cid, prefix); err != nil {
			a.Logger.Warn("Publish cache invalidation", "key", []string(prefix), "error", err)
		}
	})

	a.amqpConn = conn
	a.publisher = pub
	a.Logger.Info("Cache invalidation bus connected", "exchange", events.EventsExchange, "origin", a.Origin)
	return nil
}

func (a *App) HealthProbes() []clients.HealthProbe {
	return []clients.HealthProbe{
		{Name: "backend", Client: a.Backend, Path: "/session/me/"},
	}
}

func (a *App) Router() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Logger:       a.Logger,
		Cfg:          a.Cfg,
		Metrics:      a.Metrics,
		Auth:         a.Auth,
		Date:         a.Date,
		Hooks:        a.Hooks,
		HealthProbes: a.HealthProbes(),
	})
}

func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.amqpConn != nil {
		errs = append(errs, a.amqpConn.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}
