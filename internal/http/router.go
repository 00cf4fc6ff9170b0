package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/hooks"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/handlers"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/telemetry"
)

const ServiceName = "storefront"

type Deps struct {
	Logger  *slog.Logger
	Cfg     config.Config
	Metrics *metrics.Metrics

	Auth  *auth.State
	Date  *simdate.State
	Hooks *hooks.Hooks

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.CorrelationID)
	r.Use(chimw.RealIP)
	r.Use(telemetry.Middleware(ServiceName))
	r.Use(middleware.Logging(d.Logger, d.Metrics))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.Provide(d.Auth, d.Date))

	// Health
	health := &handlers.HealthHandler{Service: ServiceName, Probes: d.HealthProbes}
	r.Get("/health", health.Storefront)
	r.Get("/health/upstreams", health.Upstreams)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	sess := handlers.NewSessionHandler(d.Logger)
	r.Get("/session", sess.Session)
	r.Post("/logout", sess.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicOnly)
		r.Get("/login", sess.LoginPage)
		r.Post("/login", sess.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Private)

		catalog := handlers.NewCatalogHandler(d.Hooks, d.Logger)
		r.Get("/products", catalog.Products)
		r.Post("/products/{id}/cart", catalog.AddToCart)
		r.Patch("/products/{id}/cart", catalog.UpdateQuantity)
		r.Get("/promotions", catalog.Promotions)

		carts := handlers.NewCartHandler(d.Hooks, d.Logger)
		r.Route("/carts", func(r chi.Router) {
			r.Get("/", carts.List)
			r.Post("/new", carts.Create)
			r.Get("/{id}", carts.Detail)
			r.Delete("/{id}", carts.Delete)
			r.Post("/{id}/finalize", carts.Finalize)
			r.Patch("/{id}/items/{itemId}", carts.UpdateItem)
			r.Delete("/{id}/items/{itemId}", carts.DeleteItem)
		})

		orders := handlers.NewOrderHandler(d.Hooks, d.Logger)
		r.Get("/orders", orders.List)

		vip := handlers.NewVipHandler(d.Hooks, d.Logger)
		r.Get("/vip", vip.Status)

		date := handlers.NewDateHandler(d.Logger)
		r.Get("/date", date.Get)
		r.Put("/date", date.Set)
		r.Post("/date/reset", date.Reset)
	})

	// Unknown pages land on the catalog once the session allows it.
	r.NotFound(middleware.Private(http.RedirectHandler(middleware.LandingPath, http.StatusFound)).ServeHTTP)

	return r
}
