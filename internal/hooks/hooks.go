// Package hooks binds the backend clients to the query cache. Each read
// declares its cache key and each write declares which keys it invalidates.
package hooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

const (
	promotionsStaleTime = 2 * time.Minute
	vipStatusStaleTime  = 5 * time.Minute
)

// Cache key resources.
const (
	ResourceCarts       = "carts"
	ResourceCart        = "cart"
	ResourceCurrentUser = "currentUser"
	ResourceOrders      = "orders"
	ResourceProducts    = "products"
	ResourcePromotions  = "promotions"
	ResourceVipChanges  = "vipChanges"
	ResourceVipStatus   = "vipStatus"
	ResourceVipUsers    = "vipUsers"
)

// DateSource yields the simulated date, nil when none is set.
type DateSource interface {
	Date() *string
}

type Services struct {
	Carts      *clients.CartClient
	Orders     *clients.OrderClient
	Products   *clients.ProductClient
	Promotions *clients.PromotionClient
	Session    *clients.SessionClient
	Users      *clients.UserClient
	Vip        *clients.VipClient
}

// NewServices builds every resource client over one backend client.
func NewServices(c *clients.Client) Services {
	return Services{
		Carts:      clients.NewCartClient(c),
		Orders:     clients.NewOrderClient(c),
		Products:   clients.NewProductClient(c),
		Promotions: clients.NewPromotionClient(c),
		Session:    clients.NewSessionClient(c),
		Users:      clients.NewUserClient(c),
		Vip:        clients.NewVipClient(c),
	}
}

type Hooks struct {
	q      *query.Client
	date   DateSource
	svc    Services
	logger *slog.Logger
}

func New(q *query.Client, date DateSource, svc Services, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{q: q, date: date, svc: svc, logger: logger}
}

// Query exposes the underlying cache.
func (h *Hooks) Query() *query.Client { return h.q }

func (h *Hooks) fecha() *string {
	if h.date == nil {
		return nil
	}
	return h.date.Date()
}

func (h *Hooks) invalidate(ctx context.Context, keys ...query.Key) {
	for _, k := range keys {
		n := h.q.Invalidate(ctx, k)
		h.logger.Debug("Invalidated queries", "key", []string(k), "entries", n)
	}
}
