package hooks

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

// CartsKey is the key of a cart list read with filter.
func CartsKey(filter clients.CartFilter) query.Key {
	return query.K(ResourceCarts, filter.Values())
}

func CartKey(id int, fecha *string) query.Key {
	return query.K(ResourceCart, id, fecha)
}

func PromotionsKey(date *string) query.Key {
	return query.K(ResourcePromotions, date)
}

// Carts lists carts matching filter as of the simulated date.
func (h *Hooks) Carts(ctx context.Context, filter clients.CartFilter) ([]model.Cart, error) {
	if d := h.fecha(); d != nil {
		filter.Fecha = *d
	}
	return query.Fetch(ctx, h.q, CartsKey(filter), query.Options{}, func(ctx context.Context) ([]model.Cart, error) {
		return h.svc.Carts.List(ctx, filter)
	})
}

// CartByID is disabled until id is known.
func (h *Hooks) CartByID(ctx context.Context, id int) (model.Cart, error) {
	return query.Fetch(ctx, h.q, CartKey(id, h.fecha()), query.Options{Disabled: id == 0}, func(ctx context.Context) (model.Cart, error) {
		return h.svc.Carts.Get(ctx, id)
	})
}

func (h *Hooks) CurrentUser(ctx context.Context) (*model.User, error) {
	return query.Fetch(ctx, h.q, query.K(ResourceCurrentUser), query.Options{}, func(ctx context.Context) (*model.User, error) {
		sess, err := h.svc.Session.Current(ctx)
		if err != nil {
			return nil, err
		}
		return sess.User, nil
	})
}

func (h *Hooks) Orders(ctx context.Context) ([]model.Order, error) {
	return query.Fetch(ctx, h.q, query.K(ResourceOrders), query.Options{}, h.svc.Orders.List)
}

func (h *Hooks) Products(ctx context.Context) ([]model.Product, error) {
	return query.Fetch(ctx, h.q, query.K(ResourceProducts), query.Options{}, h.svc.Products.List)
}

// Promotions lists the promotions active on the simulated date.
func (h *Hooks) Promotions(ctx context.Context) (model.PromotionList, error) {
	return query.Fetch(ctx, h.q, PromotionsKey(h.fecha()), query.Options{StaleTime: promotionsStaleTime}, h.svc.Promotions.Active)
}

// PromotionsByDate is disabled for an empty date.
func (h *Hooks) PromotionsByDate(ctx context.Context, date string) (model.PromotionList, error) {
	return query.Fetch(ctx, h.q, PromotionsKey(&date), query.Options{StaleTime: promotionsStaleTime, Disabled: date == ""}, func(ctx context.Context) (model.PromotionList, error) {
		return h.svc.Promotions.ByDate(ctx, date)
	})
}

// VipChanges is disabled until both month and year are set.
func (h *Hooks) VipChanges(ctx context.Context, month, year int) (model.VipChanges, error) {
	opts := query.Options{Disabled: month == 0 || year == 0}
	return query.Fetch(ctx, h.q, query.K(ResourceVipChanges, month, year), opts, func(ctx context.Context) (model.VipChanges, error) {
		return h.svc.Users.VipChanges(ctx, month, year)
	})
}

func (h *Hooks) VipStatus(ctx context.Context) (model.VipStatus, error) {
	return query.Fetch(ctx, h.q, query.K(ResourceVipStatus), query.Options{StaleTime: vipStatusStaleTime}, h.svc.Vip.Status)
}

func (h *Hooks) VipUsers(ctx context.Context) ([]model.User, error) {
	return query.Fetch(ctx, h.q, query.K(ResourceVipUsers), query.Options{}, h.svc.Users.VipUsers)
}
