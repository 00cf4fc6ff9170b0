package hooks

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

// ActiveCart is the cart new items go to.
type ActiveCart struct {
	Type model.CartType `json:"type"`
	// Cart is nil until the first item creates it.
	Cart *model.Cart `json:"cart"`
}

// ActiveCartType picks VIP for VIP users, FECHA_ESPECIAL while any promotion
// runs, and COMUN otherwise.
func ActiveCartType(user *model.User, promotions []model.Promotion) model.CartType {
	switch {
	case user.IsVIP():
		return model.CartTypeVIP
	case len(promotions) > 0:
		return model.CartTypeFechaEspecial
	default:
		return model.CartTypeComun
	}
}

// ActiveCart resolves the cart type for user and finds the matching active
// cart, if any.
func (h *Hooks) ActiveCart(ctx context.Context, user *model.User) (ActiveCart, error) {
	var promos []model.Promotion
	if !user.IsVIP() {
		list, err := h.Promotions(ctx)
		if err != nil {
			return ActiveCart{}, err
		}
		promos = list.Promotions
	}
	cartType := ActiveCartType(user, promos)

	carts, err := h.Carts(ctx, clients.CartFilter{Status: model.CartStatusActivo})
	if err != nil {
		return ActiveCart{Type: cartType}, err
	}
	for i := range carts {
		if carts[i].CartType == cartType {
			return ActiveCart{Type: cartType, Cart: &carts[i]}, nil
		}
	}
	return ActiveCart{Type: cartType}, nil
}
