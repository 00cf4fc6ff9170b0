package hooks

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

func (h *Hooks) CreateCart(ctx context.Context, cartType model.CartType) (model.Cart, error) {
	cart, err := h.svc.Carts.Create(ctx, cartType)
	if err != nil {
		return model.Cart{}, err
	}
	h.invalidate(ctx, query.K(ResourceCarts))
	return cart, nil
}

// AddToCart adds quantity units of productID to the active cart of
// cartType, creating that cart first when needed.
func (h *Hooks) AddToCart(ctx context.Context, productID, quantity int, cartType model.CartType) (model.CartItem, error) {
	cart, item, err := h.svc.Carts.AddItemToActive(ctx, productID, quantity, cartType)
	if err != nil {
		if cart.ID != 0 {
			// The cart may have been created before the item failed.
			h.invalidate(ctx, query.K(ResourceCarts))
		}
		return model.CartItem{}, err
	}
	h.invalidate(ctx, query.K(ResourceCarts), query.K(ResourceCart, cart.ID))
	return item, nil
}

func (h *Hooks) DeleteCart(ctx context.Context, cartID int) error {
	if err := h.svc.Carts.Delete(ctx, cartID); err != nil {
		return err
	}
	h.invalidate(ctx, query.K(ResourceCarts))
	return nil
}

func (h *Hooks) DeleteCartItem(ctx context.Context, cartID, itemID int) error {
	if err := h.svc.Carts.DeleteItem(ctx, cartID, itemID); err != nil {
		return err
	}
	h.invalidate(ctx, query.K(ResourceCart, cartID))
	return nil
}

func (h *Hooks) UpdateCartItem(ctx context.Context, cartID, itemID int, patch model.UpdateItemRequest) (*model.CartItem, error) {
	item, err := h.svc.Carts.UpdateItem(ctx, cartID, itemID, patch)
	if err != nil {
		return nil, err
	}
	h.invalidate(ctx, query.K(ResourceCart, cartID), query.K(ResourceCarts))
	return item, nil
}

// UpdateCartItemQuantity sets an item's quantity; zero removes the item.
func (h *Hooks) UpdateCartItemQuantity(ctx context.Context, cartID, itemID, quantity int) (*model.CartItem, error) {
	item, err := h.svc.Carts.UpdateItem(ctx, cartID, itemID, model.UpdateItemRequest{Quantity: &quantity})
	if err != nil {
		return nil, err
	}
	h.invalidate(ctx, CartKey(cartID, h.fecha()), query.K(ResourceCarts))
	return item, nil
}

func (h *Hooks) FinalizeOrder(ctx context.Context, cartID int) (model.Order, error) {
	order, err := h.svc.Orders.Finalize(ctx, cartID)
	if err != nil {
		return model.Order{}, err
	}
	h.invalidate(ctx, query.K(ResourceOrders))
	return order, nil
}

// SessionEnded runs once the session is gone. The invalidation reaches the
// listeners, so other instances drop their current user too.
func (h *Hooks) SessionEnded(ctx context.Context) {
	h.invalidate(ctx, query.K(ResourceCurrentUser))
}
