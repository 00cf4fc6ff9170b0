package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

// CartFilter narrows GET /carts/. Empty fields are left out.
type CartFilter struct {
	Status model.CartStatus
	Type   model.CartType
	Fecha  string
}

func (f CartFilter) Values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Type != "" {
		v.Set("type", string(f.Type))
	}
	if f.Fecha != "" {
		v.Set("fecha", f.Fecha)
	}
	return v
}

type CartClient struct{ c *Client }

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

func cartPath(id int) string { return "/carts/" + strconv.Itoa(id) + "/" }

func itemPath(cartID, itemID int) string {
	return cartPath(cartID) + "items/" + strconv.Itoa(itemID) + "/"
}

func (cc *CartClient) List(ctx context.Context, f CartFilter) ([]model.Cart, error) {
	var out []model.Cart
	err := cc.c.DoJSON(ctx, http.MethodGet, "/carts/", f.Values(), nil, &out)
	return out, err
}

func (cc *CartClient) Get(ctx context.Context, id int) (model.Cart, error) {
	var out model.Cart
	err := cc.c.DoJSON(ctx, http.MethodGet, cartPath(id), nil, nil, &out)
	return out, err
}

func (cc *CartClient) Create(ctx context.Context, cartType model.CartType) (model.Cart, error) {
	var out model.Cart
	err := cc.c.DoJSON(ctx, http.MethodPost, "/carts/", nil, model.CreateCartRequest{CartType: cartType}, &out)
	return out, err
}

func (cc *CartClient) AddItem(ctx context.Context, cartID int, item model.AddItemRequest) (model.CartItem, error) {
	var out model.CartItem
	err := cc.c.DoJSON(ctx, http.MethodPost, cartPath(cartID)+"items/", nil, item, &out)
	return out, err
}

// UpdateItem patches an item. The backend answers 204 when a zero quantity
// removed the item, in which case the returned item is nil.
func (cc *CartClient) UpdateItem(ctx context.Context, cartID, itemID int, patch model.UpdateItemRequest) (*model.CartItem, error) {
	var out *model.CartItem
	if err := cc.c.DoJSON(ctx, http.MethodPatch, itemPath(cartID, itemID), nil, patch, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cc *CartClient) DeleteItem(ctx context.Context, cartID, itemID int) error {
	return cc.c.DoJSON(ctx, http.MethodDelete, itemPath(cartID, itemID), nil, nil, nil)
}

func (cc *CartClient) Delete(ctx context.Context, cartID int) error {
	return cc.c.DoJSON(ctx, http.MethodDelete, cartPath(cartID), nil, nil, nil)
}

// GetOrCreateActive returns the first active cart of cartType, creating one
// when there is none. Concurrent callers may each create a cart; the backend
// decides what to do with duplicates.
func (cc *CartClient) GetOrCreateActive(ctx context.Context, cartType model.CartType) (model.Cart, error) {
	if cartType == "" {
		cartType = model.CartTypeComun
	}
	carts, err := cc.List(ctx, CartFilter{Status: model.CartStatusActivo, Type: cartType})
	if err != nil {
		return model.Cart{}, err
	}
	if len(carts) > 0 {
		return carts[0], nil
	}
	return cc.Create(ctx, cartType)
}

// AddItemToActive resolves (or creates) the active cart of cartType and adds
// the product to it. quantity defaults to 1 and cartType to COMUN.
func (cc *CartClient) AddItemToActive(ctx context.Context, productID, quantity int, cartType model.CartType) (model.Cart, model.CartItem, error) {
	if quantity <= 0 {
		quantity = 1
	}
	cart, err := cc.GetOrCreateActive(ctx, cartType)
	if err != nil {
		return model.Cart{}, model.CartItem{}, err
	}
	item, err := cc.AddItem(ctx, cart.ID, model.AddItemRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return cart, model.CartItem{}, err
	}
	return cart, item, nil
}
