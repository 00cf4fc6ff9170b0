package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (oc *OrderClient) List(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := oc.c.DoJSON(ctx, http.MethodGet, "/orders/", nil, nil, &out)
	return out, err
}

// Finalize turns an active cart into an order.
func (oc *OrderClient) Finalize(ctx context.Context, cartID int) (model.Order, error) {
	var out model.Order
	err := oc.c.DoJSON(ctx, http.MethodPost, "/orders/create/", nil, model.FinalizeRequest{CartID: cartID}, &out)
	return out, err
}
