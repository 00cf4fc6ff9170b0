package clients

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

type ProductClient struct{ c *Client }

func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

func (pc *ProductClient) List(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := pc.c.DoJSON(ctx, http.MethodGet, "/products/", nil, nil, &out)
	return out, err
}

func (pc *ProductClient) Get(ctx context.Context, id int) (model.Product, error) {
	var out model.Product
	err := pc.c.DoJSON(ctx, http.MethodGet, "/products/"+strconv.Itoa(id)+"/", nil, nil, &out)
	return out, err
}
