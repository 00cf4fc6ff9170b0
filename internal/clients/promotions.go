package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

type PromotionClient struct{ c *Client }

func NewPromotionClient(c *Client) *PromotionClient { return &PromotionClient{c: c} }

// Active lists the promotions in effect on the backend's notion of today,
// or on the simulated date when one is set.
func (pc *PromotionClient) Active(ctx context.Context) (model.PromotionList, error) {
	return pc.ByDate(ctx, "")
}

// ByDate lists the promotions in effect on date; "" means no override.
func (pc *PromotionClient) ByDate(ctx context.Context, date string) (model.PromotionList, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"fecha": {date}}
	}
	var out model.PromotionList
	err := pc.c.DoJSON(ctx, http.MethodGet, "/promotions/special-dates/", q, nil, &out)
	return out, err
}

func (pc *PromotionClient) Get(ctx context.Context, id int) (model.Promotion, error) {
	var out model.Promotion
	err := pc.c.DoJSON(ctx, http.MethodGet, "/promotions/special-dates/"+strconv.Itoa(id)+"/", nil, nil, &out)
	return out, err
}
