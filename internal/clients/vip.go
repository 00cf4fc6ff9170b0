package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

type VipClient struct{ c *Client }

func NewVipClient(c *Client) *VipClient { return &VipClient{c: c} }

// Status is the current user's VIP standing.
func (vc *VipClient) Status(ctx context.Context) (model.VipStatus, error) {
	var out model.VipStatus
	err := vc.c.DoJSON(ctx, http.MethodGet, "/api/users/vip_status/", nil, nil, &out)
	return out, err
}

func (vc *VipClient) Changes(ctx context.Context, month, year int) (model.VipChanges, error) {
	return getVipChanges(ctx, vc.c, month, year)
}
