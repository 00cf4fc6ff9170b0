package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

const vipChangesPath = "/users/api/vip_changes/"

type UserClient struct{ c *Client }

func NewUserClient(c *Client) *UserClient { return &UserClient{c: c} }

func (uc *UserClient) VipUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := uc.c.DoJSON(ctx, http.MethodGet, "/api/users/", url.Values{"vip": {"true"}}, nil, &out)
	return out, err
}

func (uc *UserClient) VipChanges(ctx context.Context, month, year int) (model.VipChanges, error) {
	return getVipChanges(ctx, uc.c, month, year)
}

func getVipChanges(ctx context.Context, c *Client, month, year int) (model.VipChanges, error) {
	q := url.Values{
		"month": {strconv.Itoa(month)},
		"year":  {strconv.Itoa(year)},
	}
	var out model.VipChanges
	err := c.DoJSON(ctx, http.MethodGet, vipChangesPath, q, nil, &out)
	return out, err
}
