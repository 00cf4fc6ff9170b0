package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

type SessionClient struct{ c *Client }

func NewSessionClient(c *Client) *SessionClient { return &SessionClient{c: c} }

func (sc *SessionClient) Login(ctx context.Context, req model.LoginRequest) (model.Session, error) {
	var out model.Session
	err := sc.c.DoJSON(ctx, http.MethodPost, "/session/login/", nil, req, &out)
	return out, err
}

func (sc *SessionClient) Logout(ctx context.Context) error {
	return sc.c.DoJSON(ctx, http.MethodPost, "/session/logout/", nil, nil, nil)
}

func (sc *SessionClient) Current(ctx context.Context) (model.Session, error) {
	var out model.Session
	err := sc.c.DoJSON(ctx, http.MethodGet, "/session/me/", nil, nil, &out)
	return out, err
}
