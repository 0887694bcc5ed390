package api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"eventshare-web/pkg/core/model"
)

func (c *Client) Register(ctx context.Context, req model.RegisterReq) (model.Identity, error) {
	var res model.Identity
	err := c.do(ctx, call{method: consts.MethodPost, path: "/api/auth/register", body: req}, &res)
	return res, err
}

func (c *Client) Login(ctx context.Context, req model.LoginReq) (model.LoginRes, error) {
	var res model.LoginRes
	err := c.do(ctx, call{method: consts.MethodPost, path: "/api/auth/login", body: req}, &res)
	return res, err
}

func (c *Client) Me(ctx context.Context, credential string) (model.Profile, error) {
	var res model.Profile
	err := c.do(ctx, call{method: consts.MethodGet, path: "/api/users/me", credential: credential}, &res)
	return res, err
}
