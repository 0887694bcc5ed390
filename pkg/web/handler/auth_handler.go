package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"eventshare-web/pkg/web/model"
)

// AuthHandler 登录、注册、注销，凭证只保存在页面上下文中
type AuthHandler struct {
	catalog *CatalogHandler
}

func NewAuthHandler(catalog *CatalogHandler) *AuthHandler {
	return &AuthHandler{catalog: catalog}
}

func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.RegisterForm
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "参数校验失败")
		return
	}
	cp := h.catalog.page(c)
	if _, err := cp.Session.Register(context.WithoutCancel(ctx), req.Username, req.Password, req.Bio); err != nil {
		hlog.CtxInfof(ctx, "register %q failed: %v", req.Username, err)
	}
	seeOther(c, "/")
}

func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginForm
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "参数错误")
		return
	}
	cp := h.catalog.page(c)
	if _, err := cp.Session.Login(context.WithoutCancel(ctx), req.Username, req.Password); err != nil {
		hlog.CtxInfof(ctx, "login %q failed: %v", req.Username, err)
	}
	seeOther(c, "/")
}

func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	h.catalog.page(c).Session.Logout()
	seeOther(c, "/")
}
