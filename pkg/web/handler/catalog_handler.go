package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	errs "eventshare-web/pkg/common/errors"
	pages "eventshare-web/pkg/core/app"
	"eventshare-web/pkg/core/catalog"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
	"eventshare-web/pkg/web/model"
	"eventshare-web/pkg/web/view"
)

// CatalogHandler 活动列表页及其上的所有操作
type CatalogHandler struct {
	pages   *pages.Pages
	cookies CookieOptions
}

func NewCatalogHandler(p *pages.Pages, cookies CookieOptions) *CatalogHandler {
	return &CatalogHandler{pages: p, cookies: cookies}
}

// page 取得当前浏览器对应的页面上下文，新建时下发 cookie
func (h *CatalogHandler) page(c *app.RequestContext) *pages.CatalogPage {
	id := readCookie(c, catalogCookie)
	cp := h.pages.Catalog(id)
	if cp.ID != id {
		writeCookie(c, h.cookies, catalogCookie, cp.ID)
	}
	return cp
}

// Index GET /，filter=all|upcoming 切换列表，不带参数时沿用上次的选择
func (h *CatalogHandler) Index(ctx context.Context, c *app.RequestContext) {
	cp := h.page(c)
	switch c.Query("filter") {
	case "upcoming":
		cp.Catalog.SetFilter(catalog.Upcoming)
	case "all":
		cp.Catalog.SetFilter(catalog.All)
	}

	// 失败时保留上一次的列表，错误已进入提示条
	_ = cp.Catalog.Refresh(context.WithoutCancel(ctx))

	render, loaded := cp.Catalog.Current()
	session := cp.Page.Session()
	data := view.CatalogData{
		Session:       session,
		Banner:        view.BannerOf(cp.Status),
		Render:        render,
		Loaded:        loaded,
		Upcoming:      render.Filter == catalog.Upcoming,
		Form:          cp.Page.Form(),
		FieldErrors:   cp.Status.FieldErrors(),
		EditingID:     cp.Page.EditSession().EventID,
		CancelVisible: cp.Page.CancelVisible(),
	}
	if session.Authenticated() {
		data.Categories = cp.Editor.Categories(ctx)
	}
	c.HTML(consts.StatusOK, "catalog.html", data)
}

// Submit 新建或更新，取决于当前是否处于编辑状态
func (h *CatalogHandler) Submit(ctx context.Context, c *app.RequestContext) {
	var form model.EventForm
	if err := c.BindAndValidate(&form); err != nil {
		respondError(c, consts.StatusBadRequest, "参数错误")
		return
	}
	cp := h.page(c)
	if err := cp.Editor.Submit(context.WithoutCancel(ctx), form.ToCore()); err != nil {
		hlog.CtxInfof(ctx, "submit event failed: %v", err)
	}
	seeOther(c, "/#editor")
}

func (h *CatalogHandler) BeginEdit(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cp := h.page(c)
	if err := cp.Editor.BeginEdit(context.WithoutCancel(ctx), id); err != nil {
		hlog.CtxInfof(ctx, "begin edit of event %d failed: %v", id, err)
	}
	seeOther(c, "/#editor")
}

func (h *CatalogHandler) CancelEdit(ctx context.Context, c *app.RequestContext) {
	cp := h.page(c)
	cp.Editor.CancelEdit(context.WithoutCancel(ctx))
	seeOther(c, "/")
}

func (h *CatalogHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form model.ConfirmForm
	if err := c.BindAndValidate(&form); err != nil {
		respondError(c, consts.StatusBadRequest, "参数错误")
		return
	}
	cp := h.page(c)
	err := cp.Editor.Delete(context.WithoutCancel(ctx), id, form.Confirmed)
	if err != nil && !errors.Is(err, errs.ErrNotConfirmed) {
		hlog.CtxInfof(ctx, "delete event %d failed: %v", id, err)
	}
	seeOther(c, "/")
}

func (h *CatalogHandler) Participate(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cp := h.page(c)
	if err := cp.Participation.Participate(context.WithoutCancel(ctx), id); err != nil {
		hlog.CtxInfof(ctx, "participate in event %d failed: %v", id, err)
	}
	seeOther(c, "/")
}

func (h *CatalogHandler) CancelParticipation(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cp := h.page(c)
	if err := cp.Participation.CancelParticipation(context.WithoutCancel(ctx), id); err != nil {
		hlog.CtxInfof(ctx, "cancel participation in event %d failed: %v", id, err)
	}
	seeOther(c, "/")
}

// OpenGallery 把会话和活动写入中转通道，跳转到相册页
func (h *CatalogHandler) OpenGallery(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cp := h.page(c)
	target := page.Target{EventID: id}
	if render, loaded := cp.Catalog.Current(); loaded {
		for _, card := range render.Cards {
			if card.Event.ID == id {
				target.EventTitle = card.Event.Title
				break
			}
		}
	}

	token, err := cp.Session.TransferToPage(context.WithoutCancel(ctx), target)
	if err != nil {
		hlog.CtxErrorf(ctx, "transfer to gallery of event %d failed: %v", id, err)
		cp.Status.ShowTransient("Could not open the photo page", status.Error)
		seeOther(c, "/")
		return
	}
	seeOther(c, "/gallery?handoff="+token)
}

// Me 我的页面
func (h *CatalogHandler) Me(ctx context.Context, c *app.RequestContext) {
	cp := h.page(c)
	v, err := cp.Profile.Load(context.WithoutCancel(ctx))
	c.HTML(consts.StatusOK, "me.html", view.MeData{
		Session: cp.Page.Session(),
		Banner:  view.BannerOf(cp.Status),
		View:    v,
		Loaded:  err == nil,
	})
}
