package editor

import (
	"context"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
)

type Backend interface {
	GetEvent(ctx context.Context, credential string, id int64) (model.EventSummary, error)
	CreateEvent(ctx context.Context, credential string, in model.EventInput) (model.EventSummary, error)
	UpdateEvent(ctx context.Context, credential string, id int64, in model.EventInput) (model.EventSummary, error)
	DeleteEvent(ctx context.Context, credential string, id int64) error
	Categories(ctx context.Context) ([]model.Category, error)
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

type Controller struct {
	page      *page.Context
	backend   Backend
	presenter *status.Presenter
	catalog   Refresher

	// 保证读取状态、转移、写回是一个整体
	mu sync.Mutex

	catMu      sync.Mutex
	categories []model.Category
}

func New(pc *page.Context, backend Backend, presenter *status.Presenter, catalog Refresher) *Controller {
	return &Controller{page: pc, backend: backend, presenter: presenter, catalog: catalog}
}

func (c *Controller) State() model.EditSession {
	return c.page.EditSession()
}

// BeginEdit 从后端取最新数据填充表单
func (c *Controller) BeginEdit(ctx context.Context, eventID int64) error {
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired("edit")
		c.presenter.Report(err)
		return err
	}
	ev, err := c.backend.GetEvent(ctx, session.Credential, eventID)
	if err != nil {
		c.presenter.Report(err)
		return err
	}
	c.transition(ctx, Input{Kind: BeginEdit, Event: ev})
	return nil
}

// Submit 新建模式发 POST，编辑模式发 PUT。失败时保留表单与编辑状态。
func (c *Controller) Submit(ctx context.Context, form model.EventForm) error {
	c.page.SetForm(form)
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired("submit")
		c.presenter.Report(err)
		return err
	}

	c.presenter.ClearFieldErrors()
	state := c.page.EditSession()
	in := InputFromForm(form)

	var err error
	if state.Editing() {
		_, err = c.backend.UpdateEvent(ctx, session.Credential, state.EventID, in)
	} else {
		_, err = c.backend.CreateEvent(ctx, session.Credential, in)
	}
	if err != nil {
		c.presenter.Report(err)
		return err
	}
	c.transitionFrom(ctx, state, Input{Kind: SubmitSucceeded})
	return nil
}

func (c *Controller) CancelEdit(ctx context.Context) {
	c.transition(ctx, Input{Kind: CancelEdit})
}

// Delete 需要确认；删除正在编辑的活动会退出编辑模式
func (c *Controller) Delete(ctx context.Context, eventID int64, confirm func() bool) error {
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired("delete")
		c.presenter.Report(err)
		return err
	}
	if confirm == nil || !confirm() {
		return errs.ErrNotConfirmed
	}
	if err := c.backend.DeleteEvent(ctx, session.Credential, eventID); err != nil {
		c.presenter.Report(err)
		return err
	}
	c.transition(ctx, Input{Kind: Deleted, EventID: eventID})
	return nil
}

// Reset 注销时调用
func (c *Controller) Reset() {
	c.transition(context.Background(), Input{Kind: Logout})
}

// Categories 表单的分类选项，获取失败时返回上次结果
func (c *Controller) Categories(ctx context.Context) []model.Category {
	cats, err := c.backend.Categories(ctx)
	c.catMu.Lock()
	defer c.catMu.Unlock()
	if err != nil {
		hlog.CtxDebugf(ctx, "load categories failed: %v", err)
		return c.categories
	}
	c.categories = cats
	return cats
}

func (c *Controller) transition(ctx context.Context, in Input) {
	c.mu.Lock()
	state := c.page.EditSession()
	next, effects := Next(state, in)
	c.page.SetEditSession(next)
	refresh := c.apply(effects)
	c.mu.Unlock()

	if refresh {
		c.refresh(ctx)
	}
}

// transitionFrom 请求期间编辑状态已被改变（取消或切换到其他活动）时，只提示并刷新，不覆盖当前状态
func (c *Controller) transitionFrom(ctx context.Context, sent model.EditSession, in Input) {
	c.mu.Lock()
	state := c.page.EditSession()
	var (
		next    model.EditSession
		effects []Effect
	)
	if state == sent {
		next, effects = Next(state, in)
	} else {
		hlog.CtxInfof(ctx, "edit session changed from %d to %d during submit", sent.EventID, state.EventID)
		_, all := Next(sent, in)
		next = state
		for _, e := range all {
			if e.Kind == Notify || e.Kind == RefreshCatalog {
				effects = append(effects, e)
			}
		}
	}
	c.page.SetEditSession(next)
	refresh := c.apply(effects)
	c.mu.Unlock()

	if refresh {
		c.refresh(ctx)
	}
}

func (c *Controller) apply(effects []Effect) (refresh bool) {
	for _, e := range effects {
		switch e.Kind {
		case PopulateForm:
			c.page.SetForm(e.Form)
		case ResetForm:
			c.page.SetForm(model.EventForm{})
		case ShowCancel:
			c.page.SetCancelVisible(true)
		case HideCancel:
			c.page.SetCancelVisible(false)
		case ClearFieldErrors:
			c.presenter.ClearFieldErrors()
		case Notify:
			c.presenter.ShowTransient(e.Message, status.Info)
		case RefreshCatalog:
			refresh = true
		}
	}
	return refresh
}

func (c *Controller) refresh(ctx context.Context) {
	if c.catalog == nil {
		return
	}
	if err := c.catalog.Refresh(ctx); err != nil {
		hlog.CtxWarnf(ctx, "catalog refresh failed: %v", err)
	}
}
