package participation

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
)

type Backend interface {
	Participate(ctx context.Context, credential string, eventID int64) (model.ParticipationRes, error)
	CancelParticipation(ctx context.Context, credential string, eventID int64) error
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Controller 参加 / 取消参加。人数只以后端返回为准，本地不做预测。
type Controller struct {
	page      *page.Context
	backend   Backend
	presenter *status.Presenter
	catalog   Refresher

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func New(pc *page.Context, backend Backend, presenter *status.Presenter, catalog Refresher) *Controller {
	return &Controller{
		page:      pc,
		backend:   backend,
		presenter: presenter,
		catalog:   catalog,
		inflight:  map[int64]struct{}{},
	}
}

func (c *Controller) Participate(ctx context.Context, eventID int64) error {
	return c.run(ctx, eventID, "participate", func(credential string) (string, error) {
		res, err := c.backend.Participate(ctx, credential, eventID)
		if err != nil {
			return "", err
		}
		if res.Status == "" {
			return "Joined the event", nil
		}
		return fmt.Sprintf("Joined the event. Status: %s", res.Status), nil
	})
}

func (c *Controller) CancelParticipation(ctx context.Context, eventID int64) error {
	return c.run(ctx, eventID, "cancel", func(credential string) (string, error) {
		if err := c.backend.CancelParticipation(ctx, credential, eventID); err != nil {
			return "", err
		}
		return "Participation cancelled", nil
	})
}

// run 同一活动同时只允许一个请求，重复点击直接返回 ErrInFlight
func (c *Controller) run(ctx context.Context, eventID int64, action string, do func(credential string) (string, error)) error {
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired(action)
		c.presenter.Report(err)
		return err
	}

	if !c.acquire(eventID) {
		hlog.CtxInfof(ctx, "%s on event %d ignored: request in flight", action, eventID)
		return errs.ErrInFlight
	}
	defer c.release(eventID)

	msg, err := do(session.Credential)
	if err != nil {
		c.presenter.Report(err)
		return err
	}
	c.presenter.ShowTransient(msg, status.Info)
	if err := c.catalog.Refresh(ctx); err != nil {
		hlog.CtxWarnf(ctx, "refresh after %s failed: %v", action, err)
	}
	return nil
}

func (c *Controller) acquire(eventID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[eventID]; busy {
		return false
	}
	c.inflight[eventID] = struct{}{}
	return true
}

func (c *Controller) release(eventID int64) {
	c.mu.Lock()
	delete(c.inflight, eventID)
	c.mu.Unlock()
}
