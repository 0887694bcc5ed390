package profile

import (
	"context"
	"time"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
)

type Backend interface {
	Me(ctx context.Context, credential string) (model.Profile, error)
	MyParticipations(ctx context.Context, credential string) ([]model.Participation, error)
}

// View 我的页面
type View struct {
	Profile        model.Profile
	Participations []model.Participation
	// NoParticipations 尚未参加任何活动
	NoParticipations bool
	ExpiresAt        *time.Time
}

type Controller struct {
	page      *page.Context
	backend   Backend
	presenter *status.Presenter
}

func New(pc *page.Context, backend Backend, presenter *status.Presenter) *Controller {
	return &Controller{page: pc, backend: backend, presenter: presenter}
}

func (c *Controller) Load(ctx context.Context) (View, error) {
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired("my page")
		c.presenter.Report(err)
		return View{}, err
	}

	profile, err := c.backend.Me(ctx, session.Credential)
	if err != nil {
		c.presenter.Report(err)
		return View{}, err
	}
	participations, err := c.backend.MyParticipations(ctx, session.Credential)
	if err != nil {
		c.presenter.Report(err)
		return View{}, err
	}

	return View{
		Profile:          profile,
		Participations:   participations,
		NoParticipations: len(participations) == 0,
		ExpiresAt:        session.ExpiresAt,
	}, nil
}
