package api

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"eventshare-web/pkg/core/model"
)

func (c *Client) ListEvents(ctx context.Context, credential string) ([]model.EventSummary, error) {
	var res []model.EventSummary
	err := c.do(ctx, call{method: consts.MethodGet, path: "/api/events", credential: credential}, &res)
	return res, err
}

func (c *Client) UpcomingEvents(ctx context.Context, credential string) ([]model.EventSummary, error) {
	var res []model.EventSummary
	err := c.do(ctx, call{method: consts.MethodGet, path: "/api/events/upcoming", credential: credential}, &res)
	return res, err
}

func (c *Client) GetEvent(ctx context.Context, credential string, id int64) (model.EventSummary, error) {
	var res model.EventSummary
	err := c.do(ctx, call{method: consts.MethodGet, path: eventPath(id), credential: credential}, &res)
	return res, err
}

func (c *Client) CreateEvent(ctx context.Context, credential string, in model.EventInput) (model.EventSummary, error) {
	var res model.EventSummary
	err := c.do(ctx, call{method: consts.MethodPost, path: "/api/events", credential: credential, body: in}, &res)
	return res, err
}

func (c *Client) UpdateEvent(ctx context.Context, credential string, id int64, in model.EventInput) (model.EventSummary, error) {
	var res model.EventSummary
	err := c.do(ctx, call{method: consts.MethodPut, path: eventPath(id), credential: credential, body: in}, &res)
	return res, err
}

func (c *Client) DeleteEvent(ctx context.Context, credential string, id int64) error {
	return c.do(ctx, call{method: consts.MethodDelete, path: eventPath(id), credential: credential}, nil)
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var res []model.Category
	err := c.do(ctx, call{method: consts.MethodGet, path: "/api/categories"}, &res)
	return res, err
}

// 后端的 getter 拼写为 isPaticipating，序列化后的键名可能是任意一种
type participationStatus struct {
	Participating *bool `json:"participating"`
	Paticipating  *bool `json:"paticipating"`
}

func (c *Client) ParticipationStatus(ctx context.Context, credential string, id int64) (bool, error) {
	var res participationStatus
	err := c.do(ctx, call{
		method:     consts.MethodGet,
		path:       eventPath(id) + "/participation-status",
		credential: credential,
	}, &res)
	if err != nil {
		return false, err
	}
	switch {
	case res.Participating != nil:
		return *res.Participating, nil
	case res.Paticipating != nil:
		return *res.Paticipating, nil
	}
	return false, nil
}

func (c *Client) Participate(ctx context.Context, credential string, id int64) (model.ParticipationRes, error) {
	var res model.ParticipationRes
	err := c.do(ctx, call{method: consts.MethodPost, path: eventPath(id) + "/participate", credential: credential}, &res)
	return res, err
}

func (c *Client) CancelParticipation(ctx context.Context, credential string, id int64) error {
	return c.do(ctx, call{method: consts.MethodDelete, path: eventPath(id) + "/participate", credential: credential}, nil)
}

func (c *Client) MyParticipations(ctx context.Context, credential string) ([]model.Participation, error) {
	var res []model.Participation
	err := c.do(ctx, call{method: consts.MethodGet, path: "/api/events/my-participations", credential: credential}, &res)
	return res, err
}

func eventPath(id int64) string {
	return fmt.Sprintf("/api/events/%d", id)
}
