package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
)

type Backend interface {
	ListEvents(ctx context.Context, credential string) ([]model.EventSummary, error)
	UpcomingEvents(ctx context.Context, credential string) ([]model.EventSummary, error)
	ParticipationStatus(ctx context.Context, credential string, eventID int64) (bool, error)
}

type Filter int

const (
	All Filter = iota
	Upcoming
)

// Card 一个活动卡片及其可用操作
type Card struct {
	Event          model.EventSummary
	CanParticipate bool
	CanCancel      bool
	CanManage      bool
	CanOpenGallery bool
}

// Render 一次刷新的完整结果，每次刷新整体替换
type Render struct {
	Cards         []Card
	Empty         bool
	Authenticated bool
	Filter        Filter
	RefreshedAt   time.Time
}

type View struct {
	page      *page.Context
	backend   Backend
	presenter *status.Presenter

	mu      sync.RWMutex
	filter  Filter
	current Render
	loaded  bool
	// events 与 builtFor 是 current 的来源，会话变化后据此重新推导
	events   []model.EventSummary
	builtFor string
}

func New(pc *page.Context, backend Backend, presenter *status.Presenter) *View {
	return &View{page: pc, backend: backend, presenter: presenter}
}

func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
}

// Current 最近一次完成的刷新结果。会话已不是刷新时的会话时，
// 丢弃参与状态并按当前会话重新推导卡片操作。
func (v *View) Current() (Render, bool) {
	session := v.page.Session()
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.loaded || v.builtFor == session.Credential {
		return v.current, v.loaded
	}
	return rebuild(v.current, v.events, session), true
}

// Reset 注销时调用，已有列表立即变为未登录状态，可重复调用
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return
	}
	v.current = rebuild(v.current, v.events, model.Session{})
	v.builtFor = ""
}

func rebuild(prev Render, events []model.EventSummary, session model.Session) Render {
	stripped := make([]model.EventSummary, len(events))
	for i, ev := range events {
		ev.IsParticipating = nil
		stripped[i] = ev
	}
	render := BuildView(stripped, session)
	render.Filter = prev.Filter
	render.RefreshedAt = prev.RefreshedAt
	return render
}

// Refresh 先取列表，登录状态下再并发查询每个活动的参与状态，全部返回后整体替换。
// 列表获取失败时保留上一次结果。
func (v *View) Refresh(ctx context.Context) error {
	v.mu.RLock()
	filter := v.filter
	v.mu.RUnlock()

	session := v.page.Session()

	var (
		events []model.EventSummary
		err    error
	)
	if filter == Upcoming {
		events, err = v.backend.UpcomingEvents(ctx, session.Credential)
	} else {
		events, err = v.backend.ListEvents(ctx, session.Credential)
	}
	if err != nil {
		hlog.CtxWarnf(ctx, "load events failed: %v", err)
		v.presenter.Report(err)
		return err
	}

	if session.Authenticated() {
		v.annotate(ctx, session.Credential, events)
	}

	render := BuildView(events, session)
	render.Filter = filter
	render.RefreshedAt = time.Now()

	// 最后完成的刷新覆盖之前的结果
	v.mu.Lock()
	v.current = render
	v.loaded = true
	v.events = events
	v.builtFor = session.Credential
	v.mu.Unlock()
	return nil
}

// annotate 每个活动一个 goroutine，单个查询失败只影响该活动
func (v *View) annotate(ctx context.Context, credential string, events []model.EventSummary) {
	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(ev *model.EventSummary) {
			defer wg.Done()
			participating, err := v.backend.ParticipationStatus(ctx, credential, ev.ID)
			if err != nil {
				hlog.CtxDebugf(ctx, "participation status of event %d unavailable: %v", ev.ID, err)
				participating = false
			}
			ev.IsParticipating = &participating
		}(&events[i])
	}
	wg.Wait()
}

// BuildView 由活动列表和会话推导卡片
func BuildView(events []model.EventSummary, session model.Session) Render {
	authenticated := session.Authenticated()
	render := Render{
		Cards:         make([]Card, 0, len(events)),
		Empty:         len(events) == 0,
		Authenticated: authenticated,
	}
	for _, ev := range events {
		if !authenticated {
			ev.IsParticipating = nil
		}
		participating := ev.IsParticipating != nil && *ev.IsParticipating
		render.Cards = append(render.Cards, Card{
			Event:          ev,
			CanParticipate: authenticated && !participating,
			CanCancel:      authenticated && participating,
			CanManage:      session.Owns(ev.Creator),
			CanOpenGallery: true,
		})
	}
	return render
}
