package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/test/assert"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
)

// holdFirst 大于 0 时只有前 holdFirst 次查询等待 gate
type fakeBackend struct {
	mu        sync.Mutex
	events    []model.EventSummary
	listErr   error
	status    map[int64]bool
	failing   map[int64]bool
	gate      chan struct{}
	holdFirst int32
	held      int32
	inflight  int32
	peak      int32
	probed    int32
}

func (f *fakeBackend) ListEvents(_ context.Context, _ string) ([]model.EventSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.EventSummary(nil), f.events...), nil
}

func (f *fakeBackend) UpcomingEvents(ctx context.Context, credential string) ([]model.EventSummary, error) {
	events, err := f.ListEvents(ctx, credential)
	if err != nil || len(events) == 0 {
		return events, err
	}
	return events[:1], nil
}

func (f *fakeBackend) ParticipationStatus(_ context.Context, credential string, id int64) (bool, error) {
	// 状态在查询发出时确定
	f.mu.Lock()
	participating, failing := f.status[id], f.failing[id]
	f.mu.Unlock()

	atomic.AddInt32(&f.probed, 1)
	n := atomic.AddInt32(&f.inflight, 1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}
	if f.gate != nil && (f.holdFirst == 0 || atomic.AddInt32(&f.held, 1) <= f.holdFirst) {
		<-f.gate
	}
	atomic.AddInt32(&f.inflight, -1)
	if credential == "" {
		return false, errors.New("unauthenticated probe")
	}
	if failing {
		return false, errs.WrapTransport(errors.New("connection reset"))
	}
	return participating, nil
}

func events() []model.EventSummary {
	alice := &model.Identity{ID: 1, Username: "alice"}
	bob := &model.Identity{ID: 2, Username: "bob"}
	return []model.EventSummary{
		{ID: 10, Title: "Go meetup", Creator: alice},
		{ID: 11, Title: "Picnic", Creator: bob},
		{ID: 12, Title: "Orphan"},
	}
}

func newView(backend *fakeBackend, session model.Session) (*View, *status.Presenter) {
	pc := page.New()
	pc.SetSession(session)
	p := status.New(0, nil)
	return New(pc, backend, p), p
}

var aliceSession = model.Session{Credential: "tkn", Identity: &model.Identity{ID: 1, Username: "alice"}}

func TestRefreshUnauthenticated(t *testing.T) {
	backend := &fakeBackend{events: events()}
	v, _ := newView(backend, model.Session{})

	assert.Nil(t, v.Refresh(context.Background()))
	render, ok := v.Current()
	assert.Assert(t, ok)
	assert.DeepEqual(t, 3, len(render.Cards))
	assert.DeepEqual(t, int32(0), atomic.LoadInt32(&backend.probed))
	for _, c := range render.Cards {
		assert.Assert(t, c.Event.IsParticipating == nil)
		assert.Assert(t, !c.CanParticipate && !c.CanCancel && !c.CanManage)
		assert.Assert(t, c.CanOpenGallery)
	}
}

func TestRefreshDegradesFailedProbe(t *testing.T) {
	backend := &fakeBackend{
		events:  events(),
		status:  map[int64]bool{10: true, 11: true},
		failing: map[int64]bool{11: true},
	}
	v, p := newView(backend, aliceSession)

	assert.Nil(t, v.Refresh(context.Background()))
	render, _ := v.Current()
	assert.DeepEqual(t, 3, len(render.Cards))

	assert.Assert(t, *render.Cards[0].Event.IsParticipating)
	assert.Assert(t, render.Cards[0].CanCancel)
	assert.Assert(t, render.Cards[0].CanManage)

	assert.Assert(t, !*render.Cards[1].Event.IsParticipating)
	assert.Assert(t, render.Cards[1].CanParticipate)
	assert.Assert(t, !render.Cards[1].CanManage)

	// 没有创建者的活动不提供管理操作
	assert.Assert(t, !render.Cards[2].CanManage)

	// 参与状态查询失败不提示
	_, shown := p.Transient()
	assert.Assert(t, !shown)
}

func TestProbesRunConcurrently(t *testing.T) {
	backend := &fakeBackend{events: events(), gate: make(chan struct{})}
	v, _ := newView(backend, aliceSession)

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&backend.inflight) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	// 结果在全部查询返回前不可见
	_, loaded := v.Current()
	assert.Assert(t, !loaded)

	close(backend.gate)
	assert.Nil(t, <-done)
	assert.DeepEqual(t, int32(3), atomic.LoadInt32(&backend.peak))
}

func TestListFailureKeepsPreviousRender(t *testing.T) {
	backend := &fakeBackend{events: events()}
	v, p := newView(backend, model.Session{})
	assert.Nil(t, v.Refresh(context.Background()))

	backend.mu.Lock()
	backend.listErr = errs.NewResponseError(500, "text/plain", []byte("boom"))
	backend.mu.Unlock()

	assert.NotNil(t, v.Refresh(context.Background()))
	render, _ := v.Current()
	assert.DeepEqual(t, 3, len(render.Cards))
	msg, _ := p.Transient()
	assert.DeepEqual(t, "boom", msg.Text)
}

func TestEmptyState(t *testing.T) {
	v, _ := newView(&fakeBackend{}, aliceSession)
	assert.Nil(t, v.Refresh(context.Background()))
	render, _ := v.Current()
	assert.Assert(t, render.Empty)
	assert.DeepEqual(t, 0, len(render.Cards))
}

func TestUpcomingFilter(t *testing.T) {
	v, _ := newView(&fakeBackend{events: events()}, model.Session{})
	v.SetFilter(Upcoming)
	assert.Nil(t, v.Refresh(context.Background()))
	render, _ := v.Current()
	assert.DeepEqual(t, Upcoming, render.Filter)
	assert.DeepEqual(t, 1, len(render.Cards))
}

func TestBuildViewNeverParticipatingWithoutCredential(t *testing.T) {
	yes := true
	evs := events()
	evs[0].IsParticipating = &yes
	render := BuildView(evs, model.Session{Identity: &model.Identity{ID: 1}})
	assert.Assert(t, render.Cards[0].Event.IsParticipating == nil)
	assert.Assert(t, !render.Cards[0].CanManage)
}

func waitInflight(t *testing.T, backend *fakeBackend, n int32) {
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&backend.inflight) < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.DeepEqual(t, n, atomic.LoadInt32(&backend.inflight))
}

func assertNoAffordances(t *testing.T, render Render) {
	assert.Assert(t, !render.Authenticated)
	for _, c := range render.Cards {
		assert.Assert(t, c.Event.IsParticipating == nil)
		assert.Assert(t, !c.CanParticipate && !c.CanCancel && !c.CanManage)
		assert.Assert(t, c.CanOpenGallery)
	}
}

func TestLogoutHidesAffordancesWhenRefreshFails(t *testing.T) {
	backend := &fakeBackend{events: events(), status: map[int64]bool{10: true}}
	v, _ := newView(backend, aliceSession)
	assert.Nil(t, v.Refresh(context.Background()))

	v.page.ClearSession()
	backend.mu.Lock()
	backend.listErr = errs.NewResponseError(500, "text/plain", []byte("boom"))
	backend.mu.Unlock()

	assert.NotNil(t, v.Refresh(context.Background()))
	render, loaded := v.Current()
	assert.Assert(t, loaded)
	assert.DeepEqual(t, 3, len(render.Cards))
	assertNoAffordances(t, render)
}

func TestResetDropsSessionAffordances(t *testing.T) {
	backend := &fakeBackend{events: events(), status: map[int64]bool{10: true}}
	v, _ := newView(backend, aliceSession)
	assert.Nil(t, v.Refresh(context.Background()))

	v.Reset()
	v.Reset()
	v.mu.RLock()
	stored := v.current
	v.mu.RUnlock()
	assertNoAffordances(t, stored)

	// 已加载的事件本身不受影响
	render, _ := v.Current()
	assert.DeepEqual(t, "Go meetup", render.Cards[0].Event.Title)
}

func TestRefreshFinishingAfterLogoutStaysLoggedOut(t *testing.T) {
	backend := &fakeBackend{events: events(), status: map[int64]bool{10: true}, gate: make(chan struct{}), holdFirst: 3}
	v, _ := newView(backend, aliceSession)

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()
	waitInflight(t, backend, 3)

	v.page.ClearSession()
	v.Reset()
	assert.Nil(t, v.Refresh(context.Background()))

	close(backend.gate)
	assert.Nil(t, <-done)
	render, _ := v.Current()
	assertNoAffordances(t, render)
}

func TestOverlappingRefreshLastCompletedWins(t *testing.T) {
	backend := &fakeBackend{
		events:    events(),
		status:    map[int64]bool{10: true},
		gate:      make(chan struct{}),
		holdFirst: 3,
	}
	v, _ := newView(backend, aliceSession)

	// A 的查询被挡住
	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()
	waitInflight(t, backend, 3)

	// B 看到不同的列表和状态，先完成
	backend.mu.Lock()
	backend.events = []model.EventSummary{
		{ID: 10, Title: "Go meetup (moved)", Creator: &model.Identity{ID: 1}},
		{ID: 11, Title: "Picnic (moved)", Creator: &model.Identity{ID: 2}},
	}
	backend.status = map[int64]bool{11: true}
	backend.mu.Unlock()
	assert.Nil(t, v.Refresh(context.Background()))
	render, _ := v.Current()
	assert.DeepEqual(t, "Go meetup (moved)", render.Cards[0].Event.Title)

	close(backend.gate)
	assert.Nil(t, <-done)

	render, _ = v.Current()
	assert.DeepEqual(t, 3, len(render.Cards))
	assert.DeepEqual(t, []string{"Go meetup", "Picnic", "Orphan"}, []string{
		render.Cards[0].Event.Title, render.Cards[1].Event.Title, render.Cards[2].Event.Title,
	})
	assert.Assert(t, *render.Cards[0].Event.IsParticipating)
	assert.Assert(t, render.Cards[0].CanCancel && !render.Cards[0].CanParticipate)
	assert.Assert(t, render.Cards[0].CanManage)
	assert.Assert(t, !*render.Cards[1].Event.IsParticipating)
	assert.Assert(t, render.Cards[1].CanParticipate && !render.Cards[1].CanCancel)
	assert.Assert(t, !render.Cards[1].CanManage)
	assert.Assert(t, !*render.Cards[2].Event.IsParticipating)
	assert.Assert(t, render.Authenticated)
}
