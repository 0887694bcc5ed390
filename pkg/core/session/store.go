package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"eventshare-web/pkg/core/credential"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
	"eventshare-web/pkg/core/transfer"
)

type Backend interface {
	Login(ctx context.Context, req model.LoginReq) (model.LoginRes, error)
	Register(ctx context.Context, req model.RegisterReq) (model.Identity, error)
}

// Store 页面的登录状态
type Store struct {
	page      *page.Context
	backend   Backend
	presenter *status.Presenter
	transfer  *transfer.Store

	mu       sync.Mutex
	onLogin  []func(ctx context.Context)
	onLogout []func()
}

func NewStore(pc *page.Context, backend Backend, presenter *status.Presenter, ts *transfer.Store) *Store {
	return &Store{
		page:      pc,
		backend:   backend,
		presenter: presenter,
		transfer:  ts,
	}
}

// OnLogin 登录成功后执行（例如刷新活动列表）
func (s *Store) OnLogin(f func(ctx context.Context)) {
	s.mu.Lock()
	s.onLogin = append(s.onLogin, f)
	s.mu.Unlock()
}

// OnLogout 注销时执行，用于重置编辑状态和上传状态
func (s *Store) OnLogout(f func()) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, f)
	s.mu.Unlock()
}

func (s *Store) Current() model.Session {
	return s.page.Session()
}

func (s *Store) Login(ctx context.Context, username, password string) (model.Session, error) {
	s.presenter.ClearFieldErrors()
	res, err := s.backend.Login(ctx, model.LoginReq{Username: username, Password: password})
	if err != nil {
		s.presenter.Report(err)
		return model.Session{}, err
	}

	session := model.Session{
		Credential: res.Token,
		Identity:   &model.Identity{ID: res.ID, Username: res.Username},
	}
	if claims, ok := credential.Parse(res.Token); ok && claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt
		hlog.CtxDebugf(ctx, "user %s logged in, credential expires at %s", res.Username, claims.ExpiresAt)
	}
	s.page.SetSession(session)
	s.presenter.ShowTransient(fmt.Sprintf("Logged in. Welcome, %s!", res.Username), status.Info)

	for _, f := range s.loginHooks() {
		f(ctx)
	}
	return session, nil
}

func (s *Store) Register(ctx context.Context, username, password, bio string) (model.Identity, error) {
	s.presenter.ClearFieldErrors()
	identity, err := s.backend.Register(ctx, model.RegisterReq{Username: username, Password: password, Bio: bio})
	if err != nil {
		s.presenter.Report(err)
		return model.Identity{}, err
	}
	if identity.Username == "" {
		identity.Username = username
	}
	s.presenter.ShowTransient(fmt.Sprintf("Registered. Welcome, %s!", identity.Username), status.Info)
	return identity, nil
}

// Logout 无条件清除会话并重置编辑状态与列表操作，可重复调用
func (s *Store) Logout() {
	s.page.ClearSession()
	s.presenter.ClearFieldErrors()
	for _, f := range s.logoutHooks() {
		f()
	}
	s.presenter.ShowTransient("Logged out", status.Info)
}

// TransferToPage 写入中转通道，返回跳转用的令牌
func (s *Store) TransferToPage(ctx context.Context, target page.Target) (string, error) {
	session := s.page.Session()
	env := transfer.Envelope{
		Credential: session.Credential,
		Identity:   session.Identity,
		EventID:    target.EventID,
		EventTitle: target.EventTitle,
	}
	token, err := s.transfer.Save(ctx, env)
	if err != nil {
		hlog.CtxErrorf(ctx, "transfer to event %d failed: %v", target.EventID, err)
		return "", err
	}
	s.page.SetTarget(target)
	return token, nil
}

func (s *Store) loginHooks() []func(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]func(ctx context.Context){}, s.onLogin...)
}

func (s *Store) logoutHooks() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]func(){}, s.onLogout...)
}
