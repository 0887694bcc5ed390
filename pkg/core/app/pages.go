package app

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"

	"eventshare-web/pkg/core/catalog"
	"eventshare-web/pkg/core/editor"
	"eventshare-web/pkg/core/gallery"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/participation"
	"eventshare-web/pkg/core/profile"
	"eventshare-web/pkg/core/session"
	"eventshare-web/pkg/core/status"
	"eventshare-web/pkg/core/transfer"
)

// Backend 所有页面用到的后端接口
type Backend interface {
	session.Backend
	catalog.Backend
	participation.Backend
	editor.Backend
	gallery.Backend
	profile.Backend
}

type Options struct {
	TransientDelay time.Duration
	IdleTTL        time.Duration
	Gallery        gallery.Options
}

// CatalogPage 活动列表页面
type CatalogPage struct {
	ID            string
	Page          *page.Context
	Status        *status.Presenter
	Session       *session.Store
	Catalog       *catalog.View
	Participation *participation.Controller
	Editor        *editor.Controller
	Profile       *profile.Controller

	lastSeen time.Time
}

// GalleryPage 相册页面，每次经中转加载都重建
type GalleryPage struct {
	ID      string
	Page    *page.Context
	Status  *status.Presenter
	Gallery *gallery.Controller

	lastSeen time.Time
}

// Pages 内存中的页面上下文，按 cookie 中的 ID 查找
type Pages struct {
	backend  Backend
	transfer *transfer.Store
	opts     Options

	mu      sync.Mutex
	catalog map[string]*CatalogPage
	gallery map[string]*GalleryPage
	now     func() time.Time
}

func NewPages(backend Backend, ts *transfer.Store, opts Options) *Pages {
	return &Pages{
		backend:  backend,
		transfer: ts,
		opts:     opts,
		catalog:  map[string]*CatalogPage{},
		gallery:  map[string]*GalleryPage{},
		now:      time.Now,
	}
}

// Catalog 返回 id 对应的页面，不存在时新建
func (p *Pages) Catalog(id string) *CatalogPage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cp, ok := p.catalog[id]; ok {
		cp.lastSeen = p.now()
		return cp
	}
	cp := p.newCatalogPage()
	p.catalog[cp.ID] = cp
	return cp
}

func (p *Pages) newCatalogPage() *CatalogPage {
	pc := page.New()
	presenter := status.New(p.opts.TransientDelay, model.EventFormFields)
	view := catalog.New(pc, p.backend, presenter)
	store := session.NewStore(pc, p.backend, presenter, p.transfer)
	cp := &CatalogPage{
		ID:            uuid.NewString(),
		Page:          pc,
		Status:        presenter,
		Session:       store,
		Catalog:       view,
		Participation: participation.New(pc, p.backend, presenter, view),
		Editor:        editor.New(pc, p.backend, presenter, view),
		Profile:       profile.New(pc, p.backend, presenter),
		lastSeen:      p.now(),
	}

	store.OnLogin(func(ctx context.Context) {
		if err := view.Refresh(ctx); err != nil {
			hlog.CtxWarnf(ctx, "refresh after login failed: %v", err)
		}
	})
	// 上传批次只存在于相册页，相册页的会话是复制来的，不随这里注销
	store.OnLogout(view.Reset)
	store.OnLogout(cp.Editor.Reset)
	return cp
}

// OpenGallery 从中转令牌重建相册页面。令牌无效时得到未登录、未选择活动的页面。
func (p *Pages) OpenGallery(ctx context.Context, token string) (*GalleryPage, error) {
	env, err := p.transfer.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	sess, target := transfer.Reconstruct(env, p.now())

	pc := page.New()
	pc.SetSession(sess)
	pc.SetTarget(target)
	presenter := status.New(p.opts.TransientDelay, []string{"caption"})
	gp := &GalleryPage{
		ID:       uuid.NewString(),
		Page:     pc,
		Status:   presenter,
		Gallery:  gallery.New(pc, p.backend, presenter, p.opts.Gallery),
		lastSeen: p.now(),
	}

	p.mu.Lock()
	p.gallery[gp.ID] = gp
	p.mu.Unlock()

	if target.EventID != 0 {
		if err := gp.Gallery.LoadPhotos(ctx); err != nil {
			hlog.CtxWarnf(ctx, "load photos of event %d failed: %v", target.EventID, err)
		}
	}
	if !sess.Authenticated() {
		presenter.ShowTransient("Log in on the events page to upload photos", status.Info)
	}
	return gp, nil
}

func (p *Pages) Gallery(id string) (*GalleryPage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	gp, ok := p.gallery[id]
	if ok {
		gp.lastSeen = p.now()
	}
	return gp, ok
}

// Sweep 回收闲置页面，返回回收数量
func (p *Pages) Sweep() int {
	if p.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := p.now().Add(-p.opts.IdleTTL)
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for id, cp := range p.catalog {
		if cp.lastSeen.Before(cutoff) {
			delete(p.catalog, id)
			n++
		}
	}
	for id, gp := range p.gallery {
		if gp.lastSeen.Before(cutoff) {
			delete(p.gallery, id)
			n++
		}
	}
	return n
}

// RunSweeper 定期回收，直到 ctx 结束
func (p *Pages) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.Sweep(); n > 0 {
				hlog.Debugf("swept %d idle pages", n)
			}
		}
	}
}
