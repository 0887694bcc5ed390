// Package page holds the per-page state shared by the controllers of one
// loaded page. Every accessor copies in or out under the lock, so callers never
// hold a reference into the context.
package page

import (
	"sync"

	"eventshare-web/pkg/core/model"
)

// Target 当前选中的活动（用于页面跳转）
type Target struct {
	EventID    int64
	EventTitle string
}

type Context struct {
	mu            sync.Mutex
	session       model.Session
	edit          model.EditSession
	form          model.EventForm
	cancelVisible bool
	batch         model.UploadBatch
	target        Target
}

func New() *Context {
	return &Context{}
}

func (c *Context) Session() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySession(c.session)
}

func (c *Context) SetSession(s model.Session) {
	c.mu.Lock()
	c.session = copySession(s)
	c.mu.Unlock()
}

func (c *Context) ClearSession() {
	c.mu.Lock()
	c.session = model.Session{}
	c.mu.Unlock()
}

func (c *Context) EditSession() model.EditSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit
}

func (c *Context) SetEditSession(e model.EditSession) {
	c.mu.Lock()
	c.edit = e
	c.mu.Unlock()
}

func (c *Context) Form() model.EventForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Context) SetForm(f model.EventForm) {
	c.mu.Lock()
	c.form = f
	c.mu.Unlock()
}

func (c *Context) CancelVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelVisible
}

func (c *Context) SetCancelVisible(v bool) {
	c.mu.Lock()
	c.cancelVisible = v
	c.mu.Unlock()
}

func (c *Context) Batch() model.UploadBatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyBatch(c.batch)
}

func (c *Context) SetBatch(b model.UploadBatch) {
	c.mu.Lock()
	c.batch = copyBatch(b)
	c.mu.Unlock()
}

func (c *Context) SetCaption(caption string) {
	c.mu.Lock()
	c.batch.Caption = caption
	c.mu.Unlock()
}

// ResetBatch 可重复调用
func (c *Context) ResetBatch() {
	c.mu.Lock()
	c.batch = model.UploadBatch{}
	c.mu.Unlock()
}

func (c *Context) Target() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *Context) SetTarget(t Target) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()
}

func copySession(s model.Session) model.Session {
	out := model.Session{Credential: s.Credential}
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	if s.ExpiresAt != nil {
		exp := *s.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}

func copyBatch(b model.UploadBatch) model.UploadBatch {
	out := model.UploadBatch{Caption: b.Caption}
	if len(b.Files) > 0 {
		out.Files = append([]model.FileDescriptor(nil), b.Files...)
	}
	return out
}
