package gallery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/page"
	"eventshare-web/pkg/core/status"
)

type Backend interface {
	Photos(ctx context.Context, credential string, eventID int64) ([]model.Photo, error)
	UploadPhoto(ctx context.Context, credential string, eventID int64, file model.FileDescriptor, caption string) (model.Photo, error)
	DeletePhoto(ctx context.Context, credential string, photoID int64) error
}

// Rejection 被拒绝的文件及原因
type Rejection struct {
	Name   string
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s", r.Name, r.Reason)
}

// Thumb 待上传文件的本地预览，生成失败时 DataURI 为空
type Thumb struct {
	Name    string
	Size    int64
	DataURI string
}

type PhotoView struct {
	Photo     model.Photo
	CanDelete bool
}

// Progress 上传进度
type Progress func(done, total int)

type Options struct {
	MaxFileSize int64
	PreviewSize uint
}

type Controller struct {
	page      *page.Context
	backend   Backend
	presenter *status.Presenter
	opts      Options

	mu        sync.Mutex
	thumbs    []Thumb
	photos    []model.Photo
	loaded    bool
	uploading bool
	done      int
	total     int
}

func New(pc *page.Context, backend Backend, presenter *status.Presenter, opts Options) *Controller {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 10 << 20
	}
	if opts.PreviewSize == 0 {
		opts.PreviewSize = 300
	}
	return &Controller{page: pc, backend: backend, presenter: presenter, opts: opts}
}

// CanUpload 需要凭证和已知的活动
func (c *Controller) CanUpload() bool {
	return c.page.Session().Authenticated() && c.page.Target().EventID != 0
}

// SelectFiles 逐个校验，不合格的文件单独拒绝，其余组成新的上传批次
func (c *Controller) SelectFiles(files []model.FileDescriptor) []Rejection {
	var (
		accepted   []model.FileDescriptor
		thumbs     []Thumb
		rejections []Rejection
	)
	for _, f := range files {
		switch {
		case !isImage(f.Name, f.ContentType):
			rejections = append(rejections, Rejection{Name: f.Name, Reason: "not an image file"})
			continue
		case f.Size > c.opts.MaxFileSize:
			rejections = append(rejections, Rejection{
				Name:   f.Name,
				Reason: "larger than " + formatSize(c.opts.MaxFileSize),
			})
			continue
		}
		th, err := c.thumb(f)
		if err != nil {
			rejections = append(rejections, Rejection{Name: f.Name, Reason: "could not be read"})
			continue
		}
		accepted = append(accepted, f)
		thumbs = append(thumbs, th)
	}

	caption := c.page.Batch().Caption
	c.page.SetBatch(model.UploadBatch{Files: accepted, Caption: caption})

	c.mu.Lock()
	c.thumbs = thumbs
	c.done, c.total = 0, 0
	c.mu.Unlock()

	if len(rejections) > 0 {
		lines := make([]string, 0, len(rejections))
		for _, r := range rejections {
			lines = append(lines, r.String())
		}
		c.presenter.ShowTransient(strings.Join(lines, "; "), status.Error)
	}
	return rejections
}

// thumb 文件打不开时返回错误；只是无法解码时仍接受，预览为空
func (c *Controller) thumb(f model.FileDescriptor) (Thumb, error) {
	t := Thumb{Name: f.Name, Size: f.Size}
	if f.Open == nil {
		return t, fmt.Errorf("%s has no content", f.Name)
	}
	r, err := f.Open()
	if err != nil {
		hlog.Debugf("open %s failed: %v", f.Name, err)
		return t, err
	}
	defer r.Close()
	uri, err := Preview(r, c.opts.PreviewSize)
	if err != nil {
		hlog.Debugf("preview of %s unavailable: %v", f.Name, err)
		return t, nil
	}
	t.DataURI = uri
	return t, nil
}

func (c *Controller) SetCaption(caption string) {
	c.page.SetCaption(caption)
}

// Upload 逐个上传，任一文件失败即停止，已上传的文件不回滚，批次保持不变
func (c *Controller) Upload(ctx context.Context, progress Progress) error {
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired("upload")
		c.presenter.Report(err)
		return err
	}
	eventID := c.page.Target().EventID
	if eventID == 0 {
		c.presenter.Report(errs.ErrNoEvent)
		return errs.ErrNoEvent
	}
	batch := c.page.Batch()
	if batch.Empty() {
		c.presenter.Report(errs.ErrEmptyBatch)
		return errs.ErrEmptyBatch
	}

	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return errs.ErrInFlight
	}
	c.uploading = true
	c.done, c.total = 0, len(batch.Files)
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	total := len(batch.Files)
	for i, f := range batch.Files {
		if _, err := c.backend.UploadPhoto(ctx, session.Credential, eventID, f, batch.Caption); err != nil {
			hlog.CtxWarnf(ctx, "upload %s (%d/%d) to event %d failed: %v", f.Name, i+1, total, eventID, err)
			c.presenter.Report(err)
			return err
		}
		c.mu.Lock()
		c.done = i + 1
		c.mu.Unlock()
		if progress != nil {
			progress(i+1, total)
		}
	}

	c.Reset()
	c.presenter.ShowTransient(fmt.Sprintf("Uploaded %d photo(s)", total), status.Info)
	if err := c.LoadPhotos(ctx); err != nil {
		hlog.CtxWarnf(ctx, "reload photos failed: %v", err)
	}
	return nil
}

// Progress 返回最近一次上传已完成数与总数
func (c *Controller) Progress() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done, c.total
}

// Reset 清空批次、说明与预览，可重复调用
func (c *Controller) Reset() {
	c.page.ResetBatch()
	c.mu.Lock()
	c.thumbs = nil
	c.mu.Unlock()
}

func (c *Controller) Thumbs() []Thumb {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Thumb(nil), c.thumbs...)
}

// LoadPhotos 登录与否都可以浏览
func (c *Controller) LoadPhotos(ctx context.Context) error {
	eventID := c.page.Target().EventID
	if eventID == 0 {
		return errs.ErrNoEvent
	}
	photos, err := c.backend.Photos(ctx, c.page.Session().Credential, eventID)
	if err != nil {
		c.presenter.Report(err)
		return err
	}
	c.mu.Lock()
	c.photos = photos
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Photos 删除按钮只对上传者显示，最终权限由后端判断
func (c *Controller) Photos() ([]PhotoView, bool) {
	session := c.page.Session()
	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]PhotoView, 0, len(c.photos))
	for _, p := range c.photos {
		views = append(views, PhotoView{Photo: p, CanDelete: session.Owns(p.UploadedBy)})
	}
	return views, c.loaded
}

func (c *Controller) DeletePhoto(ctx context.Context, photoID int64, confirm func() bool) error {
	session := c.page.Session()
	if !session.Authenticated() {
		err := errs.NewAuthRequired("delete photo")
		c.presenter.Report(err)
		return err
	}
	if confirm == nil || !confirm() {
		return errs.ErrNotConfirmed
	}
	if err := c.backend.DeletePhoto(ctx, session.Credential, photoID); err != nil {
		c.presenter.Report(err)
		return err
	}
	c.presenter.ShowTransient("Photo deleted", status.Info)
	if err := c.LoadPhotos(ctx); err != nil {
		hlog.CtxWarnf(ctx, "reload photos failed: %v", err)
	}
	return nil
}

// formatSize 整 MB 时写成 10MB，否则按 KB 或字节
func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
