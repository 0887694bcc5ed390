package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	errs "eventshare-web/pkg/common/errors"
	pages "eventshare-web/pkg/core/app"
	core "eventshare-web/pkg/core/model"
	"eventshare-web/pkg/web/model"
	"eventshare-web/pkg/web/view"
)

// PhotoSource 图片文件来源
type PhotoSource interface {
	PhotoFile(ctx context.Context, filename string) (string, []byte, error)
}

// GalleryHandler 相册页。页面上下文只能由中转令牌建立，不与活动列表页共享。
type GalleryHandler struct {
	pages       *pages.Pages
	photos      PhotoSource
	maxFileSize int64
	cookies     CookieOptions
}

func NewGalleryHandler(p *pages.Pages, photos PhotoSource, maxFileSize int64, cookies CookieOptions) *GalleryHandler {
	return &GalleryHandler{pages: p, photos: photos, maxFileSize: maxFileSize, cookies: cookies}
}

// page 没有有效 cookie 时建立一个未登录、未选择活动的页面
func (h *GalleryHandler) page(ctx context.Context, c *app.RequestContext) (*pages.GalleryPage, error) {
	if gp, ok := h.pages.Gallery(readCookie(c, galleryCookie)); ok {
		return gp, nil
	}
	gp, err := h.pages.OpenGallery(ctx, "")
	if err != nil {
		return nil, err
	}
	writeCookie(c, h.cookies, galleryCookie, gp.ID)
	return gp, nil
}

// Show GET /gallery，带 handoff 参数时按令牌重建页面
func (h *GalleryHandler) Show(ctx context.Context, c *app.RequestContext) {
	ctx = context.WithoutCancel(ctx)
	var (
		gp  *pages.GalleryPage
		err error
	)
	if token := c.Query("handoff"); token != "" {
		gp, err = h.pages.OpenGallery(ctx, token)
		if err == nil {
			writeCookie(c, h.cookies, galleryCookie, gp.ID)
		}
	} else {
		gp, err = h.page(ctx, c)
	}
	if err != nil {
		hlog.CtxErrorf(ctx, "open gallery failed: %v", err)
		respondError(c, consts.StatusInternalServerError, "系统错误")
		return
	}

	target := gp.Page.Target()
	photos, loaded := gp.Gallery.Photos()
	done, total := gp.Gallery.Progress()
	c.HTML(consts.StatusOK, "gallery.html", view.GalleryData{
		Session:    gp.Page.Session(),
		Banner:     view.BannerOf(gp.Status),
		EventID:    target.EventID,
		EventTitle: target.EventTitle,
		CanUpload:  gp.Gallery.CanUpload(),
		Thumbs:     gp.Gallery.Thumbs(),
		Caption:    gp.Page.Batch().Caption,
		Photos:     photos,
		Loaded:     loaded,
		Done:       done,
		Total:      total,
	})
}

// Select 读入所选文件。超过上限或读取失败的文件也交给控制器，由它逐个拒绝
func (h *GalleryHandler) Select(ctx context.Context, c *app.RequestContext) {
	gp, err := h.page(ctx, c)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, "系统错误")
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, consts.StatusBadRequest, "参数错误")
		return
	}

	files := h.descriptors(ctx, form.File["files"])
	gp.Gallery.SelectFiles(files)
	seeOther(c, "/gallery")
}

func (h *GalleryHandler) descriptors(ctx context.Context, headers []*multipart.FileHeader) []core.FileDescriptor {
	files := make([]core.FileDescriptor, 0, len(headers))
	for _, fh := range headers {
		fd, err := h.describe(fh)
		if err != nil {
			// 交给控制器按文件名拒绝
			hlog.CtxWarnf(ctx, "read selected file %s failed: %v", fh.Filename, err)
			readErr := err
			fd.Open = func() (io.ReadCloser, error) { return nil, readErr }
		}
		files = append(files, fd)
	}
	return files
}

func (h *GalleryHandler) describe(fh *multipart.FileHeader) (core.FileDescriptor, error) {
	fd := core.FileDescriptor{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if fh.Size > h.maxFileSize {
		fd.Open = func() (io.ReadCloser, error) {
			return nil, fmt.Errorf("%s exceeds %d bytes", fh.Filename, h.maxFileSize)
		}
		return fd, nil
	}

	f, err := fh.Open()
	if err != nil {
		return fd, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fd, err
	}
	fd.Open = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return fd, nil
}

func (h *GalleryHandler) Upload(ctx context.Context, c *app.RequestContext) {
	var form model.CaptionForm
	if err := c.BindAndValidate(&form); err != nil {
		respondError(c, consts.StatusBadRequest, "参数错误")
		return
	}
	gp, err := h.page(ctx, c)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, "系统错误")
		return
	}
	ctx = context.WithoutCancel(ctx)
	gp.Gallery.SetCaption(form.Caption)
	err = gp.Gallery.Upload(ctx, func(done, total int) {
		hlog.CtxDebugf(ctx, "uploaded %d/%d", done, total)
	})
	if err != nil {
		hlog.CtxInfof(ctx, "upload failed: %v", err)
	}
	seeOther(c, "/gallery")
}

// Reset 清空待上传批次
func (h *GalleryHandler) Reset(ctx context.Context, c *app.RequestContext) {
	gp, err := h.page(ctx, c)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, "系统错误")
		return
	}
	gp.Gallery.Reset()
	seeOther(c, "/gallery")
}

func (h *GalleryHandler) DeletePhoto(ctx context.Context, c *app.RequestContext) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form model.ConfirmForm
	if err := c.BindAndValidate(&form); err != nil {
		respondError(c, consts.StatusBadRequest, "参数错误")
		return
	}
	gp, err := h.page(ctx, c)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, "系统错误")
		return
	}
	err = gp.Gallery.DeletePhoto(context.WithoutCancel(ctx), id, form.Confirmed)
	if err != nil && !errors.Is(err, errs.ErrNotConfirmed) {
		hlog.CtxInfof(ctx, "delete photo %d failed: %v", id, err)
	}
	seeOther(c, "/gallery")
}

// File 代理后端的图片文件
func (h *GalleryHandler) File(ctx context.Context, c *app.RequestContext) {
	name := c.Param("filename")
	contentType, data, err := h.photos.PhotoFile(ctx, name)
	if err != nil {
		var re *errs.ResponseError
		if errors.As(err, &re) {
			c.AbortWithStatus(re.Status)
			return
		}
		hlog.CtxWarnf(ctx, "fetch photo file %s failed: %v", name, err)
		c.AbortWithStatus(consts.StatusBadGateway)
		return
	}
	c.Response.Header.Set("Cache-Control", "public, max-age=3600")
	c.Data(consts.StatusOK, contentType, data)
}
