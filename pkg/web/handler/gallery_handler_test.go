package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/test/assert"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", name)
	assert.Nil(t, err)
	_, _ = fw.Write(content)
	assert.Nil(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	assert.Nil(t, err)
	return form.File["files"][0]
}

func TestDescribeReadsSmallFiles(t *testing.T) {
	h := &GalleryHandler{maxFileSize: 16}
	fd, err := h.describe(fileHeader(t, "a.png", []byte("pixels")))
	assert.Nil(t, err)
	assert.DeepEqual(t, "a.png", fd.Name)
	assert.DeepEqual(t, int64(6), fd.Size)

	// 可以多次打开
	for i := 0; i < 2; i++ {
		r, err := fd.Open()
		assert.Nil(t, err)
		data, _ := io.ReadAll(r)
		assert.DeepEqual(t, "pixels", string(data))
	}
}

func TestDescribeSkipsOversizedFiles(t *testing.T) {
	h := &GalleryHandler{maxFileSize: 4}
	fd, err := h.describe(fileHeader(t, "big.png", []byte("too many bytes")))
	assert.Nil(t, err)
	assert.DeepEqual(t, int64(14), fd.Size)
	_, err = fd.Open()
	assert.NotNil(t, err)
}

func TestDescriptorsKeepUnreadableFiles(t *testing.T) {
	h := &GalleryHandler{maxFileSize: 1 << 20}
	// 既没有内存内容也没有临时文件，打开会失败
	missing := &multipart.FileHeader{Filename: "lost.png", Size: 10}

	files := h.descriptors(context.Background(), []*multipart.FileHeader{
		missing,
		fileHeader(t, "ok.png", []byte("pixels")),
	})
	assert.DeepEqual(t, 2, len(files))
	assert.DeepEqual(t, "lost.png", files[0].Name)
	_, err := files[0].Open()
	assert.NotNil(t, err)
	_, err = files[1].Open()
	assert.Nil(t, err)
}
