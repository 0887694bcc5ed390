package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"eventshare-web/pkg/core/model"
)

func (c *Client) Photos(ctx context.Context, credential string, eventID int64) ([]model.Photo, error) {
	var res []model.Photo
	err := c.do(ctx, call{
		method:     consts.MethodGet,
		path:       fmt.Sprintf("/api/photos/event/%d", eventID),
		credential: credential,
	}, &res)
	return res, err
}

// UploadPhoto 上传单个文件（multipart 字段 file 与 caption）
func (c *Client) UploadPhoto(ctx context.Context, credential string, eventID int64, file model.FileDescriptor, caption string) (model.Photo, error) {
	r, err := file.Open()
	if err != nil {
		return model.Photo{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer r.Close()

	var res model.Photo
	err = c.do(ctx, call{
		method:     consts.MethodPost,
		path:       fmt.Sprintf("/api/photos/upload/%d", eventID),
		credential: credential,
		prepare: func(req *protocol.Request) {
			req.SetMultipartFormData(map[string]string{"caption": caption})
			req.SetMultipartField("file", file.Name, file.ContentType, r)
		},
	}, &res)
	return res, err
}

func (c *Client) DeletePhoto(ctx context.Context, credential string, photoID int64) error {
	return c.do(ctx, call{
		method:     consts.MethodDelete,
		path:       fmt.Sprintf("/api/photos/%d", photoID),
		credential: credential,
	}, nil)
}

// PhotoFile 读取图片原文件，返回 Content-Type 与内容
func (c *Client) PhotoFile(ctx context.Context, filename string) (string, []byte, error) {
	return c.raw(ctx, call{
		method: consts.MethodGet,
		path:   "/api/photos/file/" + url.PathEscape(filename),
	})
}
