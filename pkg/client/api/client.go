package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/app/client"
	hconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"eventshare-web/pkg/common/config"
	errs "eventshare-web/pkg/common/errors"
)

// Client 后端 REST 接口的 HTTP 客户端。请求一旦发出不会被取消，也不设置请求超时。
type Client struct {
	hc        *client.Client
	baseURL   string
	userAgent string
}

func New(cfg config.BackendConfig) (*Client, error) {
	opts := []hconfig.ClientOption{}
	if cfg.DialTimeout > 0 {
		opts = append(opts, client.WithDialTimeout(cfg.DialTimeout))
	}
	if cfg.MaxConnsPerHost > 0 {
		opts = append(opts, client.WithMaxConnsPerHost(cfg.MaxConnsPerHost))
	}
	hc, err := client.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return &Client{
		hc:        hc,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}, nil
}

// call 描述一次后端调用
type call struct {
	method     string
	path       string
	credential string
	body       interface{}
	prepare    func(req *protocol.Request) // multipart 等自定义请求体
}

// do 发送请求；2xx 时把 JSON 响应解到 out（out 为 nil 则忽略响应体）
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	if err := c.prepare(req, cl); err != nil {
		return err
	}

	if err := c.hc.Do(ctx, req, resp); err != nil {
		hlog.CtxWarnf(ctx, "backend %s %s failed: %v", cl.method, cl.path, err)
		return errs.WrapTransport(err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		hlog.CtxDebugf(ctx, "backend %s %s -> %d", cl.method, cl.path, status)
		return errs.NewResponseError(status, string(resp.Header.ContentType()), resp.Body())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errs.WrapTransport(fmt.Errorf("decode %s response: %w", cl.path, err))
	}
	return nil
}

func (c *Client) prepare(req *protocol.Request, cl call) error {
	req.SetRequestURI(c.baseURL + cl.path)
	req.SetMethod(cl.method)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if cl.credential != "" {
		req.Header.Set("Authorization", "Bearer "+cl.credential)
	}

	switch {
	case cl.prepare != nil:
		cl.prepare(req)
	case cl.body != nil:
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", cl.path, err)
		}
		req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
		req.SetBodyRaw(data)
	}
	return nil
}

// raw 发送请求并返回原始响应体，用于图片文件代理
func (c *Client) raw(ctx context.Context, cl call) (string, []byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	if err := c.prepare(req, cl); err != nil {
		return "", nil, err
	}
	if err := c.hc.Do(ctx, req, resp); err != nil {
		return "", nil, errs.WrapTransport(err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return "", nil, errs.NewResponseError(status, string(resp.Header.ContentType()), resp.Body())
	}
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return string(resp.Header.ContentType()), body, nil
}
