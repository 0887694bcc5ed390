// pkg/common/errors/client_errors.go

/*
  - 使用实例
    // 判断错误类别时不要直接断言具体类型:
    if re, ok := err.(*ResponseError); ok { // 被 %w 包装后会失败
    // ...
    }

    // 正确方式:
    var re *ResponseError
    if errors.As(err, &re) {
    // ...
    }
*/
package errors

import (
	"errors"
	"fmt"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// 定义原始错误
var (
	rawErrAuthRequired  = errors.New("login required")
	rawErrTransport     = errors.New("backend unreachable")
	rawErrNoEvent       = errors.New("no event selected")
	rawErrEmptyBatch    = errors.New("no files selected")
	rawErrNotConfirmed  = errors.New("not confirmed")
	rawErrInFlight      = errors.New("request already in progress")
	rawErrEntryNotFound = errors.New("transfer entry not found")
	rawErrDuplicate     = errors.New("transfer entry already exists")
	rawErrStoreInternal = errors.New("transfer store internal error")
)

// 包装成 Hertz 错误类型
var (
	ErrAuthRequired   = hzte.New(rawErrAuthRequired, hzte.ErrorTypePublic, nil)
	ErrTransport      = hzte.New(rawErrTransport, hzte.ErrorTypePublic, nil)
	ErrNoEvent        = hzte.New(rawErrNoEvent, hzte.ErrorTypePublic, nil)
	ErrEmptyBatch     = hzte.New(rawErrEmptyBatch, hzte.ErrorTypePublic, nil)
	ErrNotConfirmed   = hzte.New(rawErrNotConfirmed, hzte.ErrorTypePublic, nil)
	ErrInFlight       = hzte.New(rawErrInFlight, hzte.ErrorTypePublic, nil)
	ErrEntryNotFound  = hzte.New(rawErrEntryNotFound, hzte.ErrorTypePrivate, nil)
	ErrDuplicateEntry = hzte.New(rawErrDuplicate, hzte.ErrorTypePrivate, nil)
	ErrStoreInternal  = hzte.New(rawErrStoreInternal, hzte.ErrorTypePrivate, nil)
)

// 带元数据的构造方法
func NewAuthRequired(meta interface{}) *hzte.Error {
	return hzte.New(rawErrAuthRequired, hzte.ErrorTypePublic, meta)
}

// WrapTransport 标记请求未拿到任何响应（网络错误、响应解析失败）
func WrapTransport(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// ResponseError 后端返回的非 2xx 响应，原样保存以便统一分类
type ResponseError struct {
	Status      int
	ContentType string
	Body        []byte
}

func NewResponseError(status int, contentType string, body []byte) *ResponseError {
	// 响应对象会被回收，这里必须复制
	cp := make([]byte, len(body))
	copy(cp, body)
	return &ResponseError{Status: status, ContentType: contentType, Body: cp}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, truncate(string(e.Body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
