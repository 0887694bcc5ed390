package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindNone Kind = iota
	KindAuthRequired
	KindValidation
	KindDomain
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "auth_required"
	case KindValidation:
		return "validation"
	case KindDomain:
		return "domain"
	case KindTransport:
		return "transport"
	default:
		return "none"
	}
}

const (
	MsgAuthRequired    = "Please log in first"
	MsgCheckFields     = "Please check the highlighted fields"
	MsgGenericFailure  = "The request failed"
	msgTransportFormat = "Error: %v"
)

// Failure 是一次失败写操作归一化后的结果，只由 Classify 产生
type Failure struct {
	Kind        Kind
	Message     string
	FieldErrors map[string]string
}

// Classify 所有写操作共用的错误分类入口，调用方不得自行解析错误文本
func Classify(err error) Failure {
	if err == nil {
		return Failure{}
	}

	if IsAuthRequired(err) {
		return Failure{Kind: KindAuthRequired, Message: MsgAuthRequired}
	}

	var re *ResponseError
	if errors.As(err, &re) {
		return classifyResponse(re)
	}

	if errors.Is(err, rawErrTransport) {
		return Failure{Kind: KindTransport, Message: fmt.Sprintf(msgTransportFormat, cause(err))}
	}

	// 客户端本地拒绝（未选择文件等），直接展示
	return Failure{Kind: KindDomain, Message: err.Error()}
}

func classifyResponse(re *ResponseError) Failure {
	if !isJSON(re.ContentType) {
		// 原样展示，只有全是空白时才用通用提示
		if strings.TrimSpace(string(re.Body)) == "" {
			return Failure{Kind: KindDomain, Message: genericFor(re.Status)}
		}
		return Failure{Kind: KindDomain, Message: string(re.Body)}
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(re.Body, &body); err != nil {
		// 声明为 JSON 但无法解析，按通用失败处理
		return Failure{Kind: KindDomain, Message: genericFor(re.Status)}
	}

	message := stringField(body, "message")

	if raw, ok := body["fieldErrors"]; ok {
		fields := decodeFieldErrors(raw)
		if message == "" {
			message = MsgCheckFields
		}
		return Failure{Kind: KindValidation, Message: message, FieldErrors: fields}
	}

	if message == "" {
		message = genericFor(re.Status)
	}
	return Failure{Kind: KindDomain, Message: message}
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

func stringField(body map[string]json.RawMessage, key string) string {
	raw, ok := body[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// 字段消息一般是字符串，其他类型按文本处理
func decodeFieldErrors(raw json.RawMessage) map[string]string {
	var loose map[string]interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return map[string]string{}
	}
	fields := make(map[string]string, len(loose))
	for k, v := range loose {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case nil:
			fields[k] = ""
		default:
			fields[k] = fmt.Sprint(val)
		}
	}
	return fields
}

func genericFor(status int) string {
	if status == 0 {
		return MsgGenericFailure
	}
	return fmt.Sprintf("%s (status %d)", MsgGenericFailure, status)
}

// IsAuthRequired 同时匹配 ErrAuthRequired 与 NewAuthRequired 构造的错误
func IsAuthRequired(err error) bool {
	return errors.Is(err, rawErrAuthRequired)
}

func cause(err error) string {
	msg := err.Error()
	prefix := ErrTransport.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}
