package transfer

import (
	"encoding/json"
	"strconv"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"eventshare-web/pkg/core/model"
)

// 通道中的字段名
const (
	KeyCredential = "credential"
	KeyIdentity   = "identity"
	KeyEventID    = "event_id"
	KeyEventTitle = "event_title"
)

var envelopeKeys = []string{KeyCredential, KeyIdentity, KeyEventID, KeyEventTitle}

// Envelope 跨页面传递的数据。值拷贝，目标页面据此重建自己的会话。
type Envelope struct {
	Credential string
	Identity   *model.Identity
	EventID    int64
	EventTitle string
}

// Encode 只输出有值的字段
func (e Envelope) Encode() map[string][]byte {
	out := make(map[string][]byte, len(envelopeKeys))
	if e.Credential != "" {
		out[KeyCredential] = []byte(e.Credential)
	}
	if e.Identity != nil {
		if data, err := json.Marshal(e.Identity); err == nil {
			out[KeyIdentity] = data
		}
	}
	if e.EventID != 0 {
		out[KeyEventID] = []byte(strconv.FormatInt(e.EventID, 10))
	}
	if e.EventTitle != "" {
		out[KeyEventTitle] = []byte(e.EventTitle)
	}
	return out
}

// Decode 缺失或无法解析的字段按不存在处理
func Decode(fields map[string][]byte) Envelope {
	var e Envelope
	if v, ok := fields[KeyCredential]; ok {
		e.Credential = string(v)
	}
	if v, ok := fields[KeyIdentity]; ok {
		var id model.Identity
		if err := json.Unmarshal(v, &id); err != nil {
			hlog.Warnf("discarding malformed transferred identity: %v", err)
		} else {
			e.Identity = &id
		}
	}
	if v, ok := fields[KeyEventID]; ok {
		if id, err := strconv.ParseInt(string(v), 10, 64); err == nil && id > 0 {
			e.EventID = id
		}
	}
	if v, ok := fields[KeyEventTitle]; ok {
		e.EventTitle = string(v)
	}
	return e
}
