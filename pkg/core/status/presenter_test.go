package status

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/test/assert"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
)

// manualClock 手动触发的定时器
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (c *manualClock) schedule(_ time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.pending = append(c.pending, t)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		was := !t.stopped
		t.stopped = true
		return was
	}
}

// fire 触发第 i 个定时器，无论是否已被取消（模拟竞争中已到期的回调）
func (c *manualClock) fire(i int) {
	c.mu.Lock()
	t := c.pending[i]
	c.mu.Unlock()
	t.f()
}

var formFields = []string{"title", "eventDate", "capacity"}

func TestTransientLastWriteWins(t *testing.T) {
	clock := &manualClock{}
	p := New(3*time.Second, formFields, WithScheduler(clock.schedule))

	p.ShowTransient("first", Info)
	p.ShowTransient("second", Error)

	// 第一个消息的定时器晚到，不能清除第二个消息
	clock.fire(0)
	msg, ok := p.Transient()
	assert.Assert(t, ok)
	assert.DeepEqual(t, Message{Text: "second", Severity: Error}, msg)

	clock.fire(1)
	_, ok = p.Transient()
	assert.Assert(t, !ok)
}

func TestTransientWithRealTimer(t *testing.T) {
	p := New(20*time.Millisecond, formFields)
	p.ShowTransient("saved", Info)
	_, ok := p.Transient()
	assert.Assert(t, ok)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok = p.Transient(); !ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Assert(t, !ok)
}

func TestApplyFieldErrorsOnlyKnownFields(t *testing.T) {
	p := New(0, formFields)
	p.ApplyFieldErrors(model.FieldErrorSet{"title": "required"})
	p.ApplyFieldErrors(model.FieldErrorSet{"capacity": "too small", "password": "ignored"})

	assert.DeepEqual(t, model.FieldErrorSet{"title": "required", "capacity": "too small"}, p.FieldErrors())
	_, ok := p.FieldError("password")
	assert.Assert(t, !ok)
	assert.DeepEqual(t, []string{"capacity", "title"}, p.MarkedFields())
}

func TestClearFieldErrorsIdempotent(t *testing.T) {
	p := New(0, formFields)
	p.ApplyFieldErrors(model.FieldErrorSet{"title": "required"})
	p.ClearFieldErrors()
	p.ClearFieldErrors()
	assert.DeepEqual(t, 0, len(p.FieldErrors()))
}

func TestReportRoutesEveryKind(t *testing.T) {
	p := New(0, formFields)

	f := p.Report(errs.NewResponseError(400, "application/json",
		[]byte(`{"message":"invalid input","fieldErrors":{"title":"required"}}`)))
	assert.DeepEqual(t, errs.KindValidation, f.Kind)
	msg, _ := p.Transient()
	assert.DeepEqual(t, "invalid input", msg.Text)
	assert.DeepEqual(t, Error, msg.Severity)
	assert.DeepEqual(t, "required", p.FieldErrors()["title"])

	p.Report(errs.NewResponseError(400, "text/plain", []byte("already participating")))
	msg, _ = p.Transient()
	assert.DeepEqual(t, "already participating", msg.Text)

	p.Report(errs.ErrAuthRequired)
	msg, _ = p.Transient()
	assert.DeepEqual(t, errs.MsgAuthRequired, msg.Text)

	p.Report(errs.WrapTransport(errors.New("EOF")))
	msg, _ = p.Transient()
	assert.DeepEqual(t, "Error: EOF", msg.Text)
}

func TestReportNil(t *testing.T) {
	p := New(0, formFields)
	p.Report(nil)
	_, ok := p.Transient()
	assert.Assert(t, !ok)
}
