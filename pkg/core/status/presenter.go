package status

import (
	"sort"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	errs "eventshare-web/pkg/common/errors"
	"eventshare-web/pkg/core/model"
)

type Severity int

const (
	Info Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "info"
}

type Message struct {
	Text     string
	Severity Severity
}

// Scheduler 延迟执行 f，返回取消函数
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func timerScheduler(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type Option func(p *Presenter)

func WithScheduler(s Scheduler) Option {
	return func(p *Presenter) {
		p.schedule = s
	}
}

// Presenter 一个页面的提示条与表单字段错误
type Presenter struct {
	mu       sync.Mutex
	current  *Message
	gen      uint64
	stop     func() bool
	delay    time.Duration
	schedule Scheduler

	formFields map[string]struct{}
	fields     map[string]string
}

// New 创建 Presenter；formFields 为当前页面表单中可标记错误的字段
func New(delay time.Duration, formFields []string, opts ...Option) *Presenter {
	p := &Presenter{
		delay:      delay,
		schedule:   timerScheduler,
		formFields: make(map[string]struct{}, len(formFields)),
		fields:     map[string]string{},
	}
	for _, f := range formFields {
		p.formFields[f] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShowTransient 覆盖当前提示，延迟后自动清除。旧消息的定时器不会清除新消息。
func (p *Presenter) ShowTransient(text string, severity Severity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		p.stop()
	}
	p.gen++
	gen := p.gen
	p.current = &Message{Text: text, Severity: severity}
	if p.delay <= 0 {
		p.stop = nil
		return
	}
	p.stop = p.schedule(p.delay, func() {
		p.expire(gen)
	})
}

func (p *Presenter) expire(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.current = nil
		p.stop = nil
	}
}

// Transient 返回当前提示
func (p *Presenter) Transient() (Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Message{}, false
	}
	return *p.current, true
}

// ApplyFieldErrors 只标记当前表单中存在的字段，其余字段保持原样
func (p *Presenter) ApplyFieldErrors(set model.FieldErrorSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, msg := range set {
		if _, ok := p.formFields[name]; !ok {
			continue
		}
		p.fields[name] = msg
	}
}

func (p *Presenter) ClearFieldErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.fields) == 0 {
		return
	}
	p.fields = map[string]string{}
}

func (p *Presenter) FieldError(name string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg, ok := p.fields[name]
	return msg, ok
}

// FieldErrors 返回已标记字段的副本
func (p *Presenter) FieldErrors() model.FieldErrorSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(model.FieldErrorSet, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// MarkedFields 按字母序返回已标记的字段名
func (p *Presenter) MarkedFields() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.fields))
	for k := range p.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Report 所有失败操作的唯一出口
func (p *Presenter) Report(err error) errs.Failure {
	f := errs.Classify(err)
	if f.Kind == errs.KindNone {
		return f
	}
	hlog.Debugf("report %s failure: %s", f.Kind, f.Message)
	if f.Kind == errs.KindValidation {
		p.ApplyFieldErrors(f.FieldErrors)
	}
	p.ShowTransient(f.Message, Error)
	return f
}
