package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// ComponentCheck 一个依赖组件的探测
type ComponentCheck struct {
	Name   string
	IsCore bool
	Check  func(ctx context.Context) error
}

type HealthCheckHandler struct {
	checks []ComponentCheck
}

func NewHealthCheckHandler(checks ...ComponentCheck) *HealthCheckHandler {
	return &HealthCheckHandler{checks: checks}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// 启用关键组件标签判断
type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"`
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck 增强的健康检查接口
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(startupTime).Round(time.Second).String(),
		Components: make([]ComponentStatus, 0, len(h.checks)),
	}
	for _, check := range h.checks {
		status.Components = append(status.Components, probe(ctx, check))
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(consts.StatusServiceUnavailable, status)
		return
	}

	c.JSON(consts.StatusOK, status)
}

func probe(ctx context.Context, check ComponentCheck) ComponentStatus {
	start := time.Now()
	err := check.Check(ctx)
	cs := ComponentStatus{
		Name:    check.Name,
		Status:  "ok",
		IsCore:  check.IsCore,
		Latency: time.Since(start),
	}
	if err != nil {
		hlog.CtxWarnf(ctx, "health check %s failed: %v", check.Name, err)
		cs.Status = "error"
		cs.Error = err.Error()
	}
	return cs
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		// 核心组件状态异常或任意组件发生严重错误
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
