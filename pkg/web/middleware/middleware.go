package middleware

import (
	"context"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"

	"eventshare-web/pkg/common/config"
)

// LoggerMiddleware 访问日志，带页面 cookie 是否存在，便于排查页面上下文丢失
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-6s | %s | page=%t UA=%s",
			ctx.Response.StatusCode(),
			time.Since(start),
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			len(ctx.Cookie("es_page")) > 0,
			ctx.GetHeader("User-Agent"),
		)
	}
}

// RecoveryMiddleware 处理器 panic 时返回 500，开发环境附带堆栈
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := string(debug.Stack())
			hlog.CtxErrorf(c, "panic on %s %s: %v\n%s", ctx.Method(), ctx.Path(), r, stack)

			body := map[string]interface{}{"code": 500, "message": "internal server error"}
			if !cfg.IsProd() {
				body["error"] = fmt.Sprintf("%v", r)
				body["stack"] = strings.Split(stack, "\n")
			}
			ctx.AbortWithStatusJSON(500, body)
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 配置的来源之外，TrustedDomains 中的域名也放行
func CORSMiddleware(cc config.CORSConfig) app.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cc.AllowOrigins,
		AllowMethods:     cc.AllowMethods,
		AllowHeaders:     cc.AllowHeaders,
		ExposeHeaders:    cc.ExposeHeaders,
		AllowCredentials: cc.AllowCredentials,
		MaxAge:           cc.MaxAge,
		AllowOriginFunc: func(origin string) bool {
			for _, domain := range cc.TrustedDomains {
				if strings.Contains(origin, domain) {
					return true
				}
			}
			return false
		},
	})
}

// RateLimitMiddleware 全站共用一个令牌桶
func RateLimitMiddleware(ctx context.Context, rate int, interval time.Duration) app.HandlerFunc {
	limiter := NewTokenBucket(ctx, rate, interval)

	return func(c context.Context, rc *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "rate limited: %s %s", rc.Method(), rc.Path())
			rc.AbortWithStatusJSON(429, map[string]interface{}{
				"code":    429001,
				"message": "too many requests",
			})
			return
		}
		rc.Next(c)
	}
}

type TokenBucket struct {
	tokens chan struct{}
}

// NewTokenBucket 初始装满，之后每个 interval 补充一个令牌，ctx 结束时停止补充
func NewTokenBucket(ctx context.Context, rate int, interval time.Duration) *TokenBucket {
	tb := &TokenBucket{tokens: make(chan struct{}, rate)}
	for i := 0; i < rate; i++ {
		tb.tokens <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case tb.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()
	return tb
}

func (tb *TokenBucket) Allow() bool {
	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

// 表单里出现的脚本片段。活动描述是自由文本，不做 SQL 关键字过滤
var scriptPattern = regexp.MustCompile(`(?i)<script.*?>|<\/script>|alert\(|onerror=`)

// securityRule 一条请求校验，返回 false 时以 code/status 拒绝
type securityRule struct {
	code   int
	status int
	msg    string
	ok     func(ctx *app.RequestContext) bool
}

// SecurityCheckMiddleware 按顺序执行请求校验，第一条不通过即拒绝
func SecurityCheckMiddleware(sec config.SecurityConfig) app.HandlerFunc {
	allowed := make(map[string]bool, len(sec.AllowedMethods))
	for _, m := range sec.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	rules := []securityRule{
		{400001, 400, "missing required header: User-Agent", func(ctx *app.RequestContext) bool {
			return len(ctx.GetHeader("User-Agent")) > 0
		}},
		{413001, 413, "request body exceeds max size", func(ctx *app.RequestContext) bool {
			return int64(ctx.Request.Header.ContentLength()) <= sec.MaxBodySize
		}},
		{422001, 422, "request contains invalid characters", func(ctx *app.RequestContext) bool {
			return !hasScript(ctx)
		}},
		{405001, 405, "method not allowed", func(ctx *app.RequestContext) bool {
			return allowed[string(ctx.Method())]
		}},
	}

	return func(c context.Context, ctx *app.RequestContext) {
		for _, rule := range rules {
			if !rule.ok(ctx) {
				hlog.CtxWarnf(c, "request rejected [code=%d] %s %s: %s", rule.code, ctx.Method(), ctx.Path(), rule.msg)
				ctx.AbortWithStatusJSON(rule.status, map[string]interface{}{
					"code":    rule.code,
					"message": rule.msg,
				})
				return
			}
		}
		ctx.Next(c)
	}
}

// hasScript 检查 query 和 urlencoded 表单，multipart 的文件内容不检查
func hasScript(ctx *app.RequestContext) bool {
	found := false
	visit := func(key, value []byte) {
		if !found && (scriptPattern.Match(key) || scriptPattern.Match(value)) {
			found = true
		}
	}
	ctx.QueryArgs().VisitAll(visit)
	if !found {
		ctx.PostArgs().VisitAll(visit)
	}
	return found
}
