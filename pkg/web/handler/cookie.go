package handler

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
)

const (
	catalogCookie = "es_page"
	galleryCookie = "es_gallery"
)

// CookieOptions 页面 cookie 属性
type CookieOptions struct {
	Secure bool
}

func readCookie(c *app.RequestContext, name string) string {
	return string(c.Cookie(name))
}

// 会话级 cookie，关闭浏览器即失效
func writeCookie(c *app.RequestContext, opts CookieOptions, name, value string) {
	c.SetCookie(name, value, 0, "/", "", protocol.CookieSameSiteLaxMode, opts.Secure, true)
}
