package router_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"golang.org/x/net/html"

	"eventshare-web/pkg/client/api"
	"eventshare-web/pkg/common/config"
	pages "eventshare-web/pkg/core/app"
	"eventshare-web/pkg/core/transfer"
	"eventshare-web/pkg/core/transfer/repository/dao/impl"
	"eventshare-web/pkg/web/handler"
	"eventshare-web/pkg/web/router"
)

const (
	oneEvent  = `[{"id":1,"title":"Go meetup","eventDate":"2026-11-01T18:30:00","participantCount":0,"creator":{"id":7,"username":"alice"}}]`
	onePhoto  = `[{"id":9,"filename":"a.jpg","originalFilename":"a.jpg","caption":"hi","fileSize":10,"contentType":"image/jpeg","uploadedAt":"2026-10-01T10:00:00","eventId":1,"uploadedBy":{"id":7,"username":"alice"}}]`
	loginBody = `{"token":"tkn","type":"Bearer","id":7,"username":"alice"}`
)

// fakeBackend 按路径返回固定 JSON
func fakeBackend(t *testing.T, events string) *httptest.Server {
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/api/events", reply(events))
	mux.HandleFunc("/api/categories", reply(`[{"id":1,"name":"Tech"}]`))
	mux.HandleFunc("/api/events/1/participation-status", reply(`{"paticipating":false}`))
	mux.HandleFunc("/api/photos/event/1", reply(onePhoto))
	mux.HandleFunc("/api/auth/login", reply(loginBody))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, events string, checks ...handler.ComponentCheck) *server.Hertz {
	backend := fakeBackend(t, events)
	cfg := config.Default()
	cfg.Backend.BaseURL = backend.URL

	client, err := api.New(cfg.Backend)
	assert.Nil(t, err)
	ch, err := impl.OpenBadger("")
	assert.Nil(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	p := pages.NewPages(client, transfer.NewStore(ch, time.Minute), pages.Options{TransientDelay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := server.New()
	router.RegisterAPIs(ctx, h, cfg, router.Deps{Pages: p, Photos: client, Checks: checks})
	return h
}

// browser 记住页面 cookie
type browser struct {
	t       *testing.T
	h       *server.Hertz
	cookies map[string]string
}

func newBrowser(t *testing.T, h *server.Hertz) *browser {
	return &browser{t: t, h: h, cookies: map[string]string{}}
}

func (b *browser) headers(extra ...ut.Header) []ut.Header {
	hs := append([]ut.Header{{Key: "User-Agent", Value: "test-browser"}}, extra...)
	if len(b.cookies) > 0 {
		pairs := make([]string, 0, len(b.cookies))
		for k, v := range b.cookies {
			pairs = append(pairs, k+"="+v)
		}
		hs = append(hs, ut.Header{Key: "Cookie", Value: strings.Join(pairs, "; ")})
	}
	return hs
}

func (b *browser) remember(resp *protocol.Response) {
	for _, name := range []string{"es_page", "es_gallery"} {
		c := protocol.AcquireCookie()
		c.SetKey(name)
		if resp.Header.Cookie(c) {
			b.cookies[name] = string(c.Value())
		}
		protocol.ReleaseCookie(c)
	}
}

func (b *browser) get(path string) *protocol.Response {
	w := ut.PerformRequest(b.h.Engine, "GET", path, nil, b.headers()...)
	resp := w.Result()
	b.remember(resp)
	return resp
}

// post 提交表单，返回 303 跳转的目标
func (b *browser) post(path string, form url.Values) string {
	body := form.Encode()
	w := ut.PerformRequest(b.h.Engine, "POST", path,
		&ut.Body{Body: strings.NewReader(body), Len: len(body)},
		b.headers(ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"})...)
	resp := w.Result()
	b.remember(resp)
	assert.DeepEqual(b.t, http.StatusSeeOther, resp.StatusCode())
	loc, err := url.Parse(string(resp.Header.Peek("Location")))
	assert.Nil(b.t, err)
	return loc.RequestURI()
}

func (b *browser) page(path string) *html.Node {
	resp := b.get(path)
	assert.DeepEqual(b.t, http.StatusOK, resp.StatusCode())
	doc, err := html.Parse(strings.NewReader(string(resp.Body())))
	assert.Nil(b.t, err)
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func find(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, find(c, match)...)
	}
	return out
}

func byID(doc *html.Node, id string) bool {
	return len(find(doc, func(n *html.Node) bool { return attr(n, "id") == id })) > 0
}

func countClass(doc *html.Node, class string) int {
	return len(find(doc, func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}))
}

func TestHealthCheckRoute(t *testing.T) {
	h := newServer(t, `[]`, handler.ComponentCheck{
		Name: "backend", IsCore: true, Check: func(context.Context) error { return nil },
	})
	b := newBrowser(t, h)
	assert.DeepEqual(t, http.StatusOK, b.get("/health").StatusCode())
}

func TestHealthCheckDegraded(t *testing.T) {
	h := newServer(t, `[]`, handler.ComponentCheck{
		Name: "backend", IsCore: true, Check: func(context.Context) error { return errors.New("down") },
	})
	b := newBrowser(t, h)
	assert.DeepEqual(t, http.StatusServiceUnavailable, b.get("/health").StatusCode())
}

func TestCatalogEmptyState(t *testing.T) {
	b := newBrowser(t, newServer(t, `[]`))
	doc := b.page("/")
	assert.True(t, byID(doc, "no-events"))
	assert.True(t, byID(doc, "login-form"))
	assert.False(t, byID(doc, "event-form"))
	assert.NotEqual(t, "", b.cookies["es_page"])
}

func TestLoginAndLogoutToggleAffordances(t *testing.T) {
	b := newBrowser(t, newServer(t, oneEvent))
	doc := b.page("/")
	assert.DeepEqual(t, 0, countClass(doc, "participate"))
	assert.DeepEqual(t, 1, countClass(doc, "gallery"))

	assert.DeepEqual(t, "/", b.post("/auth/login", url.Values{"username": {"alice"}, "password": {"pw"}}))
	doc = b.page("/")
	assert.True(t, byID(doc, "user-info"))
	assert.True(t, byID(doc, "event-form"))
	assert.DeepEqual(t, 1, countClass(doc, "participate"))
	assert.DeepEqual(t, 1, countClass(doc, "edit"))
	assert.DeepEqual(t, 1, countClass(doc, "delete"))

	b.post("/auth/logout", nil)
	doc = b.page("/")
	assert.True(t, byID(doc, "login-form"))
	assert.False(t, byID(doc, "event-form"))
	assert.DeepEqual(t, 0, countClass(doc, "participate"))
	assert.DeepEqual(t, 0, countClass(doc, "edit"))
	assert.DeepEqual(t, 0, countClass(doc, "delete"))
}

func TestGalleryWithoutLogin(t *testing.T) {
	b := newBrowser(t, newServer(t, oneEvent))
	b.page("/")

	loc := b.post("/events/1/gallery", nil)
	assert.True(t, strings.HasPrefix(loc, "/gallery?handoff="))

	doc := b.page(loc)
	assert.True(t, byID(doc, "auth-required"))
	assert.False(t, byID(doc, "select-form"))
	photos := find(doc, func(n *html.Node) bool { return attr(n, "data-photo-id") == "9" })
	assert.DeepEqual(t, 1, len(photos))
	assert.DeepEqual(t, 0, countClass(doc, "delete-photo"))
}

func TestGalleryCarriesSession(t *testing.T) {
	b := newBrowser(t, newServer(t, oneEvent))
	b.page("/")
	b.post("/auth/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	b.page("/")

	loc := b.post("/events/1/gallery", nil)
	doc := b.page(loc)
	assert.True(t, byID(doc, "select-form"))
	assert.False(t, byID(doc, "auth-required"))
	assert.DeepEqual(t, 1, countClass(doc, "delete-photo"))

	// 重新加载同一个令牌得到同样的页面
	doc = b.page(loc)
	assert.True(t, byID(doc, "select-form"))
}

func TestGallerySelectRejectsNonImages(t *testing.T) {
	b := newBrowser(t, newServer(t, oneEvent))
	b.page("/")
	b.post("/auth/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	b.page("/")
	b.page(b.post("/events/1/gallery", nil))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", "notes.txt")
	assert.Nil(t, err)
	_, _ = fw.Write([]byte("plain text"))
	fw, err = mw.CreateFormFile("files", "dot.png")
	assert.Nil(t, err)
	assert.Nil(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	assert.Nil(t, mw.Close())

	w := ut.PerformRequest(b.h.Engine, "POST", "/gallery/select",
		&ut.Body{Body: bytes.NewReader(body.Bytes()), Len: body.Len()},
		b.headers(ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})...)
	assert.DeepEqual(t, http.StatusSeeOther, w.Result().StatusCode())

	doc := b.page("/gallery")
	assert.True(t, byID(doc, "upload-form"))
	thumbs := find(doc, func(n *html.Node) bool { return n.Data == "figure" && attr(n, "data-photo-id") == "" })
	assert.DeepEqual(t, 1, len(thumbs))
	banner := find(doc, func(n *html.Node) bool { return attr(n, "id") == "status" })
	assert.DeepEqual(t, 1, len(banner))
	assert.True(t, strings.Contains(banner[0].FirstChild.Data, "notes.txt"))
}
