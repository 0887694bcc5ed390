package view

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"eventshare-web/pkg/core/catalog"
	"eventshare-web/pkg/core/gallery"
	"eventshare-web/pkg/core/model"
	"eventshare-web/pkg/core/profile"
	"eventshare-web/pkg/core/status"
)

//go:embed templates/*.html
var templateFS embed.FS

// Banner 提示条
type Banner struct {
	Text  string
	Class string
}

func BannerOf(p *status.Presenter) *Banner {
	msg, ok := p.Transient()
	if !ok {
		return nil
	}
	return &Banner{Text: msg.Text, Class: msg.Severity.String()}
}

type CatalogData struct {
	Session       model.Session
	Banner        *Banner
	Render        catalog.Render
	Loaded        bool
	Upcoming      bool
	Form          model.EventForm
	FieldErrors   model.FieldErrorSet
	EditingID     int64
	CancelVisible bool
	Categories    []model.Category
}

type MeData struct {
	Session model.Session
	Banner  *Banner
	View    profile.View
	Loaded  bool
}

type GalleryData struct {
	Session     model.Session
	Banner      *Banner
	EventID     int64
	EventTitle  string
	CanUpload   bool
	Thumbs      []gallery.Thumb
	Caption     string
	Photos      []gallery.PhotoView
	Loaded      bool
	Done, Total int
}

var funcs = template.FuncMap{
	"datetime": func(t model.LocalTime) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"expiry": func(t *time.Time) string {
		if t == nil {
			return "unknown"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"capacity": func(c *int) string {
		if c == nil {
			return "unlimited"
		}
		return fmt.Sprint(*c)
	},
	"size": func(n int64) string {
		switch {
		case n >= 1<<20:
			return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
		case n >= 1<<10:
			return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
		}
		return fmt.Sprintf("%d B", n)
	},
	"invalid": func(errs model.FieldErrorSet, field string) bool {
		_, ok := errs[field]
		return ok
	},
	"fieldError": func(errs model.FieldErrorSet, field string) string {
		return errs[field]
	},
	"selected": func(current string, id int64) bool {
		return current == fmt.Sprint(id)
	},
	"percent": func(done, total int) int {
		if total == 0 {
			return 0
		}
		return done * 100 / total
	},
	// 预览图为本地生成的 data URI
	"dataURI": func(s string) template.URL {
		return template.URL(s)
	},
}

// Templates 解析内嵌模板
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
