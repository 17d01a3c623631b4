// Package web embeds the HTML templates and static assets of the portal.
package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Mon Jan 2, 3:04 PM"
	timeLayout     = "3:04 PM"
)

// Templates parses every page template. Times are shown in loc.
func Templates(loc *time.Location) (*template.Template, error) {
	if loc == nil {
		loc = time.Local
	}
	return template.New("").Funcs(Funcs(loc)).ParseFS(templateFS, "templates/*.html")
}

// Funcs are the helpers available to templates
func Funcs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"datetime": func(v interface{}) string {
			switch t := v.(type) {
			case time.Time:
				return t.In(loc).Format(dateTimeLayout)
			case *time.Time:
				if t == nil {
					return ""
				}
				return t.In(loc).Format(dateTimeLayout)
			}
			return ""
		},
		"clock": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(loc).Format(timeLayout)
		},
		"date": func(d models.Date) string {
			return d.Format(dateLayout)
		},
		"roleLabel": func(r models.Role) string {
			return r.Label()
		},
		"json": func(v interface{}) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil
		},
		"inc": func(i int) int { return i + 1 },
		"hasString": func(list []string, v string) bool {
			for _, x := range list {
				if x == v {
					return true
				}
			}
			return false
		},
		"hasID": func(list []int64, v int64) bool {
			for _, x := range list {
				if x == v {
					return true
				}
			}
			return false
		},
	}
}

// Static serves the embedded assets
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
