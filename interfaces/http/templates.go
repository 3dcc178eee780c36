package http

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"comma": humanize.Comma,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02")
	},
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"seconds": func(s int64) string {
		return humanize.Comma(s) + "s"
	},
}

// ParseTemplates parses the embedded pages
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
}

// LoadTemplates installs the embedded pages on the router
func LoadTemplates(router *gin.Engine) error {
	tmpl, err := ParseTemplates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}
