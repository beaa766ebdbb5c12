// Package templates embeds the HTML pages. Every page is rendered through
// the "layout" template, which picks the body by the Page field.
package templates

import (
	"embed"
	"html/template"
	"time"
)

//go:embed *.html
var files embed.FS

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
	"excerpt": func(s string, n int) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "…"
	},
}

// Parse loads every embedded page.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.html")
}
