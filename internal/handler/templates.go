package handler

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the HTML pages. now is used by the timeago function.
func Templates(now func() time.Time) *template.Template {
	funcs := template.FuncMap{
		"timeago": func(s string) string { return timeAgo(s, now()) },
		"add":     func(a, b int) int { return a + b },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
