// Package web embeds the HTML templates of the booking pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses the page templates with the given helper functions.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("pages").Funcs(funcs).ParseFS(files, "templates/*.tmpl")
}
