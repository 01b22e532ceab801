// Package templates embeds the site's HTML templates.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Load parses every page and partial into one set. Pages are looked up by
// file name, e.g. "articles.html".
func Load(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.html")
}
