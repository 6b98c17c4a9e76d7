// Package web holds the HTML pages served by the experiment server.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded pages. Names are the file base names.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
