// Package web embeds the page templates, static assets and landing page chart data.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static showcase.yaml
var content embed.FS

// Templates returns the page templates with templates/ as root.
func Templates() (fs.FS, error) {
	return fs.Sub(content, "templates")
}

// Static returns the browser assets with static/ as root,
// so files are served as "/static/js/charts.js" -> "js/charts.js".
func Static() (fs.FS, error) {
	return fs.Sub(content, "static")
}

// Showcase returns the built-in landing page chart definitions.
func Showcase() (fs.File, error) {
	return content.Open("showcase.yaml")
}
