// Package web embeds the viewer's static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// Assets returns the embedded static assets filesystem.
// The returned FS has static/ as its root, so files are accessed
// directly (e.g., "style.css" not "static/style.css").
func Assets() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
