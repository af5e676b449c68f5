// Package web embeds the HTML templates and static assets served by the
// browser front end.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the static file system (stylesheets).
func StaticFS() fs.FS { return sub("static") }

// TemplatesFS returns the templates file system: layout.html plus one file
// per page.
func TemplatesFS() fs.FS { return sub("templates") }

// sub panics on error; the directories are embedded at build time.
func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: " + err.Error())
	}
	return f
}
