// Package web embeds the default view tree so a bare binary can serve
// every site.  Operators override it with `views.dir`, which must have the
// same Views/<segment>/<group>/<name>.html shape.  The all: prefix keeps
// _Layout.html, which a plain directory embed would skip.
package web

import "embed"

//go:embed all:Views
var FS embed.FS
