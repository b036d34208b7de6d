// Package web embeds the frontend's templates and static assets.
package web

import "embed"

const TemplatesDir = "templates"

//go:embed templates/*.html static
var Files embed.FS
