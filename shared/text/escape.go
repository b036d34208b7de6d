// Package text turns untrusted post text into a safe stored form and splits
// stored text into segments for rendering.
//
// Stored text is escaped exactly once, at write time. Nothing in this package
// produces markup meant to be injected verbatim; renderers walk the segments
// and emit their own (escaped) output.
package text

import (
	"html"
	"strings"
)

// Replacement table matches what boards have historically stored, including
// the zero-padded &#039; for the apostrophe.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces the five HTML-significant characters. Applying it twice
// double-escapes '&', so callers escape once before persisting.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape. Renderers that escape on output use it so stored
// text is not shown double-escaped.
func Unescape(s string) string {
	return html.UnescapeString(s)
}
