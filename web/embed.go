// Package web embeds the page templates and static assets for
// single-binary distribution.
package web

import "embed"

// Assets contains the HTML templates and the static stylesheet.
//
//go:embed templates static
var Assets embed.FS
