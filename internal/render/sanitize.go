package render

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// ugcPolicy allows the formatting tags store owners produce in the blog
// editor while stripping scripts and event handlers.
var ugcPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").OnElements("p", "span", "img")
	return p
}()

// SanitizeHTML cleans store-authored HTML and marks the result safe for
// direct template insertion.
func SanitizeHTML(raw string) template.HTML {
	return template.HTML(ugcPolicy.Sanitize(raw)) //nolint:gosec // sanitized just above
}
