// Package slug generates URL path segments from human-entered names.
package slug

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes to NFKD and drops combining marks, so "Açaí"
// folds to "Acai".
var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make builds a slug: accents folded, lowercased, spaces and slashes turned
// into hyphens, dots dropped, anything else non-alphanumeric dropped.
func Make(text string) string {
	if text == "" {
		return ""
	}

	folded, _, err := transform.String(stripAccents, text)
	if err != nil {
		folded = text
	}

	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '/' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}

	return strings.Trim(collapseHyphens(b.String()), "-")
}

// MakeUnique appends a short random suffix for collision-prone names such
// as product slugs.
func MakeUnique(text string) string {
	base := Make(text)
	suffix := uuid.NewString()[:4]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
