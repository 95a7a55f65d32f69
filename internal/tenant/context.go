package tenant

import (
	"strings"

	"github.com/leanttro/storefront/internal/domain"
)

// Source names the addressing scheme that resolved a request's store.
type Source string

const (
	SourceNone         Source = "none"
	SourceCustomDomain Source = "custom_domain"
	SourceSubdomain    Source = "subdomain"
	SourcePathSlug     Source = "path_slug"
)

// Context is the per-request tenant state. It is built once by the
// resolver, carried in the request context, and never cached across
// requests.
type Context struct {
	Store *domain.Store

	// Slug is the active addressing token. It is the store's slug even
	// when resolution happened by domain, so link building is uniform.
	Slug string

	// BasePath prefixes every in-page link: "/{slug}" when the store was
	// addressed by path, "" when addressed by its own domain.
	BasePath string

	Source Source

	// Layout is the parsed, validated section order for page rendering.
	Layout []string
}

// Resolved reports whether a store was found for the request.
func (c *Context) Resolved() bool {
	return c != nil && c.Store != nil
}

// NewContext normalizes the store's presentation config and derives the
// base path for the addressing scheme that matched.
func NewContext(store *domain.Store, source Source) *Context {
	applyDefaults(store)

	basePath := ""
	if source == SourcePathSlug {
		basePath = "/" + store.Slug
	}

	return &Context{
		Store:    store,
		Slug:     store.Slug,
		BasePath: basePath,
		Source:   source,
		Layout:   ParseLayout(store.LayoutOrder),
	}
}

// applyDefaults fills any unset presentation field with its documented
// default so templates never see an empty value.
func applyDefaults(store *domain.Store) {
	if store.LayoutOrder == "" {
		store.LayoutOrder = domain.FallbackLayoutOrder
	}
	if store.PrimaryColor == "" {
		store.PrimaryColor = domain.DefaultPrimaryColor
	}
	if store.TitleColor == "" {
		store.TitleColor = domain.DefaultTitleColor
	}
	if store.TextColor == "" {
		store.TextColor = domain.DefaultTextColor
	}
	if store.BackgroundColor == "" {
		store.BackgroundColor = domain.DefaultBackgroundColor
	}
	if store.BaseFontSize == 0 {
		store.BaseFontSize = domain.DefaultBaseFontSize
	}
	if store.TitleFont == "" {
		store.TitleFont = domain.DefaultTitleFont
	}
	if store.BodyFont == "" {
		store.BodyFont = domain.DefaultBodyFont
	}
}

// ParseLayout turns a comma-separated layout order into an ordered section
// list, dropping unknown names. A malformed or empty order falls back to
// the full default layout.
func ParseLayout(order string) []string {
	var sections []string
	for _, part := range strings.Split(order, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if _, ok := domain.SectionVocabulary[name]; ok {
			sections = append(sections, name)
		}
	}

	if len(sections) == 0 {
		return ParseLayout(domain.FallbackLayoutOrder)
	}
	return sections
}
