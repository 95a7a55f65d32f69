package domain

import (
	"context"
	"time"
)

// Default presentation values seeded at signup and applied whenever a store
// record comes back with the corresponding field unset.
const (
	DefaultPrimaryColor    = "#db2777"
	DefaultTitleColor      = "#111827"
	DefaultTextColor       = "#374151"
	DefaultBackgroundColor = "#ffffff"
	DefaultBaseFontSize    = 16
	DefaultTitleFont       = "Poppins"
	DefaultBodyFont        = "Inter"

	// SeedLayoutOrder is written on the store record at signup.
	SeedLayoutOrder = "banner,busca,categorias,produtos,novidades,footer"

	// FallbackLayoutOrder is applied at resolution time when a store has no
	// usable layout order. It enables every section; per-section hide flags
	// still apply.
	FallbackLayoutOrder = "banner,busca,categorias,produtos,banners_menores,novidades,blog,footer"
)

// SectionVocabulary is the fixed set of page section names a layout order
// may reference. Unknown names are dropped when the order is parsed.
var SectionVocabulary = map[string]struct{}{
	"banner":          {},
	"busca":           {},
	"categorias":      {},
	"produtos":        {},
	"banners_menores": {},
	"novidades":       {},
	"blog":            {},
	"footer":          {},
}

// Store is one storefront tenant. Field tags follow the external content
// store's collection schema, which predates this service and is fixed.
type Store struct {
	ID           ID         `json:"id"`
	Status       string     `json:"status,omitempty"`
	Name         string     `json:"nome"`
	Slug         string     `json:"slug"`
	Domain       string     `json:"dominio,omitempty"`
	CustomDomain string     `json:"dominio_proprio,omitempty"`
	Email        string     `json:"email"`
	WhatsApp     string     `json:"whatsapp_comercial,omitempty"`
	PasswordHash string     `json:"senha_admin,omitempty"`
	ResetToken   string     `json:"reset_token,omitempty"`
	ResetExpires *Timestamp `json:"reset_expires,omitempty"`

	PrimaryColor    string   `json:"cor_primaria,omitempty"`
	TitleColor      string   `json:"cor_titulo,omitempty"`
	TextColor       string   `json:"cor_texto,omitempty"`
	BackgroundColor string   `json:"cor_fundo,omitempty"`
	BaseFontSize    Quantity `json:"font_tamanho_base,omitempty"`
	TitleFont       string   `json:"font_titulo,omitempty"`
	BodyFont        string   `json:"font_corpo,omitempty"`
	LayoutOrder     string   `json:"layout_order,omitempty"`

	Logo             FileRef `json:"logo,omitempty"`
	Banner1          FileRef `json:"bannerprincipal1,omitempty"`
	Banner2          FileRef `json:"bannerprincipal2,omitempty"`
	SmallBanner1     FileRef `json:"bannermenor1,omitempty"`
	SmallBanner2     FileRef `json:"bannermenor2,omitempty"`
	Banner1Link      string  `json:"linkbannerprincipal1,omitempty"`
	Banner2Link      string  `json:"linkbannerprincipal2,omitempty"`
	SmallBanner1Link string  `json:"linkbannermenor1,omitempty"`
	SmallBanner2Link string  `json:"linkbannermenor2,omitempty"`

	Phrase1 string `json:"frase1,omitempty"`
	Phrase2 string `json:"frase2,omitempty"`
	Phrase3 string `json:"frase3,omitempty"`

	ProductsTitle    string `json:"titulo_produtos,omitempty"`
	HideProducts     bool   `json:"ocultar_produtos,omitempty"`
	CategoriesTitle  string `json:"titulo_categorias,omitempty"`
	HideCategories   bool   `json:"ocultar_categorias,omitempty"`
	NewsTitle        string `json:"titulo_novidades,omitempty"`
	HideNews         bool   `json:"ocultar_novidades,omitempty"`
	BlogTitle        string `json:"titulo_blog,omitempty"`
	HideBlog         bool   `json:"ocultar_blog,omitempty"`
	HideSearch       bool   `json:"ocultar_busca,omitempty"`
	HideBanner       bool   `json:"ocultar_banner,omitempty"`
	HideSmallBanners bool   `json:"ocultar_banners_menores,omitempty"`
}

// HasValidResetToken reports whether the store carries a reset token that
// has not yet expired at the given instant.
func (s *Store) HasValidResetToken(now time.Time) bool {
	if s.ResetToken == "" || s.ResetExpires == nil || s.ResetExpires.IsZero() {
		return false
	}
	return now.Before(s.ResetExpires.Time)
}

// StoreSettings is the admin-editable presentation subset of a store record.
// Uploaded file IDs are carried separately so a save without new uploads
// never clears existing images.
type StoreSettings struct {
	Name             string `json:"nome"`
	WhatsApp         string `json:"whatsapp_comercial"`
	PrimaryColor     string `json:"cor_primaria"`
	TitleColor       string `json:"cor_titulo"`
	TextColor        string `json:"cor_texto"`
	BackgroundColor  string `json:"cor_fundo"`
	BaseFontSize     string `json:"font_tamanho_base"`
	TitleFont        string `json:"font_titulo"`
	BodyFont         string `json:"font_corpo"`
	LayoutOrder      string `json:"layout_order"`
	Banner1Link      string `json:"linkbannerprincipal1"`
	Banner2Link      string `json:"linkbannerprincipal2"`
	SmallBanner1Link string `json:"linkbannermenor1"`
	SmallBanner2Link string `json:"linkbannermenor2"`
	Phrase1          string `json:"frase1"`
	Phrase2          string `json:"frase2"`
	Phrase3          string `json:"frase3"`
	ProductsTitle    string `json:"titulo_produtos"`
	HideProducts     bool   `json:"ocultar_produtos"`
	CategoriesTitle  string `json:"titulo_categorias"`
	HideCategories   bool   `json:"ocultar_categorias"`
	NewsTitle        string `json:"titulo_novidades"`
	HideNews         bool   `json:"ocultar_novidades"`
	BlogTitle        string `json:"titulo_blog"`
	HideBlog         bool   `json:"ocultar_blog"`
	HideSearch       bool   `json:"ocultar_busca"`
	HideBanner       bool   `json:"ocultar_banner"`
	HideSmallBanners bool   `json:"ocultar_banners_menores"`

	// Files maps store image fields (logo, bannerprincipal1, ...) to freshly
	// uploaded file IDs.
	Files map[string]string `json:"-"`
}

// StoreRepository is the tenant directory: every lookup scheme the resolver
// uses, plus the mutations the signup and credential flows need.
type StoreRepository interface {
	GetBySlug(ctx context.Context, slug string) (*Store, error)
	GetByCustomDomain(ctx context.Context, host string) (*Store, error)
	GetByDomain(ctx context.Context, host string) (*Store, error)
	GetByEmail(ctx context.Context, email string) (*Store, error)
	GetByResetToken(ctx context.Context, token string) (*Store, error)
	Create(ctx context.Context, s *Store) (*Store, error)
	UpdateSettings(ctx context.Context, id ID, settings *StoreSettings) error
	SetResetToken(ctx context.Context, id ID, token string, expires time.Time) error
	SetPassword(ctx context.Context, id ID, passwordHash string) error
}
