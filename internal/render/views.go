package render

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/tenant"
)

// PlaceholderImage is shown wherever a product has no usable image.
const PlaceholderImage = "https://placehold.co/600x600?text=Sem+Imagem"

// AssetFunc resolves a stored file reference to a browser-loadable URL.
type AssetFunc func(domain.FileRef) string

// StoreView is the presentation state shared by every page of one store.
type StoreView struct {
	ID       string
	Name     string
	Slug     string
	BasePath string
	Email    string
	WhatsApp string

	// WhatsAppURL is a wa.me link, empty when no commercial number is set.
	WhatsAppURL string

	PrimaryColor    string
	TitleColor      string
	TextColor       string
	BackgroundColor string
	BaseFontSize    int
	TitleFont       string
	BodyFont        string

	LogoURL         string
	Banner1URL      string
	Banner2URL      string
	SmallBanner1URL string
	SmallBanner2URL string

	Banner1Link      string
	Banner2Link      string
	SmallBanner1Link string
	SmallBanner2Link string

	Phrase1 string
	Phrase2 string
	Phrase3 string

	ProductsTitle   string
	CategoriesTitle string
	NewsTitle       string
	BlogTitle       string

	HideProducts     bool
	HideCategories   bool
	HideNews         bool
	HideBlog         bool
	HideSearch       bool
	HideBanner       bool
	HideSmallBanners bool

	Layout []string
}

// NewStoreView projects a resolved tenant into template-ready values.
func NewStoreView(tc *tenant.Context, assets AssetFunc) *StoreView {
	s := tc.Store

	v := &StoreView{
		ID:       string(s.ID),
		Name:     s.Name,
		Slug:     tc.Slug,
		BasePath: tc.BasePath,
		Email:    s.Email,
		WhatsApp: s.WhatsApp,

		WhatsAppURL: whatsAppURL(s.WhatsApp),

		PrimaryColor:    s.PrimaryColor,
		TitleColor:      s.TitleColor,
		TextColor:       s.TextColor,
		BackgroundColor: s.BackgroundColor,
		BaseFontSize:    int(s.BaseFontSize),
		TitleFont:       s.TitleFont,
		BodyFont:        s.BodyFont,

		LogoURL:         assets(s.Logo),
		Banner1URL:      assets(s.Banner1),
		Banner2URL:      assets(s.Banner2),
		SmallBanner1URL: assets(s.SmallBanner1),
		SmallBanner2URL: assets(s.SmallBanner2),

		Banner1Link:      s.Banner1Link,
		Banner2Link:      s.Banner2Link,
		SmallBanner1Link: s.SmallBanner1Link,
		SmallBanner2Link: s.SmallBanner2Link,

		Phrase1: s.Phrase1,
		Phrase2: s.Phrase2,
		Phrase3: s.Phrase3,

		ProductsTitle:   fallback(s.ProductsTitle, "Nossos Produtos"),
		CategoriesTitle: fallback(s.CategoriesTitle, "Categorias"),
		NewsTitle:       fallback(s.NewsTitle, "Novidades"),
		BlogTitle:       fallback(s.BlogTitle, "Blog"),

		HideProducts:     s.HideProducts,
		HideCategories:   s.HideCategories,
		HideNews:         s.HideNews,
		HideBlog:         s.HideBlog,
		HideSearch:       s.HideSearch,
		HideBanner:       s.HideBanner,
		HideSmallBanners: s.HideSmallBanners,

		Layout: tc.Layout,
	}

	return v
}

// CategoryView is one category chip on the storefront.
type CategoryView struct {
	ID   string
	Name string
	Slug string
	URL  string
}

func NewCategoryView(c *domain.Category, basePath string) CategoryView {
	return CategoryView{
		ID:   string(c.ID),
		Name: c.Name,
		Slug: c.Slug,
		URL:  basePath + "/?categoria=" + url.QueryEscape(string(c.ID)),
	}
}

// ProductCard is one product tile on a listing.
type ProductCard struct {
	ID         string
	Name       string
	Slug       string
	URL        string
	ImageURL   string
	PriceLabel string
	Price      float64
	OnRequest  bool
	SoldOut    bool
	Urgency    string
	CategoryID string
}

func NewProductCard(p *domain.Product, basePath string, assets AssetFunc) ProductCard {
	return ProductCard{
		ID:         string(p.ID),
		Name:       p.Name,
		Slug:       p.Slug,
		URL:        basePath + "/produto/" + url.PathEscape(p.Slug),
		ImageURL:   productImage(p, assets),
		PriceLabel: FormatMoney(float64(p.Price)),
		Price:      float64(p.Price),
		OnRequest:  p.OnRequest,
		SoldOut:    !p.OnRequest && p.Stock <= 0,
		Urgency:    p.Urgency,
		CategoryID: string(p.CategoryID),
	}
}

// VariantView is one selectable product variation.
type VariantView struct {
	Name     string
	PhotoURL string
}

// ProductPage is the full detail view of one product.
type ProductPage struct {
	ProductCard
	Description string
	Stock       int
	Origin      string
	Gallery     []string
	Variants    []VariantView
}

// NewProductPage assembles the detail view. The gallery collects every
// distinct product image and falls back to a placeholder when the product
// has none; variants without a photo reuse the first gallery image.
func NewProductPage(p *domain.Product, basePath string, assets AssetFunc) *ProductPage {
	var gallery []string
	for _, ref := range []domain.FileRef{p.FeaturedImage, p.Image1, p.Image2} {
		u := assets(ref)
		if u == "" || contains(gallery, u) {
			continue
		}
		gallery = append(gallery, u)
	}
	if len(gallery) == 0 {
		gallery = []string{PlaceholderImage}
	}

	variants := make([]VariantView, 0, len(p.Variants))
	for _, v := range p.Variants {
		photo := assets(v.Photo)
		if photo == "" {
			photo = gallery[0]
		}
		variants = append(variants, VariantView{Name: v.Name, PhotoURL: photo})
	}

	return &ProductPage{
		ProductCard: NewProductCard(p, basePath, assets),
		Description: p.Description,
		Stock:       int(p.Stock),
		Origin:      p.Origin,
		Gallery:     gallery,
		Variants:    variants,
	}
}

// PostCard is one blog entry on a listing.
type PostCard struct {
	ID        string
	Title     string
	Slug      string
	URL       string
	CoverURL  string
	Summary   string
	DateLabel string
}

func NewPostCard(p *domain.Post, basePath string, assets AssetFunc) PostCard {
	dateLabel := ""
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		dateLabel = p.CreatedAt.Format("02/01/2006")
	}
	return PostCard{
		ID:        string(p.ID),
		Title:     p.Title,
		Slug:      p.Slug,
		URL:       basePath + "/post/" + url.PathEscape(p.Slug),
		CoverURL:  assets(p.Cover),
		Summary:   p.Summary,
		DateLabel: dateLabel,
	}
}

// PostPage is the full view of one blog entry. Content is store-authored
// HTML and is sanitized before being marked safe for the template.
type PostPage struct {
	PostCard
	Content template.HTML
}

func NewPostPage(p *domain.Post, basePath string, assets AssetFunc) *PostPage {
	return &PostPage{
		PostCard: NewPostCard(p, basePath, assets),
		Content:  SanitizeHTML(p.Content),
	}
}

func productImage(p *domain.Product, assets AssetFunc) string {
	for _, ref := range []domain.FileRef{p.FeaturedImage, p.Image1, p.Image2} {
		if u := assets(ref); u != "" {
			return u
		}
	}
	return PlaceholderImage
}

func whatsAppURL(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, "55") {
		digits = "55" + digits
	}
	return "https://wa.me/" + digits
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
