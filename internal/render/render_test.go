package render

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/tenant"
)

func passthroughAssets(ref domain.FileRef) string {
	if ref.IsZero() {
		return ""
	}
	return "https://cdn.example.com/assets/" + string(ref)
}

func TestRendererRender(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/hello.html": &fstest.MapFile{Data: []byte(`{{define "hello"}}<p>{{.Name}}</p>{{end}}`)},
	}

	r, err := New(fsys)
	require.NoError(t, err)

	t.Run("writes rendered page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Render(rec, http.StatusOK, "hello", map[string]string{"Name": "Doces da Ana"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<p>Doces da Ana</p>", rec.Body.String())
	})

	t.Run("escapes injected markup", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Render(rec, http.StatusOK, "hello", map[string]string{"Name": "<script>alert(1)</script>"})

		assert.NotContains(t, rec.Body.String(), "<script>")
	})

	t.Run("missing template yields 500 without partial output", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.Render(rec, http.StatusOK, "nope", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{9.9, "R$ 9,90"},
		{12.5, "R$ 12,50"},
		{1234.56, "R$ 1.234,56"},
		{1234567.8, "R$ 1.234.567,80"},
		{-42, "-R$ 42,00"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatMoney(tc.in))
	}
}

func TestSanitizeHTML(t *testing.T) {
	got := string(SanitizeHTML(`<p>ola</p><script>alert(1)</script><img src="x" onerror="alert(1)">`))

	assert.Contains(t, got, "<p>ola</p>")
	assert.NotContains(t, got, "script")
	assert.NotContains(t, got, "onerror")
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(rec, "success", "Categoria salva!")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	flash := PopFlash(rec2, req)
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Equal(t, "Categoria salva!", flash.Message)

	// Pop clears the cookie.
	cleared := false
	for _, c := range rec2.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestPopFlashNoCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Nil(t, PopFlash(rec, req))
}

func TestNewStoreView(t *testing.T) {
	store := &domain.Store{
		ID:       "7",
		Name:     "Doces da Ana",
		Slug:     "doces",
		Email:    "ana@example.com",
		WhatsApp: "(11) 98888-7777",
		Logo:     "logo-id",
	}
	tc := tenant.NewContext(store, tenant.SourcePathSlug)

	v := NewStoreView(tc, passthroughAssets)

	assert.Equal(t, "/doces", v.BasePath)
	assert.Equal(t, "https://cdn.example.com/assets/logo-id", v.LogoURL)
	assert.Equal(t, "https://wa.me/5511988887777", v.WhatsAppURL)
	assert.Equal(t, domain.DefaultPrimaryColor, v.PrimaryColor)
	assert.Equal(t, 16, v.BaseFontSize)
	assert.Equal(t, "Nossos Produtos", v.ProductsTitle)
	assert.Equal(t, tenant.ParseLayout(domain.FallbackLayoutOrder), v.Layout)
}

func TestNewProductCard(t *testing.T) {
	t.Run("uses featured image and formats price", func(t *testing.T) {
		p := &domain.Product{Name: "Brigadeiro", Slug: "brigadeiro", Price: 4.5, Stock: 10, FeaturedImage: "img-1"}
		card := NewProductCard(p, "/doces", passthroughAssets)

		assert.Equal(t, "/doces/produto/brigadeiro", card.URL)
		assert.Equal(t, "https://cdn.example.com/assets/img-1", card.ImageURL)
		assert.Equal(t, "R$ 4,50", card.PriceLabel)
		assert.False(t, card.SoldOut)
	})

	t.Run("placeholder when no image", func(t *testing.T) {
		p := &domain.Product{Name: "Beijinho", Slug: "beijinho"}
		card := NewProductCard(p, "", passthroughAssets)

		assert.Equal(t, PlaceholderImage, card.ImageURL)
	})

	t.Run("zero stock is sold out unless on request", func(t *testing.T) {
		soldOut := NewProductCard(&domain.Product{Slug: "a"}, "", passthroughAssets)
		assert.True(t, soldOut.SoldOut)

		onRequest := NewProductCard(&domain.Product{Slug: "b", OnRequest: true}, "", passthroughAssets)
		assert.False(t, onRequest.SoldOut)
	})
}

func TestNewProductPage(t *testing.T) {
	t.Run("gallery skips duplicates and empty refs", func(t *testing.T) {
		p := &domain.Product{
			Slug:          "bolo",
			FeaturedImage: "img-1",
			Image1:        "img-1",
			Image2:        "img-2",
		}
		page := NewProductPage(p, "", passthroughAssets)

		require.Len(t, page.Gallery, 2)
		assert.Equal(t, "https://cdn.example.com/assets/img-1", page.Gallery[0])
	})

	t.Run("variant without photo falls back to first gallery image", func(t *testing.T) {
		p := &domain.Product{
			Slug:          "bolo",
			FeaturedImage: "img-1",
			Variants: []domain.Variant{
				{Name: "Chocolate", Photo: "img-v"},
				{Name: "Morango"},
			},
		}
		page := NewProductPage(p, "", passthroughAssets)

		require.Len(t, page.Variants, 2)
		assert.Equal(t, "https://cdn.example.com/assets/img-v", page.Variants[0].PhotoURL)
		assert.Equal(t, "https://cdn.example.com/assets/img-1", page.Variants[1].PhotoURL)
	})

	t.Run("empty product gets placeholder gallery", func(t *testing.T) {
		page := NewProductPage(&domain.Product{Slug: "x"}, "", passthroughAssets)
		assert.Equal(t, []string{PlaceholderImage}, page.Gallery)
	})
}

func TestNewPostPage(t *testing.T) {
	created := domain.Timestamp{Time: time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)}
	p := &domain.Post{
		Title:     "Novidades de marco",
		Slug:      "novidades-de-marco",
		Content:   `<p>texto</p><script>x()</script>`,
		CreatedAt: &created,
	}

	page := NewPostPage(p, "/doces", passthroughAssets)

	assert.Equal(t, "/doces/post/novidades-de-marco", page.URL)
	assert.Equal(t, "09/03/2025", page.DateLabel)
	assert.Contains(t, string(page.Content), "<p>texto</p>")
	assert.NotContains(t, string(page.Content), "script")
}
