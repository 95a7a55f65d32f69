package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/render"
)

const recentPostCount = 3

type indexPage struct {
	page
	Categories     []render.CategoryView
	Products       []render.ProductCard
	Novelties      []render.ProductCard
	Posts          []render.PostCard
	Search         string
	ActiveCategory string
}

// Storefront renders a store's landing page. Catalog reads degrade to
// empty sections on upstream failure so the page always renders.
func (h *Handlers) Storefront(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	storeID := tc.Store.ID
	assets := h.assetURL()

	search := r.URL.Query().Get("busca")
	categoryID := r.URL.Query().Get("categoria")

	categories, err := h.repos.Categories().ListPublished(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Str("store", tc.Slug).Msg("category listing failed")
	}

	products, err := h.repos.Products().ListPublished(ctx, storeID, domain.ProductFilter{
		CategoryID: domain.ID(categoryID),
		Search:     search,
	})
	if err != nil {
		log.Warn().Err(err).Str("store", tc.Slug).Msg("product listing failed")
	}

	posts, err := h.repos.Posts().ListRecent(ctx, storeID, recentPostCount)
	if err != nil {
		log.Warn().Err(err).Str("store", tc.Slug).Msg("post listing failed")
	}

	data := indexPage{
		page:           h.storePage(w, r, tc),
		Search:         search,
		ActiveCategory: categoryID,
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, render.NewCategoryView(c, tc.BasePath))
	}
	for _, p := range products {
		card := render.NewProductCard(p, tc.BasePath, assets)
		data.Products = append(data.Products, card)
		if p.IsNovelty() {
			data.Novelties = append(data.Novelties, card)
		}
	}
	for _, p := range posts {
		data.Posts = append(data.Posts, render.NewPostCard(p, tc.BasePath, assets))
	}

	h.renderer.Render(w, http.StatusOK, "index", data)
}

type productPage struct {
	page
	Product *render.ProductPage
}

// ProductDetail renders one product.
func (h *Handlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	product, err := h.repos.Products().GetBySlug(r.Context(), tc.Store.ID, chi.URLParam(r, "slug"))
	if errors.Is(err, domain.ErrNotFound) {
		h.PageNotFound(w, r)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("product lookup failed")
		h.PageNotFound(w, r)
		return
	}

	data := productPage{
		page:    h.storePage(w, r, tc),
		Product: render.NewProductPage(product, tc.BasePath, h.assetURL()),
	}
	data.Title = product.Name + " - " + tc.Store.Name

	h.renderer.Render(w, http.StatusOK, "produto", data)
}

type postPage struct {
	page
	Post *render.PostPage
}

// PostDetail renders one blog entry.
func (h *Handlers) PostDetail(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	post, err := h.repos.Posts().GetBySlug(r.Context(), tc.Store.ID, chi.URLParam(r, "slug"))
	if errors.Is(err, domain.ErrNotFound) {
		h.PageNotFound(w, r)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("post lookup failed")
		h.PageNotFound(w, r)
		return
	}

	data := postPage{
		page: h.storePage(w, r, tc),
		Post: render.NewPostPage(post, tc.BasePath, h.assetURL()),
	}
	data.Title = post.Title + " - " + tc.Store.Name

	h.renderer.Render(w, http.StatusOK, "post", data)
}
