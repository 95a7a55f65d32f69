package server

import (
	"net/http"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/content"
	"github.com/leanttro/storefront/internal/render"
	"github.com/leanttro/storefront/internal/server/middleware"
	"github.com/leanttro/storefront/internal/tenant"
)

// Handlers implements every page and form endpoint.
type Handlers struct {
	repos    *content.Repos
	auth     *auth.Service
	renderer *render.Renderer
}

func NewHandlers(repos *content.Repos, authSvc *auth.Service, renderer *render.Renderer) *Handlers {
	return &Handlers{
		repos:    repos,
		auth:     authSvc,
		renderer: renderer,
	}
}

// page is the view state every template starts from. Store is nil on
// platform pages.
type page struct {
	Store *render.StoreView
	Flash *render.Flash
	Title string
}

// assetURL resolves stored file references through the content client.
func (h *Handlers) assetURL() render.AssetFunc {
	return h.repos.Client().AssetURL
}

// storePage builds the common view state for a resolved store.
func (h *Handlers) storePage(w http.ResponseWriter, r *http.Request, tc *tenant.Context) page {
	return page{
		Store: render.NewStoreView(tc, h.assetURL()),
		Flash: render.PopFlash(w, r),
		Title: tc.Store.Name,
	}
}

// tenantCtx returns the resolved tenant; store routes are only reachable
// through the dispatcher, so a miss means a wiring bug, handled as 404.
func (h *Handlers) tenantCtx(w http.ResponseWriter, r *http.Request) (*tenant.Context, bool) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return tc, true
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// PageNotFound renders the store-styled 404 page.
func (h *Handlers) PageNotFound(w http.ResponseWriter, r *http.Request) {
	data := page{Title: "Pagina nao encontrada"}
	if tc, ok := middleware.TenantFromContext(r.Context()); ok {
		data.Store = render.NewStoreView(tc, h.assetURL())
	}
	h.renderer.Render(w, http.StatusNotFound, "notfound", data)
}

// StoreNotFound renders the platform 404 for unmatched hosts and slugs.
func (h *Handlers) StoreNotFound(w http.ResponseWriter, _ *http.Request) {
	h.renderer.Render(w, http.StatusNotFound, "notfound", page{Title: "Loja nao encontrada"})
}
