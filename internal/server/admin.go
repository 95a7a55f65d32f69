package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/content"
	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/render"
	"github.com/leanttro/storefront/internal/slug"
	"github.com/leanttro/storefront/internal/tenant"
)

// maxUploadMemory bounds in-memory multipart parsing; larger files spill
// to temp files.
const maxUploadMemory = 32 << 20

// storeImageFields are the multipart field names forwarded to the content
// store on a panel save.
var storeImageFields = []string{
	"logo",
	"bannerprincipal1",
	"bannerprincipal2",
	"bannermenor1",
	"bannermenor2",
}

// AdminLoginForm renders the store's login page.
func (h *Handlers) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	// An already-authorized session skips the form.
	if sess, err := h.auth.Sessions().FromRequest(r); err == nil && sess.Authorize(tc.Store) {
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	data := h.storePage(w, r, tc)
	data.Title = "Painel - " + tc.Store.Name
	h.renderer.Render(w, http.StatusOK, "login", data)
}

// AdminLogin checks the password for the resolved store and starts a
// remember-me session bound to it.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/admin")
		return
	}

	token, err := h.auth.Login(r.Context(), tc.Store, r.PostFormValue("senha"))
	if err != nil {
		render.SetFlash(w, "error", "Senha incorreta.")
		redirect(w, r, tc.BasePath+"/admin")
		return
	}

	h.auth.Sessions().SetCookie(w, token)
	redirect(w, r, tc.BasePath+"/admin/painel")
}

type panelPage struct {
	page
	RawLayout  string
	Categories []*domain.Category
	Products   []render.ProductCard
	Posts      []render.PostCard
}

// AdminPanel renders the management panel with the store's full catalog,
// including drafts.
func (h *Handlers) AdminPanel(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	storeID := tc.Store.ID
	assets := h.assetURL()

	categories, err := h.repos.Categories().List(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Str("store", tc.Slug).Msg("panel category listing failed")
	}
	products, err := h.repos.Products().List(ctx, storeID, 0)
	if err != nil {
		log.Warn().Err(err).Str("store", tc.Slug).Msg("panel product listing failed")
	}
	posts, err := h.repos.Posts().ListRecent(ctx, storeID, 0)
	if err != nil {
		log.Warn().Err(err).Str("store", tc.Slug).Msg("panel post listing failed")
	}

	data := panelPage{
		page:       h.storePage(w, r, tc),
		RawLayout:  tc.Store.LayoutOrder,
		Categories: categories,
	}
	data.Title = "Painel - " + tc.Store.Name
	for _, p := range products {
		data.Products = append(data.Products, render.NewProductCard(p, tc.BasePath, assets))
	}
	for _, p := range posts {
		data.Posts = append(data.Posts, render.NewPostCard(p, tc.BasePath, assets))
	}

	h.renderer.Render(w, http.StatusOK, "painel", data)
}

// AdminSaveSettings persists the presentation form, forwarding any
// uploaded banner or logo files to the content store first.
func (h *Handlers) AdminSaveSettings(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	settings := &domain.StoreSettings{
		Name:             r.PostFormValue("nome"),
		WhatsApp:         r.PostFormValue("whatsapp_comercial"),
		PrimaryColor:     r.PostFormValue("cor_primaria"),
		TitleColor:       r.PostFormValue("cor_titulo"),
		TextColor:        r.PostFormValue("cor_texto"),
		BackgroundColor:  r.PostFormValue("cor_fundo"),
		BaseFontSize:     r.PostFormValue("font_tamanho_base"),
		TitleFont:        r.PostFormValue("font_titulo"),
		BodyFont:         r.PostFormValue("font_corpo"),
		LayoutOrder:      r.PostFormValue("layout_order"),
		Banner1Link:      r.PostFormValue("linkbannerprincipal1"),
		Banner2Link:      r.PostFormValue("linkbannerprincipal2"),
		SmallBanner1Link: r.PostFormValue("linkbannermenor1"),
		SmallBanner2Link: r.PostFormValue("linkbannermenor2"),
		Phrase1:          r.PostFormValue("frase1"),
		Phrase2:          r.PostFormValue("frase2"),
		Phrase3:          r.PostFormValue("frase3"),
		ProductsTitle:    r.PostFormValue("titulo_produtos"),
		HideProducts:     checked(r, "ocultar_produtos"),
		CategoriesTitle:  r.PostFormValue("titulo_categorias"),
		HideCategories:   checked(r, "ocultar_categorias"),
		NewsTitle:        r.PostFormValue("titulo_novidades"),
		HideNews:         checked(r, "ocultar_novidades"),
		BlogTitle:        r.PostFormValue("titulo_blog"),
		HideBlog:         checked(r, "ocultar_blog"),
		HideSearch:       checked(r, "ocultar_busca"),
		HideBanner:       checked(r, "ocultar_banner"),
		HideSmallBanners: checked(r, "ocultar_banners_menores"),
		Files:            map[string]string{},
	}

	for _, field := range storeImageFields {
		id, err := h.forwardUpload(r, field)
		if err != nil {
			log.Error().Err(err).Str("field", field).Str("store", tc.Slug).Msg("upload failed")
			render.SetFlash(w, "error", "Falha ao enviar imagem. Tente novamente.")
			redirect(w, r, tc.BasePath+"/admin/painel")
			return
		}
		if id != "" {
			settings.Files[field] = id
		}
	}

	if err := h.repos.Stores().UpdateSettings(r.Context(), tc.Store.ID, settings); err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("settings save failed")
		render.SetFlash(w, "error", "Falha ao salvar as configuracoes.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	render.SetFlash(w, "success", "Configuracoes salvas!")
	redirect(w, r, tc.BasePath+"/admin/painel")
}

// SaveCategory creates or renames a category.
func (h *Handlers) SaveCategory(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("nome"))
	if name == "" {
		render.SetFlash(w, "error", "Informe o nome da categoria.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	category := &domain.Category{
		StoreID: tc.Store.ID,
		Status:  "published",
		Name:    name,
		Slug:    slug.Make(name),
	}

	var err error
	if id := r.PostFormValue("id"); id != "" {
		err = h.repos.Categories().Update(r.Context(), tc.Store.ID, domain.ID(id), category)
	} else {
		err = h.repos.Categories().Create(r.Context(), category)
	}
	if err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("category save failed")
		render.SetFlash(w, "error", "Falha ao salvar a categoria.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	render.SetFlash(w, "success", "Categoria salva!")
	redirect(w, r, tc.BasePath+"/admin/painel")
}

// DeleteCategory removes a category.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "categoria", func(tc *tenant.Context, id domain.ID) error {
		return h.repos.Categories().Delete(r.Context(), tc.Store.ID, id)
	})
}

// SaveProduct creates or updates a product, coercing the form's price and
// stock text and forwarding image uploads.
func (h *Handlers) SaveProduct(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	name := strings.TrimSpace(r.PostFormValue("nome"))
	if name == "" {
		render.SetFlash(w, "error", "Informe o nome do produto.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	product := &domain.Product{
		StoreID:       tc.Store.ID,
		Status:        "published",
		Name:          name,
		Description:   r.PostFormValue("descricao"),
		Price:         domain.Money(parsePrice(r.PostFormValue("preco"))),
		Stock:         domain.Quantity(parseInt(r.PostFormValue("estoque"))),
		OnRequest:     checked(r, "consulte"),
		Origin:        r.PostFormValue("origem"),
		Urgency:       r.PostFormValue("status_urgencia"),
		ShippingClass: r.PostFormValue("classe_frete"),
		CategoryID:    domain.ID(r.PostFormValue("categoria_id")),
	}

	for field, assign := range map[string]*domain.FileRef{
		"imagem_destaque": &product.FeaturedImage,
		"imagem1":         &product.Image1,
		"imagem2":         &product.Image2,
	} {
		id, err := h.forwardUpload(r, field)
		if err != nil {
			log.Error().Err(err).Str("field", field).Str("store", tc.Slug).Msg("upload failed")
			render.SetFlash(w, "error", "Falha ao enviar imagem. Tente novamente.")
			redirect(w, r, tc.BasePath+"/admin/painel")
			return
		}
		if id != "" {
			*assign = domain.FileRef(id)
		}
	}

	var err error
	if id := r.PostFormValue("id"); id != "" {
		product.Slug = r.PostFormValue("slug")
		if product.Slug == "" {
			product.Slug = slug.MakeUnique(name)
		}
		err = h.repos.Products().Update(r.Context(), tc.Store.ID, domain.ID(id), product)
	} else {
		product.Slug = slug.MakeUnique(name)
		err = h.repos.Products().Create(r.Context(), product)
	}
	if err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("product save failed")
		render.SetFlash(w, "error", "Falha ao salvar o produto.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	render.SetFlash(w, "success", "Produto salvo!")
	redirect(w, r, tc.BasePath+"/admin/painel")
}

// DeleteProduct removes a product.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "produto", func(tc *tenant.Context, id domain.ID) error {
		return h.repos.Products().Delete(r.Context(), tc.Store.ID, id)
	})
}

// SavePost creates or updates a blog entry, forwarding the cover upload.
func (h *Handlers) SavePost(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	title := strings.TrimSpace(r.PostFormValue("titulo"))
	if title == "" {
		render.SetFlash(w, "error", "Informe o titulo do post.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	post := &domain.Post{
		StoreID: tc.Store.ID,
		Status:  "published",
		Title:   title,
		Summary: r.PostFormValue("resumo"),
		Content: r.PostFormValue("conteudo"),
	}

	cover, err := h.forwardUpload(r, "capa")
	if err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("cover upload failed")
		render.SetFlash(w, "error", "Falha ao enviar imagem. Tente novamente.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}
	if cover != "" {
		post.Cover = domain.FileRef(cover)
	}

	if id := r.PostFormValue("id"); id != "" {
		post.Slug = r.PostFormValue("slug")
		if post.Slug == "" {
			post.Slug = slug.Make(title)
		}
		err = h.repos.Posts().Update(r.Context(), tc.Store.ID, domain.ID(id), post)
	} else {
		post.Slug = slug.Make(title)
		err = h.repos.Posts().Create(r.Context(), post)
	}
	if err != nil {
		log.Error().Err(err).Str("store", tc.Slug).Msg("post save failed")
		render.SetFlash(w, "error", "Falha ao salvar o post.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	render.SetFlash(w, "success", "Post salvo!")
	redirect(w, r, tc.BasePath+"/admin/painel")
}

// DeletePost removes a blog entry.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "post", func(tc *tenant.Context, id domain.ID) error {
		return h.repos.Posts().Delete(r.Context(), tc.Store.ID, id)
	})
}

func (h *Handlers) deleteRecord(w http.ResponseWriter, r *http.Request, kind string, del func(*tenant.Context, domain.ID) error) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	id := domain.ID(chi.URLParam(r, "id"))
	if err := del(tc, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Error().Err(err).Str("kind", kind).Str("id", id.String()).Msg("delete failed")
		render.SetFlash(w, "error", "Falha ao excluir.")
		redirect(w, r, tc.BasePath+"/admin/painel")
		return
	}

	render.SetFlash(w, "success", "Excluido com sucesso!")
	redirect(w, r, tc.BasePath+"/admin/painel")
}

// forwardUpload streams one multipart file field to the content store and
// returns the stored file ID; "" when the field carries no file.
func (h *Handlers) forwardUpload(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Filename == "" {
		return "", nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	return h.repos.Client().UploadFile(
		r.Context(),
		content.SanitizeFilename(headers[0].Filename),
		uploadMIME(headers[0]),
		f,
	)
}

func uploadMIME(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// parsePrice coerces Brazilian price text ("1.234,56") and plain decimals
// ("1234.56") alike; garbage parses to zero.
func parsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func checked(r *http.Request, field string) bool {
	v := r.PostFormValue(field)
	return v == "on" || v == "true" || v == "1"
}
