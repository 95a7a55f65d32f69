package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/render"
)

type signupPage struct {
	page
	Name     string
	Slug     string
	Email    string
	WhatsApp string
}

// SignupForm renders the store creation form.
func (h *Handlers) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "signup", signupPage{
		page: page{Flash: render.PopFlash(w, r), Title: "Crie sua loja"},
	})
}

// Signup creates a store and logs its owner straight into the panel.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, "/signup")
		return
	}

	store, token, err := h.auth.Signup(r.Context(), auth.SignupInput{
		Name:     r.PostFormValue("nome"),
		Slug:     r.PostFormValue("slug"),
		Email:    r.PostFormValue("email"),
		WhatsApp: r.PostFormValue("whatsapp"),
		Password: r.PostFormValue("senha"),
	})
	if err != nil {
		render.SetFlash(w, "error", signupErrorMessage(err))
		redirect(w, r, "/signup")
		return
	}

	h.auth.Sessions().SetCookie(w, token)
	redirect(w, r, "/"+store.Slug+"/admin/painel")
}

func signupErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		return "Preencha todos os campos."
	case errors.Is(err, auth.ErrSlugReserved):
		return "Este endereco nao esta disponivel. Escolha outro."
	case errors.Is(err, auth.ErrSlugTaken):
		return "Este endereco de loja ja esta em uso."
	case errors.Is(err, auth.ErrEmailTaken):
		return "Este e-mail ja possui uma loja cadastrada."
	default:
		log.Error().Err(err).Msg("signup failed")
		return "Nao foi possivel criar a loja. Tente novamente."
	}
}

// Logout clears the admin session and returns to the platform root.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Sessions().ClearCookie(w)
	redirect(w, r, "/")
}

// ShippingQuote is a stub carrier integration: it always answers an empty
// option list so storefront checkouts can render a shipping step.
func (h *Handlers) ShippingQuote(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`[]`))
}
