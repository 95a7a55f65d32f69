package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/render"
)

// ForgotPasswordForm renders the recovery request form.
func (h *Handlers) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	data := h.storePage(w, r, tc)
	data.Title = "Recuperar senha - " + tc.Store.Name
	h.renderer.Render(w, http.StatusOK, "recuperar", data)
}

// ForgotPassword issues a reset token when the submitted email matches the
// store's registration and mails the recovery link.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/recuperar-senha")
		return
	}

	linkBase := requestScheme(r) + "://" + r.Host + tc.BasePath + "/nova-senha"
	err := h.auth.RequestPasswordReset(r.Context(), tc.Store, r.PostFormValue("email"), linkBase)
	switch {
	case errors.Is(err, auth.ErrEmailMismatch):
		render.SetFlash(w, "error", "E-mail nao confere com o cadastro desta loja.")
		redirect(w, r, tc.BasePath+"/recuperar-senha")
		return
	case err != nil:
		log.Error().Err(err).Str("store", tc.Slug).Msg("password reset request failed")
		render.SetFlash(w, "error", "Nao foi possivel iniciar a recuperacao. Tente novamente.")
		redirect(w, r, tc.BasePath+"/recuperar-senha")
		return
	}

	render.SetFlash(w, "success", "Enviamos um link de recuperacao para o seu e-mail.")
	redirect(w, r, tc.BasePath+"/admin")
}

type resetPage struct {
	page
	Token string
}

// ResetPasswordForm validates the token before showing the new-password
// form, so a stale link fails before the user types anything.
func (h *Handlers) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	if _, err := h.auth.LookupResetToken(r.Context(), token); err != nil {
		render.SetFlash(w, "error", resetErrorMessage(err))
		redirect(w, r, tc.BasePath+"/recuperar-senha")
		return
	}

	data := resetPage{page: h.storePage(w, r, tc), Token: token}
	data.Title = "Nova senha - " + tc.Store.Name
	h.renderer.Render(w, http.StatusOK, "nova_senha", data)
}

// ResetPassword consumes the token and stores the new password.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.tenantCtx(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	if err := r.ParseForm(); err != nil {
		render.SetFlash(w, "error", "Formulario invalido.")
		redirect(w, r, tc.BasePath+"/nova-senha/"+token)
		return
	}

	err := h.auth.ResetPassword(r.Context(), token, r.PostFormValue("senha"))
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		render.SetFlash(w, "error", "Informe a nova senha.")
		redirect(w, r, tc.BasePath+"/nova-senha/"+token)
		return
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenExpired):
		render.SetFlash(w, "error", resetErrorMessage(err))
		redirect(w, r, tc.BasePath+"/recuperar-senha")
		return
	case err != nil:
		log.Error().Err(err).Str("store", tc.Slug).Msg("password reset failed")
		render.SetFlash(w, "error", "Nao foi possivel redefinir a senha. Tente novamente.")
		redirect(w, r, tc.BasePath+"/nova-senha/"+token)
		return
	}

	render.SetFlash(w, "success", "Senha redefinida! Faca login com a nova senha.")
	redirect(w, r, tc.BasePath+"/admin")
}

func resetErrorMessage(err error) string {
	if errors.Is(err, auth.ErrTokenExpired) {
		return "Este link de recuperacao expirou. Solicite um novo."
	}
	return "Link de recuperacao invalido. Solicite um novo."
}

// requestScheme honors the proxy's forwarded protocol when present.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
