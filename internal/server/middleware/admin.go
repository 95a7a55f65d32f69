package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/auth"
)

// RequireStoreAdmin gates admin routes of a resolved store. The session
// cookie is shared across every tenant host, so possession alone proves
// nothing: the session's bound store is re-checked against the store this
// request resolved to, on every request. A mismatch is treated exactly
// like a missing session and lands on the store's own login page.
func RequireStoreAdmin(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := TenantFromContext(r.Context())
			if !ok {
				http.NotFound(w, r)
				return
			}

			sess, err := sessions.FromRequest(r)
			if err != nil || !sess.Authorize(tc.Store) {
				if err == nil {
					log.Warn().
						Str("session_store", sess.StoreID.String()).
						Str("request_store", tc.Store.ID.String()).
						Msg("session presented for a different store")
				}
				http.Redirect(w, r, tc.BasePath+"/admin", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
