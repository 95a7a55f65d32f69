package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/tenant"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newSessions() *auth.SessionManager {
	return auth.NewSessionManager(testSecret, "", time.Hour, false)
}

func resolvedRequest(t *testing.T, store *domain.Store, source tenant.Source, target string) *http.Request {
	t.Helper()
	tc := tenant.NewContext(store, source)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(WithTenant(req.Context(), tc))
}

func TestTenantContextRoundTrip(t *testing.T) {
	store := &domain.Store{ID: "1", Slug: "doces"}
	tc := tenant.NewContext(store, tenant.SourcePathSlug)

	ctx := WithTenant(context.Background(), tc)
	got, ok := TenantFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "doces", got.Slug)

	_, ok = TenantFromContext(context.Background())
	assert.False(t, ok)
}

func TestTenantFromContextUnresolved(t *testing.T) {
	ctx := WithTenant(context.Background(), &tenant.Context{Source: tenant.SourceNone})
	_, ok := TenantFromContext(ctx)
	assert.False(t, ok)
}

func TestRequireStoreAdmin(t *testing.T) {
	sessions := newSessions()
	store := &domain.Store{ID: "7", Slug: "doces"}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, domain.ID("7"), sess.StoreID)
		w.WriteHeader(http.StatusOK)
	})
	gate := RequireStoreAdmin(sessions)(next)

	t.Run("valid session for the resolved store passes", func(t *testing.T) {
		token, err := sessions.Issue("7")
		require.NoError(t, err)

		req := resolvedRequest(t, store, tenant.SourcePathSlug, "/admin/painel")
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing session redirects to store login", func(t *testing.T) {
		req := resolvedRequest(t, store, tenant.SourcePathSlug, "/admin/painel")

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/doces/admin", rec.Header().Get("Location"))
	})

	t.Run("session bound to another store is rejected", func(t *testing.T) {
		token, err := sessions.Issue("999")
		require.NoError(t, err)

		req := resolvedRequest(t, store, tenant.SourcePathSlug, "/admin/painel")
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/doces/admin", rec.Header().Get("Location"))
	})

	t.Run("domain-addressed store redirects without base path", func(t *testing.T) {
		req := resolvedRequest(t, &domain.Store{ID: "8", Slug: "flores"}, tenant.SourceCustomDomain, "/admin/painel")

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))
	})

	t.Run("no resolved store yields 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/painel", nil)

		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

type stubLimiter struct{ allow bool }

func (s stubLimiter) Allow(_ context.Context, _, _ string) bool { return s.allow }

func TestThrottle(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed request passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Throttle(stubLimiter{allow: true}, "login", nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("limited request gets 429 and is observed", func(t *testing.T) {
		var observed string
		rec := httptest.NewRecorder()
		Throttle(stubLimiter{allow: false}, "login", func(action string) { observed = action })(next).
			ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "login", observed)
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
