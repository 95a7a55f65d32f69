package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leanttro/storefront/internal/domain"
)

// SessionCookie is the name of the admin session cookie.
const SessionCookie = "storefront_admin"

// ErrInvalidSession covers missing, malformed, expired, and tampered
// session tokens.
var ErrInvalidSession = errors.New("auth: invalid session")

type sessionClaims struct {
	jwt.RegisteredClaims
	StoreID string `json:"sid"`
}

// Session is the decoded admin session: at most one bound store.
type Session struct {
	StoreID domain.ID
}

// Authorize reports whether the session may mutate the given store. A bound
// store ID is necessary but not sufficient: it must equal the store the
// current request resolved to, because the cookie is scoped to the shared
// parent domain and will be presented on every tenant's host.
func (s *Session) Authorize(store *domain.Store) bool {
	if s == nil || store == nil {
		return false
	}
	return !s.StoreID.IsZero() && s.StoreID == store.ID
}

// SessionManager signs and verifies admin session cookies.
type SessionManager struct {
	secret       string
	ttl          time.Duration
	cookieDomain string
	secure       bool
	now          func() time.Time
}

// NewSessionManager creates a SessionManager. cookieDomain should be the
// platform's parent domain (e.g. ".leanttro.com") so subdomain-addressed
// tenants share the cookie; empty means host-only cookies.
func NewSessionManager(secret, cookieDomain string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret:       secret,
		ttl:          ttl,
		cookieDomain: cookieDomain,
		secure:       secure,
		now:          time.Now,
	}
}

// Issue binds a store to a fresh long-lived session token.
func (m *SessionManager) Issue(storeID domain.ID) (string, error) {
	now := m.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		StoreID: storeID.String(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("auth.Issue: %w", err)
	}
	return token, nil
}

// Verify decodes and validates a session token.
func (m *SessionManager) Verify(token string) (*Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return []byte(m.secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.StoreID == "" {
		return nil, ErrInvalidSession
	}

	return &Session{StoreID: domain.ID(claims.StoreID)}, nil
}

// SetCookie writes the session cookie with "remember" semantics: it
// survives browser restarts for the full session TTL.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   m.cookieDomain,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   m.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest reads and verifies the session cookie; a missing or invalid
// cookie yields ErrInvalidSession.
func (m *SessionManager) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return m.Verify(cookie.Value)
}
