package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/notify"
	"github.com/leanttro/storefront/internal/slug"
	"github.com/leanttro/storefront/internal/tenant"
)

// Sentinel errors for the auth package. Handlers map these to user-visible
// messages that name the specific conflict.
var (
	ErrMissingFields      = errors.New("auth: required fields missing")
	ErrSlugTaken          = errors.New("auth: slug already in use")
	ErrSlugReserved       = errors.New("auth: slug is a reserved word")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailMismatch      = errors.New("auth: email does not match this store")
	ErrTokenInvalid       = errors.New("auth: reset token invalid")
	ErrTokenExpired       = errors.New("auth: reset token expired")
)

// resetTokenTTL bounds how long a password-reset link stays usable.
const resetTokenTTL = time.Hour

// Service owns signup, login, and credential recovery.
type Service struct {
	stores     domain.StoreRepository
	sessions   *SessionManager
	mailer     notify.Mailer
	baseDomain string
	now        func() time.Time
}

func NewService(stores domain.StoreRepository, sessions *SessionManager, mailer notify.Mailer, baseDomain string) *Service {
	return &Service{
		stores:     stores,
		sessions:   sessions,
		mailer:     mailer,
		baseDomain: baseDomain,
		now:        time.Now,
	}
}

// Sessions exposes the session manager for middleware and handlers.
func (s *Service) Sessions() *SessionManager { return s.sessions }

// SignupInput carries the signup form fields.
type SignupInput struct {
	Name     string
	Slug     string
	Email    string
	WhatsApp string
	Password string
}

// Signup validates the input, checks slug and email uniqueness, and creates
// the store with seeded presentation defaults. Returns the created store
// and a session token bound to it (auto-login).
//
// The uniqueness pre-checks race with concurrent signups; the content
// store's own unique constraints on slug and email are the backstop.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Store, string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	whatsapp := normalizePhone(in.WhatsApp)
	storeSlug := slug.Make(in.Slug)

	if name == "" || storeSlug == "" || email == "" || whatsapp == "" || in.Password == "" {
		return nil, "", ErrMissingFields
	}

	// A store whose slug shadows a system route would be unreachable by
	// path addressing, so reject it outright.
	if tenant.IsReservedSegment(storeSlug) {
		return nil, "", ErrSlugReserved
	}

	if _, err := s.stores.GetBySlug(ctx, storeSlug); err == nil {
		return nil, "", ErrSlugTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("auth.Signup: %w", err)
	}

	if _, err := s.stores.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("auth.Signup: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Signup: %w", err)
	}

	store := &domain.Store{
		Status:       "published",
		Name:         name,
		Slug:         storeSlug,
		Domain:       storeSlug + "." + s.baseDomain,
		Email:        email,
		WhatsApp:     whatsapp,
		PasswordHash: hash,

		PrimaryColor:    domain.DefaultPrimaryColor,
		TitleColor:      domain.DefaultTitleColor,
		TextColor:       domain.DefaultTextColor,
		BackgroundColor: domain.DefaultBackgroundColor,
		BaseFontSize:    domain.DefaultBaseFontSize,
		TitleFont:       domain.DefaultTitleFont,
		BodyFont:        domain.DefaultBodyFont,
		LayoutOrder:     domain.SeedLayoutOrder,

		Banner1Link: "#",
		Banner2Link: "#",
	}

	created, err := s.stores.Create(ctx, store)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Signup: %w", err)
	}

	token, err := s.sessions.Issue(created.ID)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Signup: %w", err)
	}

	return created, token, nil
}

// Login checks the password against the resolved store and returns a
// session token bound to it.
func (s *Service) Login(_ context.Context, store *domain.Store, password string) (string, error) {
	if store.PasswordHash == "" || !VerifyPassword(password, store.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(store.ID)
	if err != nil {
		return "", fmt.Errorf("auth.Login: %w", err)
	}
	return token, nil
}

// RequestPasswordReset issues a reset token for the store when the given
// email matches its registration, and mails the recovery link. linkBase is
// the tenant-scoped reset URL prefix (scheme://host/basePath/nova-senha).
func (s *Service) RequestPasswordReset(ctx context.Context, store *domain.Store, email, linkBase string) error {
	if !strings.EqualFold(strings.TrimSpace(email), store.Email) {
		return ErrEmailMismatch
	}

	token := uuid.NewString()
	expires := s.now().Add(resetTokenTTL)

	if err := s.stores.SetResetToken(ctx, store.ID, token, expires); err != nil {
		return fmt.Errorf("auth.RequestPasswordReset: %w", err)
	}

	link := strings.TrimRight(linkBase, "/") + "/" + token
	if err := s.mailer.SendPasswordReset(ctx, store.Email, store.Name, link); err != nil {
		// The token is already stored; a lost mail is recoverable by
		// requesting again, so log instead of failing the request.
		log.Error().Err(err).Str("store", store.Slug).Msg("password reset mail failed")
	}

	return nil
}

// LookupResetToken finds the store holding the token and validates expiry.
func (s *Service) LookupResetToken(ctx context.Context, token string) (*domain.Store, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	store, err := s.stores.GetByResetToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("auth.LookupResetToken: %w", err)
	}

	if !store.HasValidResetToken(s.now()) {
		return nil, ErrTokenExpired
	}

	return store, nil
}

// ResetPassword consumes a valid token and stores the new password hash.
// The token is cleared in the same write so it cannot be replayed.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrMissingFields
	}

	store, err := s.LookupResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}

	if err := s.stores.SetPassword(ctx, store.ID, hash); err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}
	return nil
}

// normalizePhone strips formatting characters from a phone number.
func normalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
