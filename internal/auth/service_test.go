package auth_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/domain"
)

// memStoreRepo is an in-memory domain.StoreRepository for service tests.
type memStoreRepo struct {
	mu     sync.Mutex
	stores map[domain.ID]*domain.Store
	nextID int
}

func newMemStoreRepo() *memStoreRepo {
	return &memStoreRepo{stores: make(map[domain.ID]*domain.Store), nextID: 1}
}

func (m *memStoreRepo) add(s *domain.Store) *domain.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[s.ID] = s
	return s
}

func (m *memStoreRepo) findBy(match func(*domain.Store) bool) (*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stores {
		if match(s) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) GetBySlug(_ context.Context, slug string) (*domain.Store, error) {
	return m.findBy(func(s *domain.Store) bool { return s.Slug == slug })
}

func (m *memStoreRepo) GetByCustomDomain(_ context.Context, host string) (*domain.Store, error) {
	return m.findBy(func(s *domain.Store) bool { return s.CustomDomain == host })
}

func (m *memStoreRepo) GetByDomain(_ context.Context, host string) (*domain.Store, error) {
	return m.findBy(func(s *domain.Store) bool { return s.Domain == host })
}

func (m *memStoreRepo) GetByEmail(_ context.Context, email string) (*domain.Store, error) {
	return m.findBy(func(s *domain.Store) bool { return s.Email == email })
}

func (m *memStoreRepo) GetByResetToken(_ context.Context, token string) (*domain.Store, error) {
	return m.findBy(func(s *domain.Store) bool { return s.ResetToken == token && token != "" })
}

func (m *memStoreRepo) Create(_ context.Context, s *domain.Store) (*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := *s
	created.ID = domain.ID(strconv.Itoa(m.nextID))
	m.nextID++
	m.stores[created.ID] = &created
	return &created, nil
}

func (m *memStoreRepo) UpdateSettings(_ context.Context, _ domain.ID, _ *domain.StoreSettings) error {
	panic("not implemented")
}

func (m *memStoreRepo) SetResetToken(_ context.Context, id domain.ID, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.ResetToken = token
	s.ResetExpires = &domain.Timestamp{Time: expires}
	return nil
}

func (m *memStoreRepo) SetPassword(_ context.Context, id domain.ID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.PasswordHash = hash
	s.ResetToken = ""
	s.ResetExpires = nil
	return nil
}

// recordingMailer captures reset links instead of sending them.
type recordingMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, _, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

func newTestService(repo *memStoreRepo, mailer *recordingMailer) *auth.Service {
	sessions := auth.NewSessionManager(testSecret, ".leanttro.com", 30*24*time.Hour, false)
	return auth.NewService(repo, sessions, mailer, "leanttro.com")
}

func validSignup() auth.SignupInput {
	return auth.SignupInput{
		Name:     "Doces da Ana",
		Slug:     "doces",
		Email:    "ana@example.com",
		WhatsApp: "(11) 98888-7777",
		Password: "segredo123",
	}
}

func TestSignupCreatesStoreWithSeededDefaults(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	svc := newTestService(repo, &recordingMailer{})

	store, token, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "doces", store.Slug)
	assert.Equal(t, "doces.leanttro.com", store.Domain)
	assert.Equal(t, "ana@example.com", store.Email)
	assert.Equal(t, "11988887777", store.WhatsApp)
	assert.Equal(t, domain.DefaultPrimaryColor, store.PrimaryColor)
	assert.Equal(t, domain.SeedLayoutOrder, store.LayoutOrder)
	assert.NotEqual(t, "segredo123", store.PasswordHash, "password must be stored hashed")

	// Auto-login: the returned token is already bound to the new store.
	s, err := svc.Sessions().Verify(token)
	require.NoError(t, err)
	assert.True(t, s.Authorize(store))
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	svc := newTestService(repo, &recordingMailer{})

	t.Run("missing fields", func(t *testing.T) {
		in := validSignup()
		in.Email = ""
		_, _, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, auth.ErrMissingFields)
	})

	t.Run("reserved slug", func(t *testing.T) {
		in := validSignup()
		in.Slug = "admin"
		_, _, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, auth.ErrSlugReserved)
	})
}

func TestSignupConflicts(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	svc := newTestService(repo, &recordingMailer{})

	_, _, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	t.Run("slug taken", func(t *testing.T) {
		in := validSignup()
		in.Email = "outra@example.com"
		_, _, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, auth.ErrSlugTaken)
	})

	t.Run("email taken", func(t *testing.T) {
		in := validSignup()
		in.Slug = "outra-loja"
		_, _, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	// No duplicate record may exist after the rejections.
	count := 0
	for range repo.stores {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	svc := newTestService(repo, &recordingMailer{})

	store, _, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		token, err := svc.Login(context.Background(), store, "segredo123")
		require.NoError(t, err)

		s, err := svc.Sessions().Verify(token)
		require.NoError(t, err)
		assert.True(t, s.Authorize(store))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), store, "errada")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("no hash on record", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &domain.Store{ID: "x"}, "qualquer")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	mailer := &recordingMailer{}
	svc := newTestService(repo, mailer)

	store, _, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	t.Run("email mismatch rejected", func(t *testing.T) {
		err := svc.RequestPasswordReset(context.Background(), store, "impostora@example.com", "https://leanttro.com/doces/nova-senha")
		assert.ErrorIs(t, err, auth.ErrEmailMismatch)
		assert.Empty(t, mailer.links)
	})

	t.Run("token issued and mailed", func(t *testing.T) {
		err := svc.RequestPasswordReset(context.Background(), store, "Ana@Example.com", "https://leanttro.com/doces/nova-senha")
		require.NoError(t, err)
		require.Len(t, mailer.links, 1)
		assert.Contains(t, mailer.links[0], "https://leanttro.com/doces/nova-senha/")
	})

	stored, err := repo.GetBySlug(context.Background(), "doces")
	require.NoError(t, err)
	token := stored.ResetToken
	require.NotEmpty(t, token)

	t.Run("reset with valid token", func(t *testing.T) {
		require.NoError(t, svc.ResetPassword(context.Background(), token, "nova-senha-9"))

		after, err := repo.GetBySlug(context.Background(), "doces")
		require.NoError(t, err)
		assert.Empty(t, after.ResetToken, "token must be consumed")
		assert.Nil(t, after.ResetExpires)
		assert.True(t, auth.VerifyPassword("nova-senha-9", after.PasswordHash))
	})

	t.Run("consumed token cannot be replayed", func(t *testing.T) {
		err := svc.ResetPassword(context.Background(), token, "outra-senha")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})
}

func TestExpiredResetTokenRejected(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	svc := newTestService(repo, &recordingMailer{})

	expired := &domain.Timestamp{Time: time.Now().Add(-time.Minute)}
	repo.add(&domain.Store{
		ID:           "9",
		Slug:         "antiga",
		Email:        "antiga@example.com",
		ResetToken:   "token-velho",
		ResetExpires: expired,
	})

	_, err := svc.LookupResetToken(context.Background(), "token-velho")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	err = svc.ResetPassword(context.Background(), "token-velho", "nova")
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestUnknownResetTokenRejected(t *testing.T) {
	t.Parallel()

	repo := newMemStoreRepo()
	svc := newTestService(repo, &recordingMailer{})

	_, err := svc.LookupResetToken(context.Background(), "desconhecido")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = svc.LookupResetToken(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
