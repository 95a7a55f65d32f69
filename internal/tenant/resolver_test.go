package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leanttro/storefront/internal/domain"
	"github.com/leanttro/storefront/internal/tenant"
)

// mockStoreRepo implements domain.StoreRepository with per-method hooks and
// records which lookups were attempted.
type mockStoreRepo struct {
	byCustomDomain map[string]*domain.Store
	byDomain       map[string]*domain.Store
	bySlug         map[string]*domain.Store
	lookupErr      error

	slugLookups         []string
	customDomainLookups []string
	domainLookups       []string
}

func (m *mockStoreRepo) GetBySlug(_ context.Context, slug string) (*domain.Store, error) {
	m.slugLookups = append(m.slugLookups, slug)
	return m.find(m.bySlug, slug)
}

func (m *mockStoreRepo) GetByCustomDomain(_ context.Context, host string) (*domain.Store, error) {
	m.customDomainLookups = append(m.customDomainLookups, host)
	return m.find(m.byCustomDomain, host)
}

func (m *mockStoreRepo) GetByDomain(_ context.Context, host string) (*domain.Store, error) {
	m.domainLookups = append(m.domainLookups, host)
	return m.find(m.byDomain, host)
}

func (m *mockStoreRepo) find(index map[string]*domain.Store, key string) (*domain.Store, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if s, ok := index[key]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStoreRepo) GetByEmail(_ context.Context, _ string) (*domain.Store, error) {
	panic("not implemented")
}
func (m *mockStoreRepo) GetByResetToken(_ context.Context, _ string) (*domain.Store, error) {
	panic("not implemented")
}
func (m *mockStoreRepo) Create(_ context.Context, _ *domain.Store) (*domain.Store, error) {
	panic("not implemented")
}
func (m *mockStoreRepo) UpdateSettings(_ context.Context, _ domain.ID, _ *domain.StoreSettings) error {
	panic("not implemented")
}
func (m *mockStoreRepo) SetResetToken(_ context.Context, _ domain.ID, _ string, _ time.Time) error {
	panic("not implemented")
}
func (m *mockStoreRepo) SetPassword(_ context.Context, _ domain.ID, _ string) error {
	panic("not implemented")
}

func docesStore() *domain.Store {
	return &domain.Store{
		ID:          "5",
		Name:        "Doces da Ana",
		Slug:        "doces",
		Domain:      "doces.leanttro.com",
		LayoutOrder: domain.SeedLayoutOrder,
	}
}

func newResolver(repo *mockStoreRepo) *tenant.Resolver {
	return tenant.NewResolver(repo, "leanttro.com", []string{"staging.leanttro.dev"})
}

func TestResolveByPathSlug(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{bySlug: map[string]*domain.Store{"doces": docesStore()}}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "leanttro.com", "/doces/")
	require.True(t, tc.Resolved())
	assert.Equal(t, domain.ID("5"), tc.Store.ID)
	assert.Equal(t, "doces", tc.Slug)
	assert.Equal(t, "/doces", tc.BasePath)
	assert.Equal(t, tenant.SourcePathSlug, tc.Source)
}

func TestResolveCustomDomainWinsRegardlessOfPath(t *testing.T) {
	t.Parallel()

	byDomain := docesStore()
	byDomain.CustomDomain = "www.docesdaana.com.br"

	other := &domain.Store{ID: "9", Slug: "outra"}

	repo := &mockStoreRepo{
		byCustomDomain: map[string]*domain.Store{"www.docesdaana.com.br": byDomain},
		bySlug:         map[string]*domain.Store{"outra": other},
	}
	r := newResolver(repo)

	// The path names another store's slug; the custom domain must still win
	// and slug resolution must not even be attempted.
	tc := r.Resolve(context.Background(), "www.docesdaana.com.br:443", "/outra/")
	require.True(t, tc.Resolved())
	assert.Equal(t, domain.ID("5"), tc.Store.ID)
	assert.Equal(t, tenant.SourceCustomDomain, tc.Source)
	assert.Empty(t, repo.slugLookups)

	// Domain addressing means links are built from the domain root.
	assert.Equal(t, "", tc.BasePath)
	// The slug is still recorded as the active addressing token.
	assert.Equal(t, "doces", tc.Slug)
}

func TestResolveComposedSubdomain(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{
		byDomain: map[string]*domain.Store{"doces.leanttro.com": docesStore()},
	}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "Doces.Leanttro.com", "/")
	require.True(t, tc.Resolved())
	assert.Equal(t, tenant.SourceSubdomain, tc.Source)
	assert.Equal(t, "", tc.BasePath)
	assert.Empty(t, repo.slugLookups)
}

func TestReservedSegmentsNeverLookedUp(t *testing.T) {
	t.Parallel()

	// A store adversarially named "admin" must never shadow the real route.
	repo := &mockStoreRepo{bySlug: map[string]*domain.Store{"admin": {ID: "6", Slug: "admin"}}}
	r := newResolver(repo)

	for _, path := range []string{"/admin", "/admin/painel", "/signup", "/api/shipping/quote", "/logout", "/metrics", "/healthz"} {
		tc := r.Resolve(context.Background(), "leanttro.com", path)
		assert.False(t, tc.Resolved(), "path %s", path)
	}
	assert.Empty(t, repo.slugLookups, "reserved segments must never reach the directory")
}

func TestAssetPathsSkipResolution(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "doces.leanttro.com", "/static/css/site.css")
	assert.False(t, tc.Resolved())
	assert.Empty(t, repo.customDomainLookups)
	assert.Empty(t, repo.domainLookups)
}

func TestRootHostsSkipDomainLookups(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{bySlug: map[string]*domain.Store{"doces": docesStore()}}
	r := newResolver(repo)

	for _, host := range []string{"leanttro.com", "www.leanttro.com", "localhost:8080", "staging.leanttro.dev"} {
		repo.customDomainLookups = nil
		tc := r.Resolve(context.Background(), host, "/doces/")
		require.True(t, tc.Resolved(), "host %s", host)
		assert.Empty(t, repo.customDomainLookups, "host %s must not trigger domain lookups", host)
	}
}

func TestUnknownTenantResolvesToNone(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "leanttro.com", "/nao-existe/")
	assert.False(t, tc.Resolved())
	assert.Equal(t, tenant.SourceNone, tc.Source)
}

func TestLookupFailureDegradesToNone(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{lookupErr: errors.New("connection refused")}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "www.docesdaana.com.br", "/")
	assert.False(t, tc.Resolved(), "upstream failure must degrade, not crash")
}

func TestResolvedContextAppliesDefaults(t *testing.T) {
	t.Parallel()

	bare := &domain.Store{ID: "7", Slug: "vazia"}
	repo := &mockStoreRepo{bySlug: map[string]*domain.Store{"vazia": bare}}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "leanttro.com", "/vazia/")
	require.True(t, tc.Resolved())

	assert.Equal(t, domain.DefaultPrimaryColor, tc.Store.PrimaryColor)
	assert.Equal(t, domain.DefaultTitleColor, tc.Store.TitleColor)
	assert.Equal(t, domain.DefaultTextColor, tc.Store.TextColor)
	assert.Equal(t, domain.DefaultBackgroundColor, tc.Store.BackgroundColor)
	assert.Equal(t, domain.Quantity(domain.DefaultBaseFontSize), tc.Store.BaseFontSize)
	assert.Equal(t, domain.DefaultTitleFont, tc.Store.TitleFont)
	assert.Equal(t, domain.DefaultBodyFont, tc.Store.BodyFont)
	assert.Equal(t,
		[]string{"banner", "busca", "categorias", "produtos", "banners_menores", "novidades", "blog", "footer"},
		tc.Layout)
}

func TestSeededLayoutParsed(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{bySlug: map[string]*domain.Store{"doces": docesStore()}}
	r := newResolver(repo)

	tc := r.Resolve(context.Background(), "leanttro.com", "/doces/")
	require.True(t, tc.Resolved())
	assert.Equal(t, []string{"banner", "busca", "categorias", "produtos", "novidades", "footer"}, tc.Layout)
}

func TestOnOutcomeObserved(t *testing.T) {
	t.Parallel()

	repo := &mockStoreRepo{bySlug: map[string]*domain.Store{"doces": docesStore()}}
	r := newResolver(repo)

	var outcomes []tenant.Source
	r.OnOutcome = func(s tenant.Source) { outcomes = append(outcomes, s) }

	r.Resolve(context.Background(), "leanttro.com", "/doces/")
	r.Resolve(context.Background(), "leanttro.com", "/signup")

	assert.Equal(t, []tenant.Source{tenant.SourcePathSlug, tenant.SourceNone}, outcomes)
}

func TestParseLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order string
		want  []string
	}{
		{
			"valid order preserved",
			"produtos, banner ,footer",
			[]string{"produtos", "banner", "footer"},
		},
		{
			"unknown sections dropped",
			"banner,carrossel,produtos",
			[]string{"banner", "produtos"},
		},
		{
			"empty falls back",
			"",
			tenant.ParseLayout(domain.FallbackLayoutOrder),
		},
		{
			"all garbage falls back",
			"x,y,z",
			tenant.ParseLayout(domain.FallbackLayoutOrder),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tenant.ParseLayout(tt.order))
		})
	}
}

func TestIsReservedSegment(t *testing.T) {
	t.Parallel()

	for _, seg := range []string{"admin", "signup", "static", "api", "logout", "login", "favicon.ico", "ADMIN"} {
		assert.True(t, tenant.IsReservedSegment(seg), "segment %s", seg)
	}
	for _, seg := range []string{"doces", "", "minha-loja"} {
		assert.False(t, tenant.IsReservedSegment(seg), "segment %s", seg)
	}
}
