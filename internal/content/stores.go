package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leanttro/storefront/internal/domain"
)

// Content-store collection names. The schema predates this service.
const (
	collectionStores     = "lojas"
	collectionCategories = "categorias"
	collectionProducts   = "produtos"
	collectionPosts      = "posts"
)

// expandRelations asks the store to inline related records one level deep.
const expandRelations = "*.*"

// StoreRepo implements domain.StoreRepository over the content store.
type StoreRepo struct {
	client *Client
}

func NewStoreRepo(c *Client) *StoreRepo {
	return &StoreRepo{client: c}
}

func (r *StoreRepo) getOne(ctx context.Context, op string, q Query) (*domain.Store, error) {
	q.Limit = 1
	q.Fields = expandRelations

	var out []*domain.Store
	if err := r.client.List(ctx, collectionStores, q, &out); err != nil {
		return nil, fmt.Errorf("storeRepo.%s: %w", op, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("storeRepo.%s: %w", op, domain.ErrNotFound)
	}
	return out[0], nil
}

func (r *StoreRepo) GetBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	return r.getOne(ctx, "GetBySlug", Query{}.Eq("slug", slug))
}

func (r *StoreRepo) GetByCustomDomain(ctx context.Context, host string) (*domain.Store, error) {
	return r.getOne(ctx, "GetByCustomDomain", Query{}.Eq("dominio_proprio", host))
}

func (r *StoreRepo) GetByDomain(ctx context.Context, host string) (*domain.Store, error) {
	return r.getOne(ctx, "GetByDomain", Query{}.Eq("dominio", host))
}

func (r *StoreRepo) GetByEmail(ctx context.Context, email string) (*domain.Store, error) {
	return r.getOne(ctx, "GetByEmail", Query{}.Eq("email", email))
}

func (r *StoreRepo) GetByResetToken(ctx context.Context, token string) (*domain.Store, error) {
	return r.getOne(ctx, "GetByResetToken", Query{}.Eq("reset_token", token))
}

func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) (*domain.Store, error) {
	var created domain.Store
	if err := r.client.Create(ctx, collectionStores, s, &created); err != nil {
		return nil, fmt.Errorf("storeRepo.Create: %w", err)
	}
	if created.ID.IsZero() {
		return nil, fmt.Errorf("storeRepo.Create: store created without id")
	}
	return &created, nil
}

func (r *StoreRepo) UpdateSettings(ctx context.Context, id domain.ID, settings *domain.StoreSettings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("storeRepo.UpdateSettings: encode: %w", err)
	}

	payload := map[string]any{}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("storeRepo.UpdateSettings: %w", err)
	}

	// Freshly uploaded images overwrite their fields; absent keys leave the
	// stored images untouched.
	for field, fileID := range settings.Files {
		payload[field] = fileID
	}

	if err := r.client.Update(ctx, collectionStores, id, payload); err != nil {
		return fmt.Errorf("storeRepo.UpdateSettings: %w", err)
	}
	return nil
}

func (r *StoreRepo) SetResetToken(ctx context.Context, id domain.ID, token string, expires time.Time) error {
	payload := map[string]any{
		"reset_token":   token,
		"reset_expires": expires.Format(time.RFC3339),
	}
	if err := r.client.Update(ctx, collectionStores, id, payload); err != nil {
		return fmt.Errorf("storeRepo.SetResetToken: %w", err)
	}
	return nil
}

// SetPassword stores a new password hash and consumes any pending reset
// token in the same call.
func (r *StoreRepo) SetPassword(ctx context.Context, id domain.ID, passwordHash string) error {
	payload := map[string]any{
		"senha_admin":   passwordHash,
		"reset_token":   nil,
		"reset_expires": nil,
	}
	if err := r.client.Update(ctx, collectionStores, id, payload); err != nil {
		return fmt.Errorf("storeRepo.SetPassword: %w", err)
	}
	return nil
}
