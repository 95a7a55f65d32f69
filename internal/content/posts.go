package content

import (
	"context"
	"fmt"

	"github.com/leanttro/storefront/internal/domain"
)

// PostRepo implements domain.PostRepository.
type PostRepo struct {
	client *Client
}

func NewPostRepo(c *Client) *PostRepo {
	return &PostRepo{client: c}
}

func (r *PostRepo) ListRecent(ctx context.Context, storeID domain.ID, limit int) ([]*domain.Post, error) {
	q := Query{Sort: "-date_created", Limit: limit}.
		Eq("loja_id", storeID.String()).
		Eq("status", "published")

	var out []*domain.Post
	if err := r.client.List(ctx, collectionPosts, q, &out); err != nil {
		return nil, fmt.Errorf("postRepo.ListRecent: %w", err)
	}
	return out, nil
}

func (r *PostRepo) GetBySlug(ctx context.Context, storeID domain.ID, slug string) (*domain.Post, error) {
	q := Query{Limit: 1}.
		Eq("slug", slug).
		Eq("loja_id", storeID.String()).
		Eq("status", "published")

	var out []*domain.Post
	if err := r.client.List(ctx, collectionPosts, q, &out); err != nil {
		return nil, fmt.Errorf("postRepo.GetBySlug: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("postRepo.GetBySlug: %w", domain.ErrNotFound)
	}
	return out[0], nil
}

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	if err := r.client.Create(ctx, collectionPosts, p, nil); err != nil {
		return fmt.Errorf("postRepo.Create: %w", err)
	}
	return nil
}

func (r *PostRepo) Update(ctx context.Context, storeID, id domain.ID, p *domain.Post) error {
	if err := confirmOwned(ctx, r.client, collectionPosts, storeID, id); err != nil {
		return fmt.Errorf("postRepo.Update: %w", err)
	}
	if err := r.client.Update(ctx, collectionPosts, id, p); err != nil {
		return fmt.Errorf("postRepo.Update: %w", err)
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, storeID, id domain.ID) error {
	if err := confirmOwned(ctx, r.client, collectionPosts, storeID, id); err != nil {
		return fmt.Errorf("postRepo.Delete: %w", err)
	}
	if err := r.client.Delete(ctx, collectionPosts, id); err != nil {
		return fmt.Errorf("postRepo.Delete: %w", err)
	}
	return nil
}
