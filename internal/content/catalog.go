package content

import (
	"context"
	"fmt"

	"github.com/leanttro/storefront/internal/domain"
)

// CategoryRepo implements domain.CategoryRepository.
type CategoryRepo struct {
	client *Client
}

func NewCategoryRepo(c *Client) *CategoryRepo {
	return &CategoryRepo{client: c}
}

func (r *CategoryRepo) ListPublished(ctx context.Context, storeID domain.ID) ([]*domain.Category, error) {
	q := Query{Sort: "sort"}.Eq("loja_id", storeID.String()).Eq("status", "published")

	var out []*domain.Category
	if err := r.client.List(ctx, collectionCategories, q, &out); err != nil {
		return nil, fmt.Errorf("categoryRepo.ListPublished: %w", err)
	}
	return out, nil
}

func (r *CategoryRepo) List(ctx context.Context, storeID domain.ID) ([]*domain.Category, error) {
	q := Query{Sort: "sort"}.Eq("loja_id", storeID.String())

	var out []*domain.Category
	if err := r.client.List(ctx, collectionCategories, q, &out); err != nil {
		return nil, fmt.Errorf("categoryRepo.List: %w", err)
	}
	return out, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	if err := r.client.Create(ctx, collectionCategories, c, nil); err != nil {
		return fmt.Errorf("categoryRepo.Create: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, storeID, id domain.ID, c *domain.Category) error {
	if err := confirmOwned(ctx, r.client, collectionCategories, storeID, id); err != nil {
		return fmt.Errorf("categoryRepo.Update: %w", err)
	}
	if err := r.client.Update(ctx, collectionCategories, id, c); err != nil {
		return fmt.Errorf("categoryRepo.Update: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, storeID, id domain.ID) error {
	if err := confirmOwned(ctx, r.client, collectionCategories, storeID, id); err != nil {
		return fmt.Errorf("categoryRepo.Delete: %w", err)
	}
	if err := r.client.Delete(ctx, collectionCategories, id); err != nil {
		return fmt.Errorf("categoryRepo.Delete: %w", err)
	}
	return nil
}

// ProductRepo implements domain.ProductRepository.
type ProductRepo struct {
	client *Client
}

func NewProductRepo(c *Client) *ProductRepo {
	return &ProductRepo{client: c}
}

func (r *ProductRepo) ListPublished(ctx context.Context, storeID domain.ID, filter domain.ProductFilter) ([]*domain.Product, error) {
	q := Query{Fields: expandRelations}.
		Eq("loja_id", storeID.String()).
		Eq("status", "published")
	if !filter.CategoryID.IsZero() {
		q = q.Eq("categoria_id", filter.CategoryID.String())
	}
	if filter.Search != "" {
		q = q.Contains("nome", filter.Search)
	}

	var out []*domain.Product
	if err := r.client.List(ctx, collectionProducts, q, &out); err != nil {
		return nil, fmt.Errorf("productRepo.ListPublished: %w", err)
	}
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, storeID domain.ID, limit int) ([]*domain.Product, error) {
	q := Query{Sort: "-date_created", Limit: limit, Fields: expandRelations}.
		Eq("loja_id", storeID.String())

	var out []*domain.Product
	if err := r.client.List(ctx, collectionProducts, q, &out); err != nil {
		return nil, fmt.Errorf("productRepo.List: %w", err)
	}
	return out, nil
}

func (r *ProductRepo) GetBySlug(ctx context.Context, storeID domain.ID, slug string) (*domain.Product, error) {
	q := Query{Limit: 1, Fields: expandRelations}.
		Eq("slug", slug).
		Eq("loja_id", storeID.String())

	var out []*domain.Product
	if err := r.client.List(ctx, collectionProducts, q, &out); err != nil {
		return nil, fmt.Errorf("productRepo.GetBySlug: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("productRepo.GetBySlug: %w", domain.ErrNotFound)
	}
	return out[0], nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if err := r.client.Create(ctx, collectionProducts, p, nil); err != nil {
		return fmt.Errorf("productRepo.Create: %w", err)
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, storeID, id domain.ID, p *domain.Product) error {
	if err := confirmOwned(ctx, r.client, collectionProducts, storeID, id); err != nil {
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	if err := r.client.Update(ctx, collectionProducts, id, p); err != nil {
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, storeID, id domain.ID) error {
	if err := confirmOwned(ctx, r.client, collectionProducts, storeID, id); err != nil {
		return fmt.Errorf("productRepo.Delete: %w", err)
	}
	if err := r.client.Delete(ctx, collectionProducts, id); err != nil {
		return fmt.Errorf("productRepo.Delete: %w", err)
	}
	return nil
}
