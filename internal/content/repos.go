package content

import (
	"context"

	"github.com/leanttro/storefront/internal/domain"
)

// Repos aggregates every collection repository over one shared client.
type Repos struct {
	client     *Client
	stores     *StoreRepo
	categories *CategoryRepo
	products   *ProductRepo
	posts      *PostRepo
}

// NewRepos builds the repository set for a client.
func NewRepos(c *Client) *Repos {
	return &Repos{
		client:     c,
		stores:     NewStoreRepo(c),
		categories: NewCategoryRepo(c),
		products:   NewProductRepo(c),
		posts:      NewPostRepo(c),
	}
}

// confirmOwned checks that a record belongs to the store before a write
// addressed by raw ID. The content store has no scoped delete, so without
// this check any panel session could hit another store's records by ID.
func confirmOwned(ctx context.Context, c *Client, collection string, storeID, id domain.ID) error {
	q := Query{Limit: 1, Fields: "id"}.
		Eq("id", id.String()).
		Eq("loja_id", storeID.String())

	var out []struct {
		ID domain.ID `json:"id"`
	}
	if err := c.List(ctx, collection, q, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repos) Client() *Client           { return r.client }
func (r *Repos) Stores() *StoreRepo        { return r.stores }
func (r *Repos) Categories() *CategoryRepo { return r.categories }
func (r *Repos) Products() *ProductRepo    { return r.products }
func (r *Repos) Posts() *PostRepo          { return r.posts }
