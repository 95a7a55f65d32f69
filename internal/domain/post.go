package domain

import "context"

// Post is one blog entry belonging to a store.
type Post struct {
	ID        ID         `json:"id"`
	StoreID   ID         `json:"loja_id"`
	Status    string     `json:"status,omitempty"`
	Title     string     `json:"titulo"`
	Slug      string     `json:"slug"`
	Summary   string     `json:"resumo,omitempty"`
	Content   string     `json:"conteudo,omitempty"`
	Cover     FileRef    `json:"capa,omitempty"`
	CreatedAt *Timestamp `json:"date_created,omitempty"`
}

type PostRepository interface {
	ListRecent(ctx context.Context, storeID ID, limit int) ([]*Post, error)
	GetBySlug(ctx context.Context, storeID ID, slug string) (*Post, error)
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, storeID, id ID, p *Post) error
	Delete(ctx context.Context, storeID, id ID) error
}
