package domain

import "context"

// Product urgency markers that promote a product into the novelties rail.
const (
	UrgencyHighDemand = "Alta Procura"
	UrgencyLaunch     = "Lancamento"
)

// Category groups products inside one store.
type Category struct {
	ID      ID       `json:"id"`
	StoreID ID       `json:"loja_id"`
	Status  string   `json:"status,omitempty"`
	Name    string   `json:"nome"`
	Slug    string   `json:"slug"`
	Sort    Quantity `json:"sort,omitempty"`
}

// Variant is a named product variation with an optional photo.
type Variant struct {
	Name  string  `json:"nome"`
	Photo FileRef `json:"foto,omitempty"`
}

// Product is one catalog entry.
type Product struct {
	ID            ID         `json:"id"`
	StoreID       ID         `json:"loja_id"`
	Status        string     `json:"status,omitempty"`
	Name          string     `json:"nome"`
	Slug          string     `json:"slug"`
	Description   string     `json:"descricao,omitempty"`
	Price         Money      `json:"preco"`
	Stock         Quantity   `json:"estoque"`
	OnRequest     bool       `json:"consulte,omitempty"`
	Origin        string     `json:"origem,omitempty"`
	Urgency       string     `json:"status_urgencia,omitempty"`
	ShippingClass string     `json:"classe_frete,omitempty"`
	CategoryID    ID         `json:"categoria_id,omitempty"`
	FeaturedImage FileRef    `json:"imagem_destaque,omitempty"`
	Image1        FileRef    `json:"imagem1,omitempty"`
	Image2        FileRef    `json:"imagem2,omitempty"`
	Variants      []Variant  `json:"variantes,omitempty"`
	CreatedAt     *Timestamp `json:"date_created,omitempty"`
}

// IsNovelty reports whether the product belongs on the novelties rail.
func (p *Product) IsNovelty() bool {
	return p.Urgency == UrgencyHighDemand || p.Urgency == UrgencyLaunch
}

// ProductFilter narrows a published-product listing.
type ProductFilter struct {
	CategoryID ID
	Search     string
}

type CategoryRepository interface {
	ListPublished(ctx context.Context, storeID ID) ([]*Category, error)
	List(ctx context.Context, storeID ID) ([]*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, storeID, id ID, c *Category) error
	Delete(ctx context.Context, storeID, id ID) error
}

type ProductRepository interface {
	ListPublished(ctx context.Context, storeID ID, filter ProductFilter) ([]*Product, error)
	List(ctx context.Context, storeID ID, limit int) ([]*Product, error)
	GetBySlug(ctx context.Context, storeID ID, slug string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, storeID, id ID, p *Product) error
	Delete(ctx context.Context, storeID, id ID) error
}
