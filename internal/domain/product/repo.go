package product

import (
	"context"

	"kasira/internal/core/id"
)

// Repository defines persistence for products and their bills of materials.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ID) error
	List(ctx context.Context) ([]Product, error)

	// SaveBOM replaces the bill of materials for a product.
	SaveBOM(ctx context.Context, productID id.ID, entries []BOMEntry) error
	GetBOM(ctx context.Context, productID id.ID) ([]BOMEntry, error)
}
