// Package product provides the sellable product catalog. A product optionally
// carries a bill of materials: the material quantities consumed per unit
// produced, which drives production stock deduction.
package product

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// BOMEntry is one bill-of-materials row.
type BOMEntry struct {
	MaterialID id.ID          `db:"material_id" json:"materialId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"` // per unit produced
}

// Product is one catalog row.
type Product struct {
	ID    id.ID       `db:"id" json:"id"`
	Name  string      `db:"name" json:"name"`
	Unit  string      `db:"unit" json:"unit"`
	Price types.Money `db:"price" json:"price"`

	// Materials is the optional bill of materials.
	Materials []BOMEntry `db:"-" json:"materials,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a product with generated ID.
func New(name, unit string, price types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		Name:      name,
		Unit:      unit,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements invariant checks.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	for i, bom := range p.Materials {
		if id.IsNil(bom.MaterialID) {
			return apperror.NewValidation("material is required").
				WithDetail("field", "materials").
				WithDetail("lineNo", i+1)
		}
		if !bom.Quantity.IsPositive() {
			return apperror.NewValidation("material quantity must be positive").
				WithDetail("field", "materials").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
