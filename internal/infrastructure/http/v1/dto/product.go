package dto

import (
	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/product"
)

// BOMEntryRequest is one bill-of-materials row in a product request.
type BOMEntryRequest struct {
	MaterialID string         `json:"materialId" binding:"required,uuid"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
}

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Name      string            `json:"name" binding:"required"`
	Unit      string            `json:"unit"`
	Price     types.Money       `json:"price"`
	Materials []BOMEntryRequest `json:"materials"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() (*product.Product, error) {
	p := product.New(r.Name, r.Unit, r.Price)
	for _, entry := range r.Materials {
		materialID, err := id.Parse(entry.MaterialID)
		if err != nil {
			return nil, apperror.NewValidation("invalid id").WithDetail("field", "materialId")
		}
		p.Materials = append(p.Materials, product.BOMEntry{
			MaterialID: materialID,
			Quantity:   entry.Quantity,
		})
	}
	return p, nil
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Name      string            `json:"name" binding:"required"`
	Unit      string            `json:"unit"`
	Price     types.Money       `json:"price"`
	Materials []BOMEntryRequest `json:"materials"`
}
