package dto

import (
	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/purchase"
)

// PurchaseLineRequest is one line in a create-purchase-order request.
type PurchaseLineRequest struct {
	MaterialID string         `json:"materialId" binding:"required,uuid"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	UnitPrice  types.Money    `json:"unitPrice"`
}

// CreatePurchaseOrderRequest is the request body for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierName string                `json:"supplierName" binding:"required"`
	Notes        string                `json:"notes"`
	Lines        []PurchaseLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePurchaseOrderRequest) ToEntity() (*purchase.Order, error) {
	o := &purchase.Order{
		SupplierName: r.SupplierName,
		Notes:        r.Notes,
	}
	for _, line := range r.Lines {
		materialID, err := id.Parse(line.MaterialID)
		if err != nil {
			return nil, apperror.NewValidation("invalid id").WithDetail("field", "materialId")
		}
		o.Lines = append(o.Lines, purchase.Line{
			MaterialID: materialID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}
	return o, nil
}

// PayPurchaseOrderRequest is the request body for paying a purchase order.
type PayPurchaseOrderRequest struct {
	AccountID string `json:"accountId" binding:"required,uuid"`
}

// PurchaseListQuery narrows purchase order listing.
type PurchaseListQuery struct {
	Status       string `form:"status"`
	SupplierName string `form:"supplierName"`
	From         string `form:"from"`
	To           string `form:"to"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}
