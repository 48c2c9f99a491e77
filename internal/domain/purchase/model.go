// Package purchase implements supplier purchase orders: creation, cash
// payment into the ledger, and goods receipt into material stock.
package purchase

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Status tracks a purchase order through payment and receipt.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPaid     Status = "paid"
	StatusReceived Status = "received"
	StatusClosed   Status = "closed"
)

// Line is one purchase order line.
type Line struct {
	ID         id.ID          `db:"id" json:"id"`
	OrderID    id.ID          `db:"purchase_order_id" json:"purchaseOrderId"`
	MaterialID id.ID          `db:"material_id" json:"materialId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal   types.Money    `db:"subtotal" json:"subtotal"`
}

// Order is one supplier purchase order.
type Order struct {
	ID           id.ID  `db:"id" json:"id"`
	Number       string `db:"number" json:"number"`
	SupplierName string `db:"supplier_name" json:"supplierName"`
	Status       Status `db:"status" json:"status"`

	Total types.Money `db:"total" json:"total"`

	PaidAt     *time.Time `db:"paid_at" json:"paidAt,omitempty"`
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`

	Notes string `db:"notes" json:"notes"`

	Lines []Line `db:"-" json:"lines,omitempty"`

	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedName string    `db:"created_name" json:"createdName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate implements invariant checks.
func (o *Order) Validate(ctx context.Context) error {
	if o.SupplierName == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "supplierName")
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("purchase order must have at least one line").
			WithDetail("field", "lines")
	}
	for i, line := range o.Lines {
		if id.IsNil(line.MaterialID) {
			return apperror.NewValidation("material is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
