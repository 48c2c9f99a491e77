// Package trade implements customer orders: the status pipeline, one-shot
// production stock deduction, and payment recording into the cash ledger.
package trade

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Status is a stage of the order pipeline. Values are stored verbatim, the
// labels match what operators see on the shop floor.
type Status string

const (
	StatusMasuk    Status = "Pesanan Masuk"
	StatusDesign   Status = "Proses Design"
	StatusACC      Status = "ACC Costumer"
	StatusProduksi Status = "Proses Produksi"
	StatusSelesai  Status = "Pesanan Selesai"
	StatusBatal    Status = "Dibatalkan"
)

// transitions holds the allowed forward edges of the pipeline. Cancellation
// is allowed from any non-terminal status.
var transitions = map[Status][]Status{
	StatusMasuk:    {StatusDesign, StatusBatal},
	StatusDesign:   {StatusACC, StatusBatal},
	StatusACC:      {StatusProduksi, StatusBatal},
	StatusProduksi: {StatusSelesai, StatusBatal},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends the pipeline.
func (s Status) IsTerminal() bool {
	return s == StatusSelesai || s == StatusBatal
}

// Item is one order line.
type Item struct {
	ID        id.ID          `db:"id" json:"id"`
	OrderID   id.ID          `db:"order_id" json:"orderId"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Name      string         `db:"name" json:"name"` // product name at order time
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal  types.Money    `db:"subtotal" json:"subtotal"`
}

// Order is one customer order.
type Order struct {
	ID            id.ID  `db:"id" json:"id"`
	Number        string `db:"number" json:"number"`
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone"`
	Status        Status `db:"status" json:"status"`

	Total      types.Money `db:"total" json:"total"`
	AmountPaid types.Money `db:"amount_paid" json:"amountPaid"`

	// PaymentAccountID is the account of the most recent payment. The
	// backfill utility uses it to synthesize missing ledger entries.
	PaymentAccountID *id.ID `db:"payment_account_id" json:"paymentAccountId,omitempty"`

	// MaterialsDeducted guards the one-shot stock deduction on entering
	// production. Once set it stays set, including across cancellation.
	MaterialsDeducted bool `db:"materials_deducted" json:"materialsDeducted"`

	Notes string `db:"notes" json:"notes"`

	Items []Item `db:"-" json:"items,omitempty"`

	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedName string    `db:"created_name" json:"createdName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Remaining returns the unpaid portion of the order total.
func (o *Order) Remaining() types.Money {
	return o.Total.Sub(o.AmountPaid)
}

// IsPaid reports whether payments cover the total.
func (o *Order) IsPaid() bool {
	return o.AmountPaid.GreaterThanOrEqual(o.Total)
}

// Validate implements invariant checks.
func (o *Order) Validate(ctx context.Context) error {
	if o.CustomerName == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order must have at least one item").
			WithDetail("field", "items")
	}
	for i, item := range o.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
