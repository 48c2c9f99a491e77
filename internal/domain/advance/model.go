// Package advance implements employee cash advances (panjar): issuing an
// advance pays cash out, repayment brings it back in, both through the
// ledger so account balances stay consistent.
package advance

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Status tracks an advance from issue to settlement.
type Status string

const (
	StatusOpen    Status = "open"
	StatusSettled Status = "settled"
)

// Advance is one employee cash advance.
type Advance struct {
	ID           id.ID  `db:"id" json:"id"`
	EmployeeName string `db:"employee_name" json:"employeeName"`
	Status       Status `db:"status" json:"status"`

	Amount types.Money `db:"amount" json:"amount"`
	Repaid types.Money `db:"repaid" json:"repaid"`

	Notes string `db:"notes" json:"notes"`

	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedName string    `db:"created_name" json:"createdName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Outstanding returns the unpaid remainder of the advance.
func (a *Advance) Outstanding() types.Money {
	return a.Amount.Sub(a.Repaid)
}

// Validate implements invariant checks.
func (a *Advance) Validate(ctx context.Context) error {
	if a.EmployeeName == "" {
		return apperror.NewValidation("employee name is required").
			WithDetail("field", "employeeName")
	}
	if !a.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	return nil
}
