// Package account provides the financial account catalog (kas/bank accounts).
// The balance column is the authoritative "now" snapshot; it is mutated only
// through atomic store-level increments, never by client-side read-modify-write.
package account

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Type categorizes an account.
type Type string

const (
	TypeCash Type = "cash"
	TypeBank Type = "bank"
)

// Account represents one financial account with its balance snapshot.
type Account struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Type Type   `db:"type" json:"type"`

	// Balance is current balance snapshot, mutated by every cash-affecting operation.
	Balance types.Money `db:"balance" json:"balance"`

	// InitialBalance is the owner-set baseline. Invariant (drift-checked by the
	// repair utilities, never enforced):
	// balance == initial_balance + sum of signed ledger entries.
	InitialBalance types.Money `db:"initial_balance" json:"initialBalance"`

	// IsPaymentAccount gates usability at the point of sale.
	IsPaymentAccount bool `db:"is_payment_account" json:"isPaymentAccount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an account with generated ID; balance starts at the baseline.
func New(name string, accType Type, initialBalance types.Money) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:             id.New(),
		Name:           name,
		Type:           accType,
		Balance:        initialBalance,
		InitialBalance: initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate implements invariant checks.
func (a *Account) Validate(ctx context.Context) error {
	if a.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if a.Type != TypeCash && a.Type != TypeBank {
		return apperror.NewValidation("invalid account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}
	return nil
}
