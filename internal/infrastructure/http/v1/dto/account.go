package dto

import (
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
)

// CreateAccountRequest is the request body for creating an account.
type CreateAccountRequest struct {
	Name             string       `json:"name" binding:"required"`
	Type             account.Type `json:"type" binding:"required"`
	InitialBalance   types.Money  `json:"initialBalance"`
	IsPaymentAccount bool         `json:"isPaymentAccount"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAccountRequest) ToEntity() *account.Account {
	a := account.New(r.Name, r.Type, r.InitialBalance)
	a.IsPaymentAccount = r.IsPaymentAccount
	return a
}

// UpdateAccountRequest is the request body for updating an account.
// Balance is absent on purpose: it moves only through ledger operations.
type UpdateAccountRequest struct {
	Name             string       `json:"name" binding:"required"`
	Type             account.Type `json:"type" binding:"required"`
	InitialBalance   types.Money  `json:"initialBalance"`
	IsPaymentAccount bool         `json:"isPaymentAccount"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAccountRequest) ApplyTo(a *account.Account) {
	a.Name = r.Name
	a.Type = r.Type
	a.InitialBalance = r.InitialBalance
	a.IsPaymentAccount = r.IsPaymentAccount
}
