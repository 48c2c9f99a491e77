package dto

import (
	"kasira/internal/core/types"
)

// ManualEntryRequest is the request body for manual cash in/out.
type ManualEntryRequest struct {
	AccountID   string      `json:"accountId" binding:"required,uuid"`
	Amount      types.Money `json:"amount" binding:"required"`
	Description string      `json:"description"`
}

// TransferRequest is the request body for an internal transfer.
type TransferRequest struct {
	FromAccountID string      `json:"fromAccountId" binding:"required,uuid"`
	ToAccountID   string      `json:"toAccountId" binding:"required,uuid"`
	Amount        types.Money `json:"amount" binding:"required"`
	Description   string      `json:"description"`
}

// LedgerListQuery narrows ledger listing.
type LedgerListQuery struct {
	AccountID string `form:"accountId"`
	From      string `form:"from"` // YYYY-MM-DD
	To        string `form:"to"`   // YYYY-MM-DD
	Category  string `form:"category"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}
