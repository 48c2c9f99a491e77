package account

import (
	"context"

	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Repository defines persistence for accounts.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	List(ctx context.Context) ([]Account, error)
	ListPaymentAccounts(ctx context.Context) ([]Account, error)
	Exists(ctx context.Context, accountID id.ID) (bool, error)

	// AddToBalance applies a signed delta atomically at the store level
	// (balance = balance + delta). Concurrent writers never race on a
	// client-computed balance.
	AddToBalance(ctx context.Context, accountID id.ID, delta types.Money) error
}
