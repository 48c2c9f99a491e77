package trade

import (
	"context"
	"time"

	"kasira/internal/core/id"
)

// ListFilter narrows order listing.
type ListFilter struct {
	Status       *Status
	CustomerName string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// Repository defines persistence for orders and their items.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// GetByID loads an order without items.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	// GetForUpdate loads an order without items and locks the row.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)

	InsertItems(ctx context.Context, items []Item) error
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)

	// NextNumber allocates the next order number for the given day.
	NextNumber(ctx context.Context, day time.Time) (string, error)
}
