package purchase

import (
	"context"
	"time"

	"kasira/internal/core/id"
)

// ListFilter narrows purchase order listing.
type ListFilter struct {
	Status       *Status
	SupplierName string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// Repository defines persistence for purchase orders and their lines.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)

	InsertLines(ctx context.Context, lines []Line) error
	GetLines(ctx context.Context, orderID id.ID) ([]Line, error)

	NextNumber(ctx context.Context, day time.Time) (string, error)
}
