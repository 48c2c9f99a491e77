package advance

import (
	"context"

	"kasira/internal/core/id"
)

// Repository defines persistence for employee advances.
type Repository interface {
	Create(ctx context.Context, a *Advance) error
	GetByID(ctx context.Context, advanceID id.ID) (*Advance, error)
	GetForUpdate(ctx context.Context, advanceID id.ID) (*Advance, error)
	Update(ctx context.Context, a *Advance) error
	List(ctx context.Context) ([]Advance, error)
	ListOpen(ctx context.Context) ([]Advance, error)
}
