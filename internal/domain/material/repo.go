package material

import (
	"context"
	"time"

	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// MovementFilter bounds movement history queries.
type MovementFilter struct {
	MaterialID *id.ID
	Type       *MovementType
	Reason     *MovementReason
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Repository defines persistence for materials and their movement log.
type Repository interface {
	Create(ctx context.Context, m *Material) error
	GetByID(ctx context.Context, materialID id.ID) (*Material, error)

	// GetForUpdate retrieves the material with a row lock. Must be called
	// inside a transaction; serializes concurrent stock mutations.
	GetForUpdate(ctx context.Context, materialID id.ID) (*Material, error)

	Update(ctx context.Context, m *Material) error
	List(ctx context.Context) ([]Material, error)
	ListBelowMinimum(ctx context.Context) ([]Material, error)

	// SetCounters persists the two stock counters after the engine moved them.
	SetCounters(ctx context.Context, materialID id.ID, remaining, cumulative types.Quantity) error

	InsertMovements(ctx context.Context, movements []Movement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}
