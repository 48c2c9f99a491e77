package ledger

import (
	"context"
	"time"

	"kasira/internal/core/id"
)

// ListFilter bounds ledger queries.
type ListFilter struct {
	AccountID *id.ID
	From      *time.Time
	To        *time.Time
	Category  *Category
	Limit     int
	Offset    int
}

// Repository defines persistence for ledger entries. The table is append-only:
// no update operation exists, and Delete is reserved for the repair utilities.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error

	// InsertIfAbsent inserts unless a backfill-synthesized entry with the
	// same (reference_type, reference_id) already exists. Only entries with
	// ReferenceOrderBackfill carry the uniqueness constraint; every other
	// reference type inserts unconditionally, so repeated payments against
	// one document stay valid. Returns true when a row was written.
	InsertIfAbsent(ctx context.Context, e *Entry) (bool, error)

	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// ListWindow returns all entries with created_at in [from, to).
	ListWindow(ctx context.Context, from, to time.Time) ([]Entry, error)

	ListByReference(ctx context.Context, refType string, refID id.ID) ([]Entry, error)
	ExistsByReference(ctx context.Context, refType string, refID id.ID, category Category) (bool, error)

	// ListReferencing returns entries carrying a structured reference of the
	// given type. Used by orphan cleanup.
	ListReferencing(ctx context.Context, refType string) ([]Entry, error)

	// ListByAccount returns the full log for one account, oldest first.
	// Classification of the result stays in Go so that drift verification
	// shares the one classifier with every other aggregation path.
	ListByAccount(ctx context.Context, accountID id.ID) ([]Entry, error)

	// Delete removes an entry. Repair-only.
	Delete(ctx context.Context, entryID id.ID) error
}
