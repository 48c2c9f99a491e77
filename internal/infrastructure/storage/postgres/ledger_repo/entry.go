// Package ledger_repo provides the PostgreSQL implementation of the ledger
// entry repository over the append-only cash_history table.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/domain/ledger"
	"kasira/internal/infrastructure/storage/postgres"
)

const entriesTable = "cash_history"

var entryColumns = []string{
	"id", "account_id", "amount", "category", "entry_type", "transaction_type",
	"source_type", "description", "reference_number", "reference_id",
	"reference_type", "created_by", "created_by_name", "created_at",
}

// Repo implements ledger.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new ledger entry repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func entryValues(e *ledger.Entry) []any {
	return []any{
		e.ID, e.AccountID, e.Amount, e.Category, e.EntryType, e.TransactionType,
		e.SourceType, e.Description, e.ReferenceNumber, e.ReferenceID,
		e.ReferenceType, e.CreatedBy, e.CreatedByName, e.CreatedAt,
	}
}

// Insert appends one entry.
func (r *Repo) Insert(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(entryValues(e)...)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// InsertIfAbsent appends one entry unless a backfill-synthesized entry with
// the same structured reference already exists. The partial unique index on
// (reference_type, reference_id) WHERE reference_type = 'order_backfill'
// makes the check race-free; ON CONFLICT DO NOTHING turns the duplicate into
// a no-op. Entries with any other reference type insert unconditionally.
func (r *Repo) InsertIfAbsent(ctx context.Context, e *ledger.Entry) (bool, error) {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(entryValues(e)...).
		Suffix("ON CONFLICT (reference_type, reference_id) WHERE reference_type = 'order_backfill' DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("insert entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID retrieves one entry.
func (r *Repo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ledger entry", entryID)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// List returns entries matching a filter, newest first.
func (r *Repo) List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		OrderBy("created_at DESC")

	if filter.AccountID != nil {
		q = q.Where(squirrel.Eq{"account_id": *filter.AccountID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// ListWindow returns all entries with created_at in [from, to), oldest first.
func (r *Repo) ListWindow(ctx context.Context, from, to time.Time) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// ListByReference returns entries referencing one source row.
func (r *Repo) ListByReference(ctx context.Context, refType string, refID id.ID) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"reference_type": refType, "reference_id": refID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// ExistsByReference reports whether an entry exists for the reference.
func (r *Repo) ExistsByReference(ctx context.Context, refType string, refID id.ID, category ledger.Category) (bool, error) {
	sql := `
		SELECT EXISTS (
			SELECT 1 FROM cash_history
			WHERE reference_type = $1 AND reference_id = $2 AND category = $3
		)
	`

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, refType, refID, category).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

// ListReferencing returns entries carrying a structured reference of the
// given type, oldest first.
func (r *Repo) ListReferencing(ctx context.Context, refType string) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"reference_type": refType}).
		Where("reference_id IS NOT NULL").
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// ListByAccount returns the full log for one account, oldest first.
func (r *Repo) ListByAccount(ctx context.Context, accountID id.ID) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// Delete removes an entry. Repair-only.
func (r *Repo) Delete(ctx context.Context, entryID id.ID) error {
	q := r.builder.Delete(entriesTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ledger entry", entryID)
	}
	return nil
}
