// Package advance_repo provides the PostgreSQL implementation of the employee
// advance repository.
package advance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/domain/advance"
	"kasira/internal/infrastructure/storage/postgres"
)

const advancesTable = "employee_advances"

var advanceColumns = []string{
	"id", "employee_name", "status", "amount", "repaid", "notes",
	"created_by", "created_name", "created_at", "updated_at",
}

// Repo implements advance.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new advance repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new advance.
func (r *Repo) Create(ctx context.Context, a *advance.Advance) error {
	q := r.builder.Insert(advancesTable).
		Columns(advanceColumns...).
		Values(a.ID, a.EmployeeName, a.Status, a.Amount, a.Repaid, a.Notes,
			a.CreatedBy, a.CreatedName, a.CreatedAt, a.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert advance: %w", err)
	}
	return nil
}

// GetByID retrieves an advance.
func (r *Repo) GetByID(ctx context.Context, advanceID id.ID) (*advance.Advance, error) {
	q := r.builder.Select(advanceColumns...).
		From(advancesTable).
		Where(squirrel.Eq{"id": advanceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a advance.Advance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("advance", advanceID)
		}
		return nil, fmt.Errorf("get advance: %w", err)
	}
	return &a, nil
}

// GetForUpdate retrieves an advance and locks the row.
func (r *Repo) GetForUpdate(ctx context.Context, advanceID id.ID) (*advance.Advance, error) {
	sql := `
		SELECT id, employee_name, status, amount, repaid, notes,
			   created_by, created_name, created_at, updated_at
		FROM employee_advances
		WHERE id = $1
		FOR UPDATE
	`

	var a advance.Advance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &a, sql, advanceID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("advance", advanceID)
		}
		return nil, fmt.Errorf("get advance for update: %w", err)
	}
	return &a, nil
}

// Update modifies an advance.
func (r *Repo) Update(ctx context.Context, a *advance.Advance) error {
	q := r.builder.Update(advancesTable).
		Set("employee_name", a.EmployeeName).
		Set("status", a.Status).
		Set("repaid", a.Repaid).
		Set("notes", a.Notes).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update advance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("advance", a.ID)
	}
	return nil
}

// List returns all advances, newest first.
func (r *Repo) List(ctx context.Context) ([]advance.Advance, error) {
	q := r.builder.Select(advanceColumns...).
		From(advancesTable).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var advances []advance.Advance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &advances, sql, args...); err != nil {
		return nil, fmt.Errorf("select advances: %w", err)
	}
	return advances, nil
}

// ListOpen returns advances with an outstanding balance, newest first.
func (r *Repo) ListOpen(ctx context.Context) ([]advance.Advance, error) {
	q := r.builder.Select(advanceColumns...).
		From(advancesTable).
		Where(squirrel.Eq{"status": advance.StatusOpen}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var advances []advance.Advance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &advances, sql, args...); err != nil {
		return nil, fmt.Errorf("select open advances: %w", err)
	}
	return advances, nil
}
