// Package material_repo provides the PostgreSQL implementation of the
// material repository: the catalog with its two stock counters, and the
// append-only movement log.
package material_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/material"
	"kasira/internal/infrastructure/storage/postgres"
)

const (
	materialsTable = "materials"
	movementsTable = "material_movements"
)

var materialColumns = []string{
	"id", "name", "kind", "unit", "price_per_unit",
	"remaining_stock", "cumulative_usage", "min_stock",
	"created_at", "updated_at",
}

var movementColumns = []string{
	"id", "material_id", "movement_type", "reason",
	"quantity", "previous_stock", "new_stock", "shortage",
	"reference_id", "reference_type", "note",
	"created_by", "created_by_name", "created_at",
}

// Repo implements material.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new material repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new material.
func (r *Repo) Create(ctx context.Context, m *material.Material) error {
	q := r.builder.Insert(materialsTable).
		Columns(materialColumns...).
		Values(m.ID, m.Name, m.Kind, m.Unit, m.PricePerUnit,
			m.RemainingStock, m.CumulativeUsage, m.MinStock,
			m.CreatedAt, m.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID retrieves a material.
func (r *Repo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	q := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(squirrel.Eq{"id": materialID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m material.Material
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("material", materialID)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

// GetForUpdate retrieves a material with a row lock.
func (r *Repo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.Material, error) {
	sql := `
		SELECT id, name, kind, unit, price_per_unit,
			   remaining_stock, cumulative_usage, min_stock,
			   created_at, updated_at
		FROM materials
		WHERE id = $1
		FOR UPDATE
	`

	var m material.Material
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &m, sql, materialID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("material", materialID)
		}
		return nil, fmt.Errorf("get material for update: %w", err)
	}
	return &m, nil
}

// Update modifies catalog fields. Counters are written only by SetCounters.
func (r *Repo) Update(ctx context.Context, m *material.Material) error {
	q := r.builder.Update(materialsTable).
		Set("name", m.Name).
		Set("kind", m.Kind).
		Set("unit", m.Unit).
		Set("price_per_unit", m.PricePerUnit).
		Set("min_stock", m.MinStock).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("material", m.ID)
	}
	return nil
}

// List returns all materials ordered by name.
func (r *Repo) List(ctx context.Context) ([]material.Material, error) {
	q := r.builder.Select(materialColumns...).
		From(materialsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var materials []material.Material
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &materials, sql, args...); err != nil {
		return nil, fmt.Errorf("select materials: %w", err)
	}
	return materials, nil
}

// ListBelowMinimum returns stock-kind materials at or below their minimum.
func (r *Repo) ListBelowMinimum(ctx context.Context) ([]material.Material, error) {
	q := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(squirrel.Eq{"kind": material.KindStock}).
		Where("remaining_stock <= min_stock").
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var materials []material.Material
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &materials, sql, args...); err != nil {
		return nil, fmt.Errorf("select materials: %w", err)
	}
	return materials, nil
}

// SetCounters persists the two stock counters.
func (r *Repo) SetCounters(ctx context.Context, materialID id.ID, remaining, cumulative types.Quantity) error {
	q := r.builder.Update(materialsTable).
		Set("remaining_stock", remaining).
		Set("cumulative_usage", cumulative).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": materialID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("material", materialID)
	}
	return nil
}

// InsertMovements appends movement rows. Uses COPY when inside a transaction,
// which is where the movement engine always calls from.
func (r *Repo) InsertMovements(ctx context.Context, movements []material.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementValues(&m))
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(movementValues(&m)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func movementValues(m *material.Movement) []any {
	return []any{
		m.ID, m.MaterialID, m.Type, m.Reason,
		m.Quantity, m.PreviousStock, m.NewStock, m.Shortage,
		m.ReferenceID, m.ReferenceType, m.Note,
		m.CreatedBy, m.CreatedByName, m.CreatedAt,
	}
}

// ListMovements returns movement history matching a filter, newest first.
func (r *Repo) ListMovements(ctx context.Context, filter material.MovementFilter) ([]material.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		OrderBy("created_at DESC")

	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}
	if filter.Reason != nil {
		q = q.Where(squirrel.Eq{"reason": *filter.Reason})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
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

	var movements []material.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}
