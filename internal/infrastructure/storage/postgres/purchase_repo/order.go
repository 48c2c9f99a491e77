// Package purchase_repo provides the PostgreSQL implementation of the
// purchase order repository.
package purchase_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/domain/purchase"
	"kasira/internal/infrastructure/storage/postgres"
)

const (
	ordersTable = "purchase_orders"
	linesTable  = "purchase_order_lines"
)

var orderColumns = []string{
	"id", "number", "supplier_name", "status", "total",
	"paid_at", "received_at", "notes",
	"created_by", "created_name", "created_at", "updated_at",
}

var lineColumns = []string{
	"id", "purchase_order_id", "material_id", "quantity", "unit_price", "subtotal",
}

// OrderRepo implements purchase.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewOrderRepo creates a new purchase order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new purchase order.
func (r *OrderRepo) Create(ctx context.Context, o *purchase.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(o.ID, o.Number, o.SupplierName, o.Status, o.Total,
			o.PaidAt, o.ReceivedAt, o.Notes,
			o.CreatedBy, o.CreatedName, o.CreatedAt, o.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on number
			return apperror.NewDuplicate("purchase order", "number", o.Number)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase order without lines.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*purchase.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o purchase.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", orderID)
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &o, nil
}

// GetForUpdate retrieves a purchase order without lines and locks the row.
func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*purchase.Order, error) {
	sql := `
		SELECT id, number, supplier_name, status, total,
			   paid_at, received_at, notes,
			   created_by, created_name, created_at, updated_at
		FROM purchase_orders
		WHERE id = $1
		FOR UPDATE
	`

	var o purchase.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, orderID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", orderID)
		}
		return nil, fmt.Errorf("get purchase order for update: %w", err)
	}
	return &o, nil
}

// Update modifies a purchase order.
func (r *OrderRepo) Update(ctx context.Context, o *purchase.Order) error {
	q := r.builder.Update(ordersTable).
		Set("supplier_name", o.SupplierName).
		Set("status", o.Status).
		Set("total", o.Total).
		Set("paid_at", o.PaidAt).
		Set("received_at", o.ReceivedAt).
		Set("notes", o.Notes).
		Set("updated_at", o.UpdatedAt).
		Where(squirrel.Eq{"id": o.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", o.ID)
	}
	return nil
}

// List returns purchase orders matching a filter, newest first.
func (r *OrderRepo) List(ctx context.Context, filter purchase.ListFilter) ([]purchase.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.SupplierName != "" {
		q = q.Where(squirrel.ILike{"supplier_name": "%" + filter.SupplierName + "%"})
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

	var orders []purchase.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase orders: %w", err)
	}
	return orders, nil
}

// InsertLines appends purchase order lines using COPY when inside a
// transaction.
func (r *OrderRepo) InsertLines(ctx context.Context, lines []purchase.Line) error {
	if len(lines) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, []any{
				line.ID, line.OrderID, line.MaterialID,
				line.Quantity, line.UnitPrice, line.Subtotal,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, linesTable, lineColumns, rows); err != nil {
			return fmt.Errorf("copy lines: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(linesTable).Columns(lineColumns...)
	for _, line := range lines {
		q = q.Values(line.ID, line.OrderID, line.MaterialID,
			line.Quantity, line.UnitPrice, line.Subtotal)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

// GetLines returns the lines of a purchase order.
func (r *OrderRepo) GetLines(ctx context.Context, orderID id.ID) ([]purchase.Line, error) {
	q := r.builder.Select(lineColumns...).
		From(linesTable).
		Where(squirrel.Eq{"purchase_order_id": orderID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}
	return lines, nil
}

// NextNumber allocates the next purchase order number for the given day.
func (r *OrderRepo) NextNumber(ctx context.Context, day time.Time) (string, error) {
	return postgres.NextNumber(ctx, r.txManager, "purchase_order", "PO", day)
}
