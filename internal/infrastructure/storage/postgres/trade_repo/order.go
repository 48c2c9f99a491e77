// Package trade_repo provides the PostgreSQL implementation of the order
// repository.
package trade_repo

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
	"kasira/internal/domain/trade"
	"kasira/internal/infrastructure/storage/postgres"
)

const (
	ordersTable = "orders"
	itemsTable  = "order_items"
)

var orderColumns = []string{
	"id", "number", "customer_name", "customer_phone", "status",
	"total", "amount_paid", "payment_account_id", "materials_deducted",
	"notes", "created_by", "created_name", "created_at", "updated_at",
}

var itemColumns = []string{
	"id", "order_id", "product_id", "name", "quantity", "unit_price", "subtotal",
}

// OrderRepo implements trade.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *trade.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(o.ID, o.Number, o.CustomerName, o.CustomerPhone, o.Status,
			o.Total, o.AmountPaid, o.PaymentAccountID, o.MaterialsDeducted,
			o.Notes, o.CreatedBy, o.CreatedName, o.CreatedAt, o.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on number
			return apperror.NewDuplicate("order", "number", o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order without items.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*trade.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o trade.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetForUpdate retrieves an order without items and locks the row.
func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*trade.Order, error) {
	sql := `
		SELECT id, number, customer_name, customer_phone, status,
			   total, amount_paid, payment_account_id, materials_deducted,
			   notes, created_by, created_name, created_at, updated_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var o trade.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, orderID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	return &o, nil
}

// Update modifies an order.
func (r *OrderRepo) Update(ctx context.Context, o *trade.Order) error {
	q := r.builder.Update(ordersTable).
		Set("customer_name", o.CustomerName).
		Set("customer_phone", o.CustomerPhone).
		Set("status", o.Status).
		Set("total", o.Total).
		Set("amount_paid", o.AmountPaid).
		Set("payment_account_id", o.PaymentAccountID).
		Set("materials_deducted", o.MaterialsDeducted).
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
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", o.ID)
	}
	return nil
}

// List returns orders matching a filter, newest first.
func (r *OrderRepo) List(ctx context.Context, filter trade.ListFilter) ([]trade.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CustomerName != "" {
		q = q.Where(squirrel.ILike{"customer_name": "%" + filter.CustomerName + "%"})
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

	var orders []trade.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order, newest first.
func (r *OrderRepo) ListAll(ctx context.Context) ([]trade.Order, error) {
	return r.List(ctx, trade.ListFilter{})
}

// InsertItems appends order items using COPY when inside a transaction.
func (r *OrderRepo) InsertItems(ctx context.Context, items []trade.Item) error {
	if len(items) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.ID, item.OrderID, item.ProductID, item.Name,
				item.Quantity, item.UnitPrice, item.Subtotal,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, itemsTable, itemColumns, rows); err != nil {
			return fmt.Errorf("copy items: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(itemsTable).Columns(itemColumns...)
	for _, item := range items {
		q = q.Values(item.ID, item.OrderID, item.ProductID, item.Name,
			item.Quantity, item.UnitPrice, item.Subtotal)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// GetItems returns the items of an order.
func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]trade.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []trade.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// NextNumber allocates the next order number for the given day via an atomic
// upsert on the numerators table.
func (r *OrderRepo) NextNumber(ctx context.Context, day time.Time) (string, error) {
	return postgres.NextNumber(ctx, r.txManager, "order", "ORD", day)
}
