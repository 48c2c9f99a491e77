// Package catalog_repo provides the PostgreSQL implementation of the product
// catalog repository, including bills of materials.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/domain/product"
	"kasira/internal/infrastructure/storage/postgres"
)

const (
	productsTable = "products"
	bomTable      = "product_materials"
)

var productColumns = []string{
	"id", "name", "unit", "price", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(p.ID, p.Name, p.Unit, p.Price, p.CreatedAt, p.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product without its bill of materials.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update modifies a product.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("unit", p.Unit).
		Set("price", p.Price).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product and its bill of materials.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, `DELETE FROM product_materials WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete bom: %w", err)
	}

	tag, err := querier.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// List returns the catalog ordered by name.
func (r *ProductRepo) List(ctx context.Context) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

// SaveBOM replaces the bill of materials for a product.
func (r *ProductRepo) SaveBOM(ctx context.Context, productID id.ID, entries []product.BOMEntry) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, `DELETE FROM product_materials WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear bom: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	q := r.builder.Insert(bomTable).Columns("product_id", "material_id", "quantity")
	for _, entry := range entries {
		q = q.Values(productID, entry.MaterialID, entry.Quantity)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert bom: %w", err)
	}
	return nil
}

// GetBOM returns the bill of materials for a product.
func (r *ProductRepo) GetBOM(ctx context.Context, productID id.ID) ([]product.BOMEntry, error) {
	q := r.builder.Select("material_id", "quantity").
		From(bomTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("material_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []product.BOMEntry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select bom: %w", err)
	}
	return entries, nil
}
