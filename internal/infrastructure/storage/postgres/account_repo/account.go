// Package account_repo provides the PostgreSQL implementation of the account
// repository.
package account_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/internal/infrastructure/storage/postgres"
)

const accountsTable = "accounts"

var accountColumns = []string{
	"id", "name", "type", "balance", "initial_balance",
	"is_payment_account", "created_at", "updated_at",
}

// Repo implements account.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepo creates a new account repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account.
func (r *Repo) Create(ctx context.Context, a *account.Account) error {
	q := r.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(a.ID, a.Name, a.Type, a.Balance, a.InitialBalance,
			a.IsPaymentAccount, a.CreatedAt, a.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by id.
func (r *Repo) GetByID(ctx context.Context, accountID id.ID) (*account.Account, error) {
	q := r.builder.Select(accountColumns...).
		From(accountsTable).
		Where(squirrel.Eq{"id": accountID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a account.Account
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("account", accountID)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// Update modifies an account. Balance is never written here, only through
// AddToBalance.
func (r *Repo) Update(ctx context.Context, a *account.Account) error {
	q := r.builder.Update(accountsTable).
		Set("name", a.Name).
		Set("type", a.Type).
		Set("initial_balance", a.InitialBalance).
		Set("is_payment_account", a.IsPaymentAccount).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("account", a.ID)
	}
	return nil
}

// List returns all accounts ordered by name.
func (r *Repo) List(ctx context.Context) ([]account.Account, error) {
	q := r.builder.Select(accountColumns...).
		From(accountsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []account.Account
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	return accounts, nil
}

// ListPaymentAccounts returns accounts usable at the point of sale.
func (r *Repo) ListPaymentAccounts(ctx context.Context) ([]account.Account, error) {
	q := r.builder.Select(accountColumns...).
		From(accountsTable).
		Where(squirrel.Eq{"is_payment_account": true}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []account.Account
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("select payment accounts: %w", err)
	}
	return accounts, nil
}

// Exists reports whether the account exists.
func (r *Repo) Exists(ctx context.Context, accountID id.ID) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return exists, nil
}

// AddToBalance applies a signed delta atomically at the store, avoiding the
// read-modify-write race between concurrent cashiers.
func (r *Repo) AddToBalance(ctx context.Context, accountID id.ID, delta types.Money) error {
	sql := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = now()
		WHERE id = $1
	`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, accountID, delta)
	if err != nil {
		return fmt.Errorf("add to balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("account", accountID)
	}
	return nil
}
