package ledger

import (
	"context"
	"fmt"

	"kasira/internal/core/apperror"
	appctx "kasira/internal/core/context"
	"kasira/internal/core/id"
	"kasira/internal/core/tx"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/pkg/logger"
)

// Service provides write operations on the cash log. Every operation pairs the
// entry insert with the matching account balance increment inside one database
// transaction; a failure of either write rolls back both.
type Service struct {
	repo      Repository
	accounts  account.Repository
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, accounts account.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		txManager: txManager,
	}
}

// Record validates the entry, fills provenance from the actor in context, and
// writes entry + balance delta atomically.
func (s *Service) Record(ctx context.Context, e Entry) (*Entry, error) {
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.accounts.Exists(ctx, e.AccountID)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("account", e.AccountID)
	}

	actor := appctx.ActorOrSystem(ctx)
	if e.CreatedBy == "" {
		e.CreatedBy = actor.UserID
		e.CreatedByName = actor.Name
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.AddToBalance(ctx, e.AccountID, e.Signed()); err != nil {
			return fmt.Errorf("apply balance delta: %w", err)
		}
		if err := s.repo.Insert(ctx, &e); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger entry recorded",
		"id", e.ID,
		"account_id", e.AccountID,
		"category", Classify(e),
		"amount", e.Amount,
	)
	return &e, nil
}

// RecordManualIn records a manual cash-in (kas masuk manual).
func (s *Service) RecordManualIn(ctx context.Context, accountID id.ID, amount types.Money, description string) (*Entry, error) {
	e := NewEntry(accountID, amount, CategoryIncome)
	e.EntryType = EntryTypeKasMasukManual
	e.Description = description
	e.ReferenceType = ReferenceManual
	return s.Record(ctx, e)
}

// RecordManualOut records a manual cash-out (kas keluar manual).
func (s *Service) RecordManualOut(ctx context.Context, accountID id.ID, amount types.Money, description string) (*Entry, error) {
	e := NewEntry(accountID, amount, CategoryExpense)
	e.EntryType = EntryTypeKasKeluarManual
	e.Description = description
	e.ReferenceType = ReferenceManual
	return s.Record(ctx, e)
}

// Transfer moves cash between two internal accounts by writing the paired
// transfer_keluar/transfer_masuk legs and both balance deltas in one
// transaction. The pairing invariant is constructed here, never assumed:
// both legs share a reference id and the amounts are equal.
func (s *Service) Transfer(ctx context.Context, fromID, toID id.ID, amount types.Money, description string) (*Entry, *Entry, error) {
	if fromID == toID {
		return nil, nil, apperror.NewValidation("transfer requires two different accounts")
	}
	if !amount.IsPositive() {
		return nil, nil, apperror.NewValidation("transfer amount must be positive").
			WithDetail("field", "amount")
	}
	for _, accID := range []id.ID{fromID, toID} {
		exists, err := s.accounts.Exists(ctx, accID)
		if err != nil {
			return nil, nil, fmt.Errorf("check account: %w", err)
		}
		if !exists {
			return nil, nil, apperror.NewNotFound("account", accID)
		}
	}

	actor := appctx.ActorOrSystem(ctx)
	pairID := id.New()

	out := NewEntry(fromID, amount, CategoryTransferOut)
	out.EntryType = EntryTypeTransferKeluar
	out.SourceType = EntryTypeTransferKeluar
	out.Description = description
	out.ReferenceID = &pairID
	out.ReferenceType = ReferenceTransfer
	out.CreatedBy = actor.UserID
	out.CreatedByName = actor.Name

	in := NewEntry(toID, amount, CategoryTransferIn)
	in.EntryType = EntryTypeTransferMasuk
	in.SourceType = EntryTypeTransferMasuk
	in.Description = description
	in.ReferenceID = &pairID
	in.ReferenceType = ReferenceTransfer
	in.CreatedBy = actor.UserID
	in.CreatedByName = actor.Name

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.AddToBalance(ctx, fromID, amount.Neg()); err != nil {
			return fmt.Errorf("debit source account: %w", err)
		}
		if err := s.repo.Insert(ctx, &out); err != nil {
			return fmt.Errorf("insert outgoing leg: %w", err)
		}
		if err := s.accounts.AddToBalance(ctx, toID, amount); err != nil {
			return fmt.Errorf("credit target account: %w", err)
		}
		if err := s.repo.Insert(ctx, &in); err != nil {
			return fmt.Errorf("insert incoming leg: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "transfer recorded",
		"pair_id", pairID,
		"from", fromID,
		"to", toID,
		"amount", amount,
	)
	return &out, &in, nil
}

// List returns entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}
