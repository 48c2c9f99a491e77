package advance

import (
	"context"
	"fmt"
	"time"

	"kasira/internal/core/apperror"
	appctx "kasira/internal/core/context"
	"kasira/internal/core/id"
	"kasira/internal/core/tx"
	"kasira/internal/core/types"
	"kasira/internal/domain/ledger"
	"kasira/pkg/logger"
)

// CashLedger records the cash side of advance movements.
type CashLedger interface {
	Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error)
}

// Service implements advance issue and repayment.
type Service struct {
	repo      Repository
	cash      CashLedger
	txManager tx.Manager
}

// NewService creates a new advance service.
func NewService(repo Repository, cash CashLedger, txManager tx.Manager) *Service {
	return &Service{repo: repo, cash: cash, txManager: txManager}
}

// Issue pays out a new advance from the given account. The advance row and
// the panjar_pengambilan expense entry commit together.
func (s *Service) Issue(ctx context.Context, a *Advance, accountID id.ID) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}

	a.ID = id.New()
	a.Status = StatusOpen
	a.Repaid = types.ZeroMoney()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	actor := appctx.ActorOrSystem(ctx)
	a.CreatedBy = actor.UserID
	a.CreatedName = actor.Name

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, a); err != nil {
			return fmt.Errorf("create advance: %w", err)
		}

		e := ledger.NewEntry(accountID, a.Amount, ledger.CategoryExpense)
		e.EntryType = ledger.EntryTypePanjarPengambilan
		e.Description = fmt.Sprintf("Panjar %s", a.EmployeeName)
		refID := a.ID
		e.ReferenceID = &refID
		e.ReferenceType = ledger.ReferenceAdvance
		if _, err := s.cash.Record(ctx, e); err != nil {
			return fmt.Errorf("record advance entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "advance issued",
		"id", a.ID,
		"employee", a.EmployeeName,
		"amount", a.Amount,
	)
	return nil
}

// Repay records a repayment into the given account: a panjar_pelunasan
// income entry plus the advance's repaid counter, committed together. The
// advance settles once fully repaid.
func (s *Service) Repay(ctx context.Context, advanceID, accountID id.ID, amount types.Money) (*Advance, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	var result *Advance
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetForUpdate(ctx, advanceID)
		if err != nil {
			return err
		}
		if a.Status == StatusSettled {
			return apperror.NewValidation("advance already settled").
				WithDetail("advanceId", advanceID)
		}
		if amount.GreaterThan(a.Outstanding()) {
			return apperror.NewValidation("repayment exceeds outstanding amount").
				WithDetail("outstanding", a.Outstanding()).
				WithDetail("amount", amount)
		}

		e := ledger.NewEntry(accountID, amount, ledger.CategoryIncome)
		e.EntryType = ledger.EntryTypePanjarPelunasan
		e.Description = fmt.Sprintf("Pelunasan panjar %s", a.EmployeeName)
		refID := a.ID
		e.ReferenceID = &refID
		e.ReferenceType = ledger.ReferenceAdvance
		if _, err := s.cash.Record(ctx, e); err != nil {
			return fmt.Errorf("record repayment entry: %w", err)
		}

		a.Repaid = a.Repaid.Add(amount)
		if a.Outstanding().IsZero() {
			a.Status = StatusSettled
		}
		a.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, a); err != nil {
			return fmt.Errorf("update advance: %w", err)
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "advance repaid",
		"id", advanceID,
		"amount", amount,
		"outstanding", result.Outstanding(),
		"status", result.Status,
	)
	return result, nil
}

// GetByID retrieves an advance.
func (s *Service) GetByID(ctx context.Context, advanceID id.ID) (*Advance, error) {
	return s.repo.GetByID(ctx, advanceID)
}

// List returns all advances.
func (s *Service) List(ctx context.Context) ([]Advance, error) {
	return s.repo.List(ctx)
}

// ListOpen returns advances with an outstanding balance.
func (s *Service) ListOpen(ctx context.Context) ([]Advance, error) {
	return s.repo.ListOpen(ctx)
}
