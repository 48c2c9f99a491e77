// Package repair provides the reconciliation utilities: backfilling ledger
// entries for paid orders that never reached the ledger, deleting entries
// that reference orders which no longer exist, and detecting balance drift.
// All of them are safe to re-run.
package repair

import (
	"context"
	"fmt"
	"time"

	"kasira/internal/core/apperror"
	appctx "kasira/internal/core/context"
	"kasira/internal/core/id"
	"kasira/internal/core/tx"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/internal/domain/cashflow"
	"kasira/internal/domain/ledger"
	"kasira/internal/domain/trade"
	"kasira/pkg/logger"
)

// Auditor records what a repair run changed.
type Auditor interface {
	Record(ctx context.Context, action, entity string, entityID string, payload any) error
}

// Service implements the repair utilities.
type Service struct {
	entries   ledger.Repository
	accounts  account.Repository
	orders    trade.Repository
	txManager tx.Manager
	audit     Auditor
	loc       *time.Location
}

// NewService creates a new repair service.
func NewService(entries ledger.Repository, accounts account.Repository, orders trade.Repository, txManager tx.Manager, audit Auditor, loc *time.Location) *Service {
	return &Service{
		entries:   entries,
		accounts:  accounts,
		orders:    orders,
		txManager: txManager,
		audit:     audit,
		loc:       loc,
	}
}

// BackfillResult reports one backfill run.
type BackfillResult struct {
	Scanned  int     `json:"scanned"`
	Inserted int     `json:"inserted"`
	Skipped  int     `json:"skipped"`
	OrderIDs []id.ID `json:"orderIds,omitempty"`
}

// BackfillOrderPayments synthesizes ledger entries for orders of the given
// day that carry payments but are not represented in the ledger. Orders that
// already have payment entries are skipped, and synthesized entries are keyed
// one per order under the order_backfill reference, so a second run over the
// same day changes nothing. Each synthesized entry also applies its balance
// delta, keeping the account snapshot in step with the log.
func (s *Service) BackfillOrderPayments(ctx context.Context, day time.Time) (*BackfillResult, error) {
	window := cashflow.DayWindow(day, s.loc)

	orders, err := s.orders.List(ctx, trade.ListFilter{
		From:  &window.From,
		To:    &window.To,
		Limit: 10_000,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := &BackfillResult{}
	for _, o := range orders {
		if !o.AmountPaid.IsPositive() || o.PaymentAccountID == nil {
			continue
		}
		result.Scanned++

		o := o
		inserted, err := s.backfillOne(ctx, &o)
		if err != nil {
			return nil, fmt.Errorf("backfill order %s: %w", o.ID, err)
		}
		if inserted {
			result.Inserted++
			result.OrderIDs = append(result.OrderIDs, o.ID)
		} else {
			result.Skipped++
		}
	}

	logger.Info(ctx, "backfill finished",
		"day", window.From.Format("2006-01-02"),
		"scanned", result.Scanned,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
	)
	if result.Inserted > 0 && s.audit != nil {
		if err := s.audit.Record(ctx, "repair.backfill", "ledger", window.From.Format("2006-01-02"), result); err != nil {
			logger.Warn(ctx, "audit record failed", "error", err)
		}
	}
	return result, nil
}

func (s *Service) backfillOne(ctx context.Context, o *trade.Order) (bool, error) {
	actor := appctx.ActorOrSystem(ctx)

	// Payments that reached the ledger through the normal path need no
	// synthesizing, however many installments the order was paid in.
	exists, err := s.entries.ExistsByReference(ctx, ledger.ReferenceOrder, o.ID, ledger.CategoryIncome)
	if err != nil {
		return false, fmt.Errorf("check existing payment entries: %w", err)
	}
	if exists {
		return false, nil
	}

	e := ledger.NewEntry(*o.PaymentAccountID, o.AmountPaid, ledger.CategoryIncome)
	// Stamp the entry into the repaired day, not the day the repair ran,
	// so that day's reconciliation picks it up.
	e.CreatedAt = o.CreatedAt
	e.EntryType = ledger.EntryTypeOrderan
	e.Description = fmt.Sprintf("Pembayaran pesanan %s (backfill)", o.Number)
	e.ReferenceNumber = o.Number
	refID := o.ID
	e.ReferenceID = &refID
	e.ReferenceType = ledger.ReferenceOrderBackfill
	e.CreatedBy = actor.UserID
	e.CreatedByName = actor.Name

	var inserted bool
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = s.entries.InsertIfAbsent(ctx, &e)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		return s.accounts.AddToBalance(ctx, e.AccountID, e.Signed())
	})
	return inserted, err
}

// CleanupResult reports one orphan cleanup run.
type CleanupResult struct {
	Scanned  int     `json:"scanned"`
	Deleted  int     `json:"deleted"`
	EntryIDs []id.ID `json:"entryIds,omitempty"`
}

// CleanupOrphanEntries deletes ledger entries whose structured order
// reference points at an order that no longer exists. Both regular payment
// entries and backfill-synthesized ones are scanned. Each deletion reverses
// the entry's balance delta in the same transaction.
func (s *Service) CleanupOrphanEntries(ctx context.Context) (*CleanupResult, error) {
	var entries []ledger.Entry
	for _, refType := range []string{ledger.ReferenceOrder, ledger.ReferenceOrderBackfill} {
		batch, err := s.entries.ListReferencing(ctx, refType)
		if err != nil {
			return nil, fmt.Errorf("list %s entries: %w", refType, err)
		}
		entries = append(entries, batch...)
	}

	result := &CleanupResult{Scanned: len(entries)}
	exists := make(map[id.ID]bool, len(entries))
	for _, e := range entries {
		if e.ReferenceID == nil {
			continue
		}
		orderID := *e.ReferenceID
		known, seen := exists[orderID]
		if !seen {
			_, err := s.orders.GetByID(ctx, orderID)
			switch {
			case err == nil:
				known = true
			case apperror.IsNotFound(err):
				known = false
			default:
				return nil, fmt.Errorf("check order %s: %w", orderID, err)
			}
			exists[orderID] = known
		}
		if known {
			continue
		}

		e := e
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.accounts.AddToBalance(ctx, e.AccountID, e.Signed().Neg()); err != nil {
				return fmt.Errorf("reverse balance delta: %w", err)
			}
			return s.entries.Delete(ctx, e.ID)
		})
		if err != nil {
			return nil, fmt.Errorf("delete orphan entry %s: %w", e.ID, err)
		}
		result.Deleted++
		result.EntryIDs = append(result.EntryIDs, e.ID)
		logger.Warn(ctx, "orphan ledger entry deleted",
			"entry_id", e.ID,
			"order_id", orderID,
			"amount", e.Amount,
		)
	}

	logger.Info(ctx, "orphan cleanup finished", "scanned", result.Scanned, "deleted", result.Deleted)
	if result.Deleted > 0 && s.audit != nil {
		if err := s.audit.Record(ctx, "repair.cleanup", "ledger", "", result); err != nil {
			logger.Warn(ctx, "audit record failed", "error", err)
		}
	}
	return result, nil
}

// Drift reports one account whose snapshot disagrees with its log.
type Drift struct {
	AccountID   id.ID       `json:"accountId"`
	AccountName string      `json:"accountName"`
	Snapshot    types.Money `json:"snapshot"`
	Recomputed  types.Money `json:"recomputed"`
	Difference  types.Money `json:"difference"`
}

// VerifyBalances recomputes initial balance plus the signed entry sum per
// account and reports every account where the snapshot disagrees. Read-only:
// nothing is corrected, operators decide what to do with the report.
func (s *Service) VerifyBalances(ctx context.Context) ([]Drift, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var drifts []Drift
	for _, acc := range accounts {
		entries, err := s.entries.ListByAccount(ctx, acc.ID)
		if err != nil {
			return nil, fmt.Errorf("list entries for account %s: %w", acc.ID, err)
		}

		recomputed := acc.InitialBalance
		for _, e := range entries {
			recomputed = recomputed.Add(e.Signed())
		}
		if recomputed.Equal(acc.Balance) {
			continue
		}

		drifts = append(drifts, Drift{
			AccountID:   acc.ID,
			AccountName: acc.Name,
			Snapshot:    acc.Balance,
			Recomputed:  recomputed,
			Difference:  acc.Balance.Sub(recomputed),
		})
		logger.Warn(ctx, "account balance drift",
			"account_id", acc.ID,
			"snapshot", acc.Balance,
			"recomputed", recomputed,
		)
	}
	return drifts, nil
}
