package cashflow

import (
	"context"
	"fmt"
	"time"

	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/internal/domain/ledger"
)

// Service assembles reconciliation reports. Reads are both-or-nothing: a
// failure fetching either the snapshots or the log aborts the whole
// computation with no partial result.
type Service struct {
	accounts account.Repository
	entries  ledger.Repository
	loc      *time.Location
}

// NewService creates a cashflow service. loc is the single timezone used for
// every day-boundary computation.
func NewService(accounts account.Repository, entries ledger.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{accounts: accounts, entries: entries, loc: loc}
}

// Today reconciles the since-start-of-today window against current snapshots.
// This is the dashboard computation.
func (s *Service) Today(ctx context.Context) (*Summary, error) {
	return s.ForDay(ctx, time.Now())
}

// ForDay reconciles the day window containing t. Previous-balance figures are
// only meaningful for the current day (see Reconcile).
func (s *Service) ForDay(ctx context.Context, t time.Time) (*Summary, error) {
	window := DayWindow(t, s.loc)

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch account snapshots: %w", err)
	}

	entries, err := s.entries.ListWindow(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger window: %w", err)
	}

	summary := Reconcile(accounts, entries, window)
	return &summary, nil
}

// RangeTotals are classified totals over an arbitrary date range. No balance
// derivation here: deriving previous balances backward is only sound for the
// current-day window.
type RangeTotals struct {
	Window  Window      `json:"window"`
	Income  types.Money `json:"income"`
	Expense types.Money `json:"expense"`
	Net     types.Money `json:"net"`

	PerAccount []RangeAccountTotals `json:"perAccount"`
}

// RangeAccountTotals are per-account classified totals, transfers included.
type RangeAccountTotals struct {
	AccountID   id.ID       `json:"accountId"`
	AccountName string      `json:"accountName"`
	Income      types.Money `json:"income"`
	Expense     types.Money `json:"expense"`
	Net         types.Money `json:"net"`
}

// Range computes classified totals for [fromDay, toDay] given as dates; both
// bounds are expanded to day boundaries in the service timezone.
func (s *Service) Range(ctx context.Context, fromDay, toDay time.Time) (*RangeTotals, error) {
	from := DayWindow(fromDay, s.loc).From
	to := DayWindow(toDay, s.loc).To
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid range: %s..%s", fromDay, toDay)
	}
	window := Window{From: from, To: to}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch account snapshots: %w", err)
	}

	entries, err := s.entries.ListWindow(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger window: %w", err)
	}

	totals := RangeTotals{
		Window:  window,
		Income:  types.ZeroMoney(),
		Expense: types.ZeroMoney(),
		Net:     types.ZeroMoney(),
	}
	perAccount := make(map[id.ID]*RangeAccountTotals, len(accounts))
	for _, acc := range accounts {
		perAccount[acc.ID] = &RangeAccountTotals{
			AccountID:   acc.ID,
			AccountName: acc.Name,
			Income:      types.ZeroMoney(),
			Expense:     types.ZeroMoney(),
		}
	}

	for _, e := range entries {
		acc := perAccount[e.AccountID]
		switch ledger.Classify(e) {
		case ledger.CategoryTransferIn:
			if acc != nil {
				acc.Income = acc.Income.Add(e.Amount)
			}
		case ledger.CategoryTransferOut:
			if acc != nil {
				acc.Expense = acc.Expense.Add(e.Amount)
			}
		case ledger.CategoryIncome:
			totals.Income = totals.Income.Add(e.Amount)
			if acc != nil {
				acc.Income = acc.Income.Add(e.Amount)
			}
		case ledger.CategoryExpense:
			totals.Expense = totals.Expense.Add(e.Amount)
			if acc != nil {
				acc.Expense = acc.Expense.Add(e.Amount)
			}
		}
	}

	totals.Net = totals.Income.Sub(totals.Expense)
	for _, acc := range accounts {
		pa := perAccount[acc.ID]
		pa.Net = pa.Income.Sub(pa.Expense)
		totals.PerAccount = append(totals.PerAccount, *pa)
	}

	return &totals, nil
}
