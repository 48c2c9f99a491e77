// Package cashflow computes balance summaries by replaying classified ledger
// entries against account snapshots. Nothing here is materialized: every report
// re-scans the windowed log, so correctness rests entirely on the classifier
// being deterministic and total.
package cashflow

import (
	"time"

	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/internal/domain/ledger"
)

// Window is a half-open time interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// DayWindow returns the day boundary window containing t, computed in loc.
// One timezone policy applies to every day-boundary computation in the service.
func DayWindow(t time.Time, loc *time.Location) Window {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

// AccountSummary carries per-account figures for one reconciliation window.
// Unlike the global totals, the per-account income/expense columns include
// transfer legs: a transfer changes the two paired accounts individually while
// netting to zero system-wide.
type AccountSummary struct {
	AccountID       id.ID       `json:"accountId"`
	AccountName     string      `json:"accountName"`
	CurrentBalance  types.Money `json:"currentBalance"`
	PreviousBalance types.Money `json:"previousBalance"`
	TodayIncome     types.Money `json:"todayIncome"`
	TodayExpense    types.Money `json:"todayExpense"`
	TodayNet        types.Money `json:"todayNet"`
}

// Summary is the reconciliation result for one window.
type Summary struct {
	Window Window `json:"window"`

	TotalCurrentBalance  types.Money `json:"totalCurrentBalance"`
	TotalPreviousBalance types.Money `json:"totalPreviousBalance"`
	TodayIncome          types.Money `json:"todayIncome"`
	TodayExpense         types.Money `json:"todayExpense"`
	TodayNet             types.Money `json:"todayNet"`

	Accounts []AccountSummary `json:"accounts"`
}

// Reconcile computes the window summary from the current account snapshots and
// the ledger entries already filtered to the window.
//
// The snapshot is authoritative for "now": totalCurrentBalance is the sum of
// account balances regardless of log content. Previous balances are derived
// backward (current minus window net), which assumes no entries later than the
// window — it holds exactly when the window ends at "now", i.e. the
// since-start-of-today window.
//
// An entry whose account is absent from the snapshot list still counts in the
// global income/expense totals but contributes to no per-account figures.
func Reconcile(accounts []account.Account, entries []ledger.Entry, window Window) Summary {
	s := Summary{
		Window:               window,
		TotalCurrentBalance:  types.ZeroMoney(),
		TotalPreviousBalance: types.ZeroMoney(),
		TodayIncome:          types.ZeroMoney(),
		TodayExpense:         types.ZeroMoney(),
		TodayNet:             types.ZeroMoney(),
	}

	perAccount := make(map[id.ID]*AccountSummary, len(accounts))
	order := make([]id.ID, 0, len(accounts))
	for _, acc := range accounts {
		s.TotalCurrentBalance = s.TotalCurrentBalance.Add(acc.Balance)
		perAccount[acc.ID] = &AccountSummary{
			AccountID:      acc.ID,
			AccountName:    acc.Name,
			CurrentBalance: acc.Balance,
			TodayIncome:    types.ZeroMoney(),
			TodayExpense:   types.ZeroMoney(),
		}
		order = append(order, acc.ID)
	}

	for _, e := range entries {
		if !window.Contains(e.CreatedAt) {
			continue
		}
		acc := perAccount[e.AccountID]

		switch ledger.Classify(e) {
		case ledger.CategoryTransferIn:
			// Transfers move cash between internal accounts: excluded from the
			// global totals, visible on the paired accounts.
			if acc != nil {
				acc.TodayIncome = acc.TodayIncome.Add(e.Amount)
			}
		case ledger.CategoryTransferOut:
			if acc != nil {
				acc.TodayExpense = acc.TodayExpense.Add(e.Amount)
			}
		case ledger.CategoryIncome:
			s.TodayIncome = s.TodayIncome.Add(e.Amount)
			if acc != nil {
				acc.TodayIncome = acc.TodayIncome.Add(e.Amount)
			}
		case ledger.CategoryExpense:
			s.TodayExpense = s.TodayExpense.Add(e.Amount)
			if acc != nil {
				acc.TodayExpense = acc.TodayExpense.Add(e.Amount)
			}
		}
	}

	s.TodayNet = s.TodayIncome.Sub(s.TodayExpense)
	s.TotalPreviousBalance = s.TotalCurrentBalance.Sub(s.TodayNet)

	s.Accounts = make([]AccountSummary, 0, len(order))
	for _, accID := range order {
		acc := perAccount[accID]
		acc.TodayNet = acc.TodayIncome.Sub(acc.TodayExpense)
		acc.PreviousBalance = acc.CurrentBalance.Sub(acc.TodayNet)
		s.Accounts = append(s.Accounts, *acc)
	}

	return s
}
