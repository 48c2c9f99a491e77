package cashflow

import (
	"testing"
	"time"

	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/internal/domain/ledger"
)

func testWindow() Window {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

func entryAt(accID id.ID, amount int64, category ledger.Category, at time.Time) ledger.Entry {
	e := ledger.NewEntry(accID, types.NewMoneyFromInt(amount), category)
	e.CreatedAt = at
	return e
}

func TestReconcileSingleAccount(t *testing.T) {
	w := testWindow()
	accID := id.New()
	accounts := []account.Account{
		{ID: accID, Name: "Kas Kecil", Balance: types.NewMoneyFromInt(500_000)},
	}
	entries := []ledger.Entry{
		entryAt(accID, 125_000, ledger.CategoryIncome, w.From.Add(9*time.Hour)),
		entryAt(accID, 25_000, ledger.CategoryExpense, w.From.Add(14*time.Hour)),
	}

	s := Reconcile(accounts, entries, w)

	if !s.TodayIncome.Equal(types.NewMoneyFromInt(125_000)) {
		t.Errorf("income = %s, want 125000", s.TodayIncome)
	}
	if !s.TodayExpense.Equal(types.NewMoneyFromInt(25_000)) {
		t.Errorf("expense = %s, want 25000", s.TodayExpense)
	}
	if !s.TodayNet.Equal(types.NewMoneyFromInt(100_000)) {
		t.Errorf("net = %s, want 100000", s.TodayNet)
	}
	if !s.TotalPreviousBalance.Equal(types.NewMoneyFromInt(400_000)) {
		t.Errorf("previous = %s, want 400000", s.TotalPreviousBalance)
	}

	acc := s.Accounts[0]
	if !acc.PreviousBalance.Add(acc.TodayNet).Equal(acc.CurrentBalance) {
		t.Error("previous + net must equal current per account")
	}
}

func TestReconcileTransferPair(t *testing.T) {
	w := testWindow()
	kasID, bankID := id.New(), id.New()
	accounts := []account.Account{
		{ID: kasID, Name: "Kas", Balance: types.NewMoneyFromInt(450_000)},
		{ID: bankID, Name: "Bank", Balance: types.NewMoneyFromInt(50_000)},
	}
	entries := []ledger.Entry{
		entryAt(kasID, 50_000, ledger.CategoryTransferOut, w.From.Add(time.Hour)),
		entryAt(bankID, 50_000, ledger.CategoryTransferIn, w.From.Add(time.Hour)),
	}

	s := Reconcile(accounts, entries, w)

	// transfers stay out of the global totals
	if !s.TodayIncome.IsZero() || !s.TodayExpense.IsZero() {
		t.Errorf("global totals must exclude transfers, got income=%s expense=%s", s.TodayIncome, s.TodayExpense)
	}
	if !s.TotalPreviousBalance.Equal(types.NewMoneyFromInt(500_000)) {
		t.Errorf("previous total = %s, want 500000", s.TotalPreviousBalance)
	}

	// but appear on the paired accounts individually
	for _, acc := range s.Accounts {
		switch acc.AccountID {
		case kasID:
			if !acc.TodayExpense.Equal(types.NewMoneyFromInt(50_000)) {
				t.Errorf("kas expense = %s, want 50000", acc.TodayExpense)
			}
		case bankID:
			if !acc.TodayIncome.Equal(types.NewMoneyFromInt(50_000)) {
				t.Errorf("bank income = %s, want 50000", acc.TodayIncome)
			}
		}
		if !acc.PreviousBalance.Add(acc.TodayNet).Equal(acc.CurrentBalance) {
			t.Errorf("account %s: previous + net != current", acc.AccountName)
		}
	}
}

func TestReconcileUnknownAccount(t *testing.T) {
	w := testWindow()
	knownID := id.New()
	accounts := []account.Account{
		{ID: knownID, Name: "Kas", Balance: types.NewMoneyFromInt(100_000)},
	}
	// entry against an account missing from the snapshot list
	entries := []ledger.Entry{
		entryAt(id.New(), 10_000, ledger.CategoryIncome, w.From.Add(time.Hour)),
	}

	s := Reconcile(accounts, entries, w)

	// global totals still count it
	if !s.TodayIncome.Equal(types.NewMoneyFromInt(10_000)) {
		t.Errorf("income = %s, want 10000", s.TodayIncome)
	}
	// no per-account figure absorbs it
	if len(s.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(s.Accounts))
	}
	if !s.Accounts[0].TodayIncome.IsZero() {
		t.Error("known account must not absorb the orphan entry")
	}
	// consequence: the global previous balance moves, the per-account one does not
	if !s.TotalPreviousBalance.Equal(types.NewMoneyFromInt(90_000)) {
		t.Errorf("total previous = %s, want 90000", s.TotalPreviousBalance)
	}
	if !s.Accounts[0].PreviousBalance.Equal(types.NewMoneyFromInt(100_000)) {
		t.Errorf("account previous = %s, want 100000", s.Accounts[0].PreviousBalance)
	}
}

func TestReconcileIgnoresOutOfWindowEntries(t *testing.T) {
	w := testWindow()
	accID := id.New()
	accounts := []account.Account{{ID: accID, Balance: types.NewMoneyFromInt(10_000)}}
	entries := []ledger.Entry{
		entryAt(accID, 5_000, ledger.CategoryIncome, w.From.Add(-time.Minute)),
		entryAt(accID, 7_000, ledger.CategoryIncome, w.To), // half-open: boundary excluded
	}

	s := Reconcile(accounts, entries, w)
	if !s.TodayIncome.IsZero() {
		t.Errorf("income = %s, want 0", s.TodayIncome)
	}
}

func TestDayWindow(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatal(err)
	}

	// 23:30 UTC on March 9 is already 06:30 on March 10 in Jakarta
	at := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	w := DayWindow(at, jakarta)

	wantFrom := time.Date(2026, 3, 10, 0, 0, 0, 0, jakarta)
	if !w.From.Equal(wantFrom) {
		t.Errorf("from = %s, want %s", w.From, wantFrom)
	}
	if !w.To.Equal(wantFrom.AddDate(0, 0, 1)) {
		t.Errorf("to = %s, want next midnight", w.To)
	}
	if !w.Contains(at) {
		t.Error("window must contain the instant it was derived from")
	}
}
