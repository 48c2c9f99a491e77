package repair

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/account"
	"kasira/internal/domain/cashflow"
	"kasira/internal/domain/ledger"
	"kasira/internal/domain/trade"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEntries struct {
	entries []ledger.Entry
}

func (r *fakeEntries) Insert(ctx context.Context, e *ledger.Entry) error {
	r.entries = append(r.entries, *e)
	return nil
}

// InsertIfAbsent mirrors the store's partial unique index: only
// backfill-synthesized references are keyed unique.
func (r *fakeEntries) InsertIfAbsent(ctx context.Context, e *ledger.Entry) (bool, error) {
	if e.ReferenceType == ledger.ReferenceOrderBackfill && e.ReferenceID != nil {
		for _, existing := range r.entries {
			if existing.ReferenceType == e.ReferenceType &&
				existing.ReferenceID != nil &&
				*existing.ReferenceID == *e.ReferenceID {
				return false, nil
			}
		}
	}
	r.entries = append(r.entries, *e)
	return true, nil
}

func (r *fakeEntries) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	for i := range r.entries {
		if r.entries[i].ID == entryID {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, apperror.NewNotFound("ledger entry", entryID)
}

func (r *fakeEntries) List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Entry, error) {
	return r.entries, nil
}

func (r *fakeEntries) ListWindow(ctx context.Context, from, to time.Time) ([]ledger.Entry, error) {
	return r.entries, nil
}

func (r *fakeEntries) ListByReference(ctx context.Context, refType string, refID id.ID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID != nil && *e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntries) ExistsByReference(ctx context.Context, refType string, refID id.ID, category ledger.Category) (bool, error) {
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID != nil && *e.ReferenceID == refID && ledger.Classify(e) == category {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEntries) ListReferencing(ctx context.Context, refType string) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range r.entries {
		if e.ReferenceType == refType && e.ReferenceID != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntries) ListByAccount(ctx context.Context, accountID id.ID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntries) Delete(ctx context.Context, entryID id.ID) error {
	for i := range r.entries {
		if r.entries[i].ID == entryID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("ledger entry", entryID)
}

type fakeAccounts struct {
	accounts map[id.ID]*account.Account
}

func newFakeAccounts(accs ...*account.Account) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[id.ID]*account.Account)}
	for _, acc := range accs {
		f.accounts[acc.ID] = acc
	}
	return f
}

func (f *fakeAccounts) Create(ctx context.Context, acc *account.Account) error {
	f.accounts[acc.ID] = acc
	return nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, accountID id.ID) (*account.Account, error) {
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID)
	}
	copied := *acc
	return &copied, nil
}

func (f *fakeAccounts) Update(ctx context.Context, acc *account.Account) error { return nil }

func (f *fakeAccounts) List(ctx context.Context) ([]account.Account, error) {
	var out []account.Account
	for _, acc := range f.accounts {
		out = append(out, *acc)
	}
	return out, nil
}

func (f *fakeAccounts) ListPaymentAccounts(ctx context.Context) ([]account.Account, error) {
	return f.List(ctx)
}

func (f *fakeAccounts) Exists(ctx context.Context, accountID id.ID) (bool, error) {
	_, ok := f.accounts[accountID]
	return ok, nil
}

func (f *fakeAccounts) AddToBalance(ctx context.Context, accountID id.ID, delta types.Money) error {
	acc, ok := f.accounts[accountID]
	if !ok {
		return apperror.NewNotFound("account", accountID)
	}
	acc.Balance = acc.Balance.Add(delta)
	return nil
}

type fakeOrders struct {
	orders map[id.ID]*trade.Order
}

func newFakeOrders(orders ...*trade.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[id.ID]*trade.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) Create(ctx context.Context, o *trade.Order) error { return nil }

func (f *fakeOrders) GetByID(ctx context.Context, orderID id.ID) (*trade.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrders) GetForUpdate(ctx context.Context, orderID id.ID) (*trade.Order, error) {
	return f.GetByID(ctx, orderID)
}

func (f *fakeOrders) Update(ctx context.Context, o *trade.Order) error { return nil }

func (f *fakeOrders) List(ctx context.Context, filter trade.ListFilter) ([]trade.Order, error) {
	var out []trade.Order
	for _, o := range f.orders {
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.CreatedAt.Before(*filter.To) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) ListAll(ctx context.Context) ([]trade.Order, error) {
	return f.List(ctx, trade.ListFilter{})
}

func (f *fakeOrders) InsertItems(ctx context.Context, items []trade.Item) error { return nil }

func (f *fakeOrders) GetItems(ctx context.Context, orderID id.ID) ([]trade.Item, error) {
	return nil, nil
}

func (f *fakeOrders) NextNumber(ctx context.Context, day time.Time) (string, error) {
	return "ORD-TEST-0001", nil
}

type fakeAuditor struct {
	actions []string
}

func (f *fakeAuditor) Record(ctx context.Context, action, entity string, entityID string, payload any) error {
	f.actions = append(f.actions, action)
	return nil
}

func paidOrder(accID id.ID, amount int64, at time.Time) *trade.Order {
	paymentAcc := accID
	return &trade.Order{
		ID:               id.New(),
		Number:           "ORD-20260310-0001",
		CustomerName:     "Budi",
		Status:           trade.StatusSelesai,
		Total:            types.NewMoneyFromInt(amount),
		AmountPaid:       types.NewMoneyFromInt(amount),
		PaymentAccountID: &paymentAcc,
		CreatedAt:        at,
	}
}

func TestBackfillOrderPayments(t *testing.T) {
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	accID := id.New()
	accounts := newFakeAccounts(&account.Account{ID: accID, Name: "Kas", Balance: types.ZeroMoney()})
	entries := &fakeEntries{}
	auditor := &fakeAuditor{}

	paid := paidOrder(accID, 75_000, day)
	unpaid := &trade.Order{ID: id.New(), CustomerName: "Tono", AmountPaid: types.ZeroMoney(), CreatedAt: day}
	orders := newFakeOrders(paid, unpaid)

	svc := NewService(entries, accounts, orders, fakeTxManager{}, auditor, time.UTC)

	result, err := svc.BackfillOrderPayments(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, entries.entries, 1)

	e := entries.entries[0]
	assert.Equal(t, ledger.EntryTypeOrderan, e.EntryType)
	assert.Equal(t, ledger.ReferenceOrderBackfill, e.ReferenceType)
	require.NotNil(t, e.ReferenceID)
	assert.Equal(t, paid.ID, *e.ReferenceID)
	assert.True(t, accounts.accounts[accID].Balance.Equal(types.NewMoneyFromInt(75_000)))
	assert.Equal(t, []string{"repair.backfill"}, auditor.actions)
}

func TestBackfillSkipsOrdersPaidThroughLedger(t *testing.T) {
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	accID := id.New()
	accounts := newFakeAccounts(&account.Account{ID: accID, Name: "Kas", Balance: types.NewMoneyFromInt(75_000)})

	paid := paidOrder(accID, 75_000, day)
	orders := newFakeOrders(paid)

	// The order was paid in two installments through the normal path, so it
	// carries two income entries against the same order reference.
	refID := paid.ID
	first := ledger.NewEntry(accID, types.NewMoneyFromInt(50_000), ledger.CategoryIncome)
	first.ReferenceType = ledger.ReferenceOrder
	first.ReferenceID = &refID
	first.CreatedAt = day
	second := ledger.NewEntry(accID, types.NewMoneyFromInt(25_000), ledger.CategoryIncome)
	second.ReferenceType = ledger.ReferenceOrder
	second.ReferenceID = &refID
	second.CreatedAt = day
	entries := &fakeEntries{entries: []ledger.Entry{first, second}}

	svc := NewService(entries, accounts, orders, fakeTxManager{}, nil, time.UTC)

	result, err := svc.BackfillOrderPayments(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, entries.entries, 2)
	assert.True(t, accounts.accounts[accID].Balance.Equal(types.NewMoneyFromInt(75_000)))
}

func TestBackfillPlacesEntryInRepairedDay(t *testing.T) {
	// Backfilling a past day must stamp the entry into that day's window,
	// otherwise its reconciliation keeps missing the payment and the day the
	// repair ran absorbs it instead.
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	accID := id.New()
	accounts := newFakeAccounts(&account.Account{ID: accID, Balance: types.ZeroMoney()})
	entries := &fakeEntries{}
	paid := paidOrder(accID, 75_000, day.Add(9*time.Hour))
	svc := NewService(entries, accounts, newFakeOrders(paid), fakeTxManager{}, nil, time.UTC)

	_, err := svc.BackfillOrderPayments(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, entries.entries, 1)

	window := cashflow.DayWindow(day, time.UTC)
	e := entries.entries[0]
	assert.False(t, e.CreatedAt.Before(window.From),
		"entry %s predates the repaired day", e.CreatedAt)
	assert.True(t, e.CreatedAt.Before(window.To),
		"entry %s lands after the repaired day", e.CreatedAt)
}

func TestBackfillIsIdempotent(t *testing.T) {
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	accID := id.New()
	accounts := newFakeAccounts(&account.Account{ID: accID, Name: "Kas", Balance: types.ZeroMoney()})
	entries := &fakeEntries{}
	orders := newFakeOrders(paidOrder(accID, 75_000, day))
	svc := NewService(entries, accounts, orders, fakeTxManager{}, nil, time.UTC)

	_, err := svc.BackfillOrderPayments(context.Background(), day)
	require.NoError(t, err)

	result, err := svc.BackfillOrderPayments(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, entries.entries, 1)
	assert.True(t, accounts.accounts[accID].Balance.Equal(types.NewMoneyFromInt(75_000)))
}

func TestBackfillSkipsOrdersOutsideDay(t *testing.T) {
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	accID := id.New()
	accounts := newFakeAccounts(&account.Account{ID: accID, Balance: types.ZeroMoney()})
	entries := &fakeEntries{}
	orders := newFakeOrders(paidOrder(accID, 10_000, day.AddDate(0, 0, -1)))
	svc := NewService(entries, accounts, orders, fakeTxManager{}, nil, time.UTC)

	result, err := svc.BackfillOrderPayments(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Empty(t, entries.entries)
}

func TestCleanupOrphanEntries(t *testing.T) {
	accID := id.New()
	accounts := newFakeAccounts(&account.Account{ID: accID, Balance: types.NewMoneyFromInt(100_000)})

	alive := paidOrder(accID, 40_000, time.Now())
	orders := newFakeOrders(alive)

	aliveRef := alive.ID
	orphanRef := id.New() // order deleted from the store

	aliveEntry := ledger.NewEntry(accID, types.NewMoneyFromInt(40_000), ledger.CategoryIncome)
	aliveEntry.ReferenceType = ledger.ReferenceOrder
	aliveEntry.ReferenceID = &aliveRef

	orphanEntry := ledger.NewEntry(accID, types.NewMoneyFromInt(60_000), ledger.CategoryIncome)
	orphanEntry.ReferenceType = ledger.ReferenceOrder
	orphanEntry.ReferenceID = &orphanRef

	// Synthesized entries referencing deleted orders are orphans too.
	orphanBackfill := ledger.NewEntry(accID, types.NewMoneyFromInt(10_000), ledger.CategoryIncome)
	orphanBackfill.ReferenceType = ledger.ReferenceOrderBackfill
	orphanBackfill.ReferenceID = &orphanRef

	entries := &fakeEntries{entries: []ledger.Entry{aliveEntry, orphanEntry, orphanBackfill}}
	auditor := &fakeAuditor{}
	svc := NewService(entries, accounts, orders, fakeTxManager{}, auditor, time.UTC)

	result, err := svc.CleanupOrphanEntries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 2, result.Deleted)
	require.Len(t, entries.entries, 1)
	assert.Equal(t, aliveEntry.ID, entries.entries[0].ID)

	// the deleted income entries' deltas were reversed
	assert.True(t, accounts.accounts[accID].Balance.Equal(types.NewMoneyFromInt(30_000)))
	assert.Equal(t, []string{"repair.cleanup"}, auditor.actions)
}

func TestVerifyBalances(t *testing.T) {
	okID, driftID := id.New(), id.New()
	accounts := newFakeAccounts(
		&account.Account{
			ID: okID, Name: "Kas",
			InitialBalance: types.NewMoneyFromInt(100_000),
			Balance:        types.NewMoneyFromInt(125_000),
		},
		&account.Account{
			ID: driftID, Name: "Bank",
			InitialBalance: types.NewMoneyFromInt(0),
			Balance:        types.NewMoneyFromInt(99_000), // log says 50_000
		},
	)

	entries := &fakeEntries{entries: []ledger.Entry{
		ledger.NewEntry(okID, types.NewMoneyFromInt(25_000), ledger.CategoryIncome),
		ledger.NewEntry(driftID, types.NewMoneyFromInt(50_000), ledger.CategoryIncome),
	}}
	svc := NewService(entries, accounts, newFakeOrders(), fakeTxManager{}, nil, time.UTC)

	drifts, err := svc.VerifyBalances(context.Background())
	require.NoError(t, err)

	require.Len(t, drifts, 1)
	d := drifts[0]
	assert.Equal(t, driftID, d.AccountID)
	assert.True(t, d.Recomputed.Equal(types.NewMoneyFromInt(50_000)))
	assert.True(t, d.Difference.Equal(types.NewMoneyFromInt(49_000)))

	// read-only: nothing corrected
	assert.True(t, accounts.accounts[driftID].Balance.Equal(types.NewMoneyFromInt(99_000)))
}
