package advance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/ledger"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	advances map[id.ID]*Advance
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{advances: make(map[id.ID]*Advance)}
}

func (r *fakeRepo) Create(ctx context.Context, a *Advance) error {
	copied := *a
	r.advances[a.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, advanceID id.ID) (*Advance, error) {
	a, ok := r.advances[advanceID]
	if !ok {
		return nil, apperror.NewNotFound("advance", advanceID)
	}
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, advanceID id.ID) (*Advance, error) {
	return r.GetByID(ctx, advanceID)
}

func (r *fakeRepo) Update(ctx context.Context, a *Advance) error {
	copied := *a
	r.advances[a.ID] = &copied
	return nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Advance, error) {
	var out []Advance
	for _, a := range r.advances {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeRepo) ListOpen(ctx context.Context) ([]Advance, error) {
	var out []Advance
	for _, a := range r.advances {
		if a.Status == StatusOpen {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeLedger struct {
	entries []ledger.Entry
}

func (f *fakeLedger) Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error) {
	f.entries = append(f.entries, e)
	return &e, nil
}

func issue(t *testing.T, svc *Service, amount int64) *Advance {
	t.Helper()
	a := &Advance{EmployeeName: "Sari", Amount: types.NewMoneyFromInt(amount)}
	require.NoError(t, svc.Issue(context.Background(), a, id.New()))
	return a
}

func TestIssue(t *testing.T) {
	repo := newFakeRepo()
	cash := &fakeLedger{}
	svc := NewService(repo, cash, fakeTxManager{})

	a := issue(t, svc, 200_000)

	assert.Equal(t, StatusOpen, a.Status)
	assert.True(t, a.Outstanding().Equal(types.NewMoneyFromInt(200_000)))

	require.Len(t, cash.entries, 1)
	e := cash.entries[0]
	assert.Equal(t, ledger.EntryTypePanjarPengambilan, e.EntryType)
	assert.Equal(t, ledger.CategoryExpense, ledger.Classify(e))
	assert.Equal(t, ledger.ReferenceAdvance, e.ReferenceType)
	require.NotNil(t, e.ReferenceID)
	assert.Equal(t, a.ID, *e.ReferenceID)
}

func TestIssueRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeLedger{}, fakeTxManager{})
	a := &Advance{EmployeeName: "Sari", Amount: types.ZeroMoney()}
	require.Error(t, svc.Issue(context.Background(), a, id.New()))
}

func TestRepayPartialThenSettle(t *testing.T) {
	repo := newFakeRepo()
	cash := &fakeLedger{}
	svc := NewService(repo, cash, fakeTxManager{})
	a := issue(t, svc, 200_000)

	result, err := svc.Repay(context.Background(), a.ID, id.New(), types.NewMoneyFromInt(150_000))
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, result.Status)
	assert.True(t, result.Outstanding().Equal(types.NewMoneyFromInt(50_000)))

	result, err = svc.Repay(context.Background(), a.ID, id.New(), types.NewMoneyFromInt(50_000))
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, result.Status)
	assert.True(t, result.Outstanding().IsZero())

	// one pengambilan plus two pelunasan entries
	require.Len(t, cash.entries, 3)
	assert.Equal(t, ledger.CategoryIncome, ledger.Classify(cash.entries[1]))
	assert.Equal(t, ledger.EntryTypePanjarPelunasan, cash.entries[2].EntryType)
}

func TestRepayRejectsOverRepayment(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeLedger{}, fakeTxManager{})
	a := issue(t, svc, 100_000)

	_, err := svc.Repay(context.Background(), a.ID, id.New(), types.NewMoneyFromInt(100_001))
	require.Error(t, err)
}

func TestRepayRejectsSettledAdvance(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeLedger{}, fakeTxManager{})
	a := issue(t, svc, 100_000)

	_, err := svc.Repay(context.Background(), a.ID, id.New(), types.NewMoneyFromInt(100_000))
	require.NoError(t, err)

	_, err = svc.Repay(context.Background(), a.ID, id.New(), types.NewMoneyFromInt(1))
	require.Error(t, err)
}
