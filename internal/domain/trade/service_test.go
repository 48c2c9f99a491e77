package trade

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/ledger"
	"kasira/internal/domain/material"
	"kasira/internal/domain/product"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders map[id.ID]*Order
	items  map[id.ID][]Item
	seq    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[id.ID]*Order), items: make(map[id.ID][]Item)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *Order) error {
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return apperror.NewNotFound("order", o.ID)
	}
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	var out []Order
	for _, o := range r.orders {
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.CreatedAt.Before(*filter.To) {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListAll(ctx context.Context) ([]Order, error) {
	return r.List(ctx, ListFilter{})
}

func (r *fakeOrderRepo) InsertItems(ctx context.Context, items []Item) error {
	for _, item := range items {
		r.items[item.OrderID] = append(r.items[item.OrderID], item)
	}
	return nil
}

func (r *fakeOrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]Item, error) {
	return r.items[orderID], nil
}

func (r *fakeOrderRepo) NextNumber(ctx context.Context, day time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), r.seq), nil
}

type fakeProductRepo struct {
	boms map[id.ID][]product.BOMEntry
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error { return nil }
func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", productID)
}
func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error  { return nil }
func (r *fakeProductRepo) Delete(ctx context.Context, productID id.ID) error     { return nil }
func (r *fakeProductRepo) List(ctx context.Context) ([]product.Product, error)   { return nil, nil }
func (r *fakeProductRepo) SaveBOM(ctx context.Context, productID id.ID, entries []product.BOMEntry) error {
	return nil
}
func (r *fakeProductRepo) GetBOM(ctx context.Context, productID id.ID) ([]product.BOMEntry, error) {
	return r.boms[productID], nil
}

type fakeConsumer struct {
	calls int
	items []material.ProductionItem
	err   error
}

func (f *fakeConsumer) ApplyProductionConsumption(ctx context.Context, refType string, refID id.ID, items []material.ProductionItem) ([]material.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	f.items = items
	return nil, nil
}

type fakeLedger struct {
	entries []ledger.Entry
}

func (f *fakeLedger) Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error) {
	f.entries = append(f.entries, e)
	return &e, nil
}

func newOrder(t *testing.T, svc *Service, productID id.ID, qty int64, price int64) *Order {
	t.Helper()
	o := &Order{
		CustomerName: "Budi",
		Items: []Item{
			{ProductID: productID, Name: "Banner", Quantity: types.NewQuantityFromInt(qty), UnitPrice: types.NewMoneyFromInt(price)},
		},
	}
	require.NoError(t, svc.Create(context.Background(), o))
	return o
}

func newTestService(boms map[id.ID][]product.BOMEntry) (*Service, *fakeOrderRepo, *fakeConsumer, *fakeLedger) {
	repo := newFakeOrderRepo()
	consumer := &fakeConsumer{}
	payments := &fakeLedger{}
	svc := NewService(repo, &fakeProductRepo{boms: boms}, consumer, payments, fakeTxManager{})
	return svc, repo, consumer, payments
}

func TestCreateComputesTotals(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)

	o := &Order{
		CustomerName: "Budi",
		Items: []Item{
			{ProductID: id.New(), Name: "Banner", Quantity: types.NewQuantityFromFloat64(2.5), UnitPrice: types.NewMoneyFromInt(10_000)},
			{ProductID: id.New(), Name: "Stiker", Quantity: types.NewQuantityFromInt(3), UnitPrice: types.NewMoneyFromInt(5_000), Subtotal: types.NewMoneyFromInt(999)},
		},
	}
	require.NoError(t, svc.Create(context.Background(), o))

	// caller-supplied subtotal is recomputed, never trusted
	assert.True(t, o.Items[1].Subtotal.Equal(types.NewMoneyFromInt(15_000)))
	assert.True(t, o.Total.Equal(types.NewMoneyFromInt(40_000)))
	assert.Equal(t, StatusMasuk, o.Status)
	assert.NotEmpty(t, o.Number)
	assert.Len(t, repo.items[o.ID], 2)
}

func TestCreateRequiresItems(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	err := svc.Create(context.Background(), &Order{CustomerName: "Budi"})
	require.Error(t, err)
}

func TestStatusPipeline(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"forward", StatusMasuk, StatusDesign, true},
		{"skip a stage", StatusMasuk, StatusProduksi, false},
		{"backward", StatusACC, StatusDesign, false},
		{"cancel from middle", StatusDesign, StatusBatal, true},
		{"cancel from production", StatusProduksi, StatusBatal, true},
		{"out of terminal", StatusSelesai, StatusProduksi, false},
		{"out of cancelled", StatusBatal, StatusMasuk, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.ok {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.ok)
			}
		})
	}
}

func TestChangeStatusRejectsInvalidTransition(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	o := newOrder(t, svc, id.New(), 1, 10_000)

	_, err := svc.ChangeStatus(context.Background(), o.ID, StatusProduksi)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestChangeStatusSameStatusIsNoop(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	o := newOrder(t, svc, id.New(), 1, 10_000)

	result, err := svc.ChangeStatus(context.Background(), o.ID, StatusMasuk)
	require.NoError(t, err)
	assert.Equal(t, StatusMasuk, result.Status)
}

func TestEnteringProductionDeductsOnce(t *testing.T) {
	productID := id.New()
	materialID := id.New()
	svc, repo, consumer, _ := newTestService(map[id.ID][]product.BOMEntry{
		productID: {{MaterialID: materialID, Quantity: types.NewQuantityFromInt(2)}},
	})
	o := newOrder(t, svc, productID, 3, 10_000)

	for _, st := range []Status{StatusDesign, StatusACC, StatusProduksi} {
		_, err := svc.ChangeStatus(context.Background(), o.ID, st)
		require.NoError(t, err)
	}

	require.Equal(t, 1, consumer.calls)
	require.Len(t, consumer.items, 1)
	assert.Equal(t, types.NewQuantityFromInt(3), consumer.items[0].Quantity)
	assert.True(t, repo.orders[o.ID].MaterialsDeducted)

	// leaving and re-entering production must not deduct again: the only
	// path back is through cancellation, but the flag alone is the guard
	_, err := svc.ChangeStatus(context.Background(), o.ID, StatusProduksi)
	require.NoError(t, err) // same-status no-op
	assert.Equal(t, 1, consumer.calls)
}

func TestEnteringProductionSkipsProductsWithoutBOM(t *testing.T) {
	productID := id.New()
	svc, _, consumer, _ := newTestService(nil) // no BOM registered
	o := newOrder(t, svc, productID, 2, 10_000)

	for _, st := range []Status{StatusDesign, StatusACC, StatusProduksi} {
		_, err := svc.ChangeStatus(context.Background(), o.ID, st)
		require.NoError(t, err)
	}

	assert.Empty(t, consumer.items)
}

func TestFailedDeductionBlocksStatusChange(t *testing.T) {
	productID := id.New()
	svc, repo, consumer, _ := newTestService(map[id.ID][]product.BOMEntry{
		productID: {{MaterialID: id.New(), Quantity: types.NewQuantityFromInt(1)}},
	})
	consumer.err = fmt.Errorf("database gone")
	o := newOrder(t, svc, productID, 1, 10_000)

	for _, st := range []Status{StatusDesign, StatusACC} {
		_, err := svc.ChangeStatus(context.Background(), o.ID, st)
		require.NoError(t, err)
	}

	_, err := svc.ChangeStatus(context.Background(), o.ID, StatusProduksi)
	require.Error(t, err)

	// nothing committed: status unchanged, flag still clear, retry deducts
	assert.Equal(t, StatusACC, repo.orders[o.ID].Status)
	assert.False(t, repo.orders[o.ID].MaterialsDeducted)

	consumer.err = nil
	_, err = svc.ChangeStatus(context.Background(), o.ID, StatusProduksi)
	require.NoError(t, err)
	assert.Equal(t, 1, consumer.calls)
	assert.True(t, repo.orders[o.ID].MaterialsDeducted)
}

func TestRecordPayment(t *testing.T) {
	svc, _, _, payments := newTestService(nil)
	o := newOrder(t, svc, id.New(), 2, 50_000) // total 100k
	accountID := id.New()

	result, err := svc.RecordPayment(context.Background(), o.ID, accountID, types.NewMoneyFromInt(60_000), "")
	require.NoError(t, err)

	assert.True(t, result.AmountPaid.Equal(types.NewMoneyFromInt(60_000)))
	assert.True(t, result.Remaining().Equal(types.NewMoneyFromInt(40_000)))
	require.NotNil(t, result.PaymentAccountID)
	assert.Equal(t, accountID, *result.PaymentAccountID)

	require.Len(t, payments.entries, 1)
	e := payments.entries[0]
	assert.Equal(t, ledger.EntryTypeOrderan, e.EntryType)
	assert.Equal(t, ledger.ReferenceOrder, e.ReferenceType)
	require.NotNil(t, e.ReferenceID)
	assert.Equal(t, o.ID, *e.ReferenceID)
	assert.Equal(t, o.Number, e.ReferenceNumber)

	// second payment settles the order exactly
	result, err = svc.RecordPayment(context.Background(), o.ID, accountID, types.NewMoneyFromInt(40_000), "pelunasan")
	require.NoError(t, err)
	assert.True(t, result.IsPaid())
}

func TestRecordPaymentRejectsOverpay(t *testing.T) {
	svc, _, _, payments := newTestService(nil)
	o := newOrder(t, svc, id.New(), 1, 100_000)

	_, err := svc.RecordPayment(context.Background(), o.ID, id.New(), types.NewMoneyFromInt(150_000), "")
	require.Error(t, err)
	assert.Empty(t, payments.entries)
}

func TestRecordPaymentRejectsCancelledOrder(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	o := newOrder(t, svc, id.New(), 1, 100_000)

	_, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), o.ID, id.New(), types.NewMoneyFromInt(10_000), "")
	require.Error(t, err)
}
