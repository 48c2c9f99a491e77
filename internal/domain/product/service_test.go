package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	products map[id.ID]*Product
	boms     map[id.ID][]BOMEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: make(map[id.ID]*Product), boms: make(map[id.ID][]BOMEntry)}
}

func (r *fakeRepo) Create(ctx context.Context, p *Product) error {
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	copied := *p
	return &copied, nil
}

func (r *fakeRepo) Update(ctx context.Context, p *Product) error {
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, productID id.ID) error {
	delete(r.products, productID)
	delete(r.boms, productID)
	return nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) SaveBOM(ctx context.Context, productID id.ID, entries []BOMEntry) error {
	r.boms[productID] = entries
	return nil
}

func (r *fakeRepo) GetBOM(ctx context.Context, productID id.ID) ([]BOMEntry, error) {
	return r.boms[productID], nil
}

func TestCreateWithBOM(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeTxManager{})

	p := New("Banner 3x1", "pcs", types.NewMoneyFromInt(75_000))
	p.Materials = []BOMEntry{
		{MaterialID: id.New(), Quantity: types.NewQuantityFromInt(3)},
	}
	require.NoError(t, svc.Create(context.Background(), p))

	got, err := svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Len(t, got.Materials, 1)
}

func TestUpdateReplacesBOM(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeTxManager{})

	p := New("Banner", "pcs", types.NewMoneyFromInt(50_000))
	p.Materials = []BOMEntry{
		{MaterialID: id.New(), Quantity: types.NewQuantityFromInt(2)},
		{MaterialID: id.New(), Quantity: types.NewQuantityFromInt(1)},
	}
	require.NoError(t, svc.Create(context.Background(), p))

	p.Materials = p.Materials[:1]
	require.NoError(t, svc.Update(context.Background(), p))

	got, err := svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Materials, 1)
}

func TestCreateRejectsNonPositiveBOMQuantity(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeTxManager{})
	p := New("Banner", "pcs", types.NewMoneyFromInt(50_000))
	p.Materials = []BOMEntry{{MaterialID: id.New(), Quantity: 0}}
	require.Error(t, svc.Create(context.Background(), p))
}
