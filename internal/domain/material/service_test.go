package material

import (
	"context"
	"testing"
	"time"

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
	materials map[id.ID]*Material
	movements []Movement
}

func newFakeRepo(materials ...*Material) *fakeRepo {
	r := &fakeRepo{materials: make(map[id.ID]*Material)}
	for _, m := range materials {
		r.materials[m.ID] = m
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, m *Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, materialID id.ID) (*Material, error) {
	m, ok := r.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID)
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*Material, error) {
	return r.GetByID(ctx, materialID)
}

func (r *fakeRepo) Update(ctx context.Context, m *Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Material, error) {
	var out []Material
	for _, m := range r.materials {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeRepo) ListBelowMinimum(ctx context.Context) ([]Material, error) {
	var out []Material
	for _, m := range r.materials {
		if m.IsBelowMinimum() {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeRepo) SetCounters(ctx context.Context, materialID id.ID, remaining, cumulative types.Quantity) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID)
	}
	m.RemainingStock = remaining
	m.CumulativeUsage = cumulative
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeRepo) InsertMovements(ctx context.Context, movements []Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	return r.movements, nil
}

func stockMaterial(name string, remaining int64) *Material {
	m := New(name, KindStock, "meter", types.NewMoneyFromInt(10_000))
	m.RemainingStock = types.NewQuantityFromInt(remaining)
	return m
}

func TestApplyProductionConsumption(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 10)
	repo := newFakeRepo(vinyl)
	svc := NewService(repo, fakeTxManager{})
	orderID := id.New()

	// 2 units, 3.0 per unit
	movements, err := svc.ApplyProductionConsumption(context.Background(), "order", orderID, []ProductionItem{
		{
			Quantity: types.NewQuantityFromInt(2),
			Materials: []BOMLine{
				{MaterialID: vinyl.ID, Quantity: types.NewQuantityFromInt(3)},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)

	mv := movements[0]
	assert.Equal(t, MovementOut, mv.Type)
	assert.Equal(t, ReasonProductionConsumption, mv.Reason)
	assert.Equal(t, types.NewQuantityFromInt(6), mv.Quantity)
	assert.Equal(t, types.NewQuantityFromInt(10), mv.PreviousStock)
	assert.Equal(t, types.NewQuantityFromInt(4), mv.NewStock)
	assert.True(t, mv.Shortage.IsZero())
	assert.Equal(t, types.NewQuantityFromInt(4), repo.materials[vinyl.ID].RemainingStock)
}

func TestApplyProductionConsumptionClampsAtZero(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 4)
	repo := newFakeRepo(vinyl)
	svc := NewService(repo, fakeTxManager{})

	movements, err := svc.ApplyProductionConsumption(context.Background(), "order", id.New(), []ProductionItem{
		{
			Quantity: types.NewQuantityFromInt(1),
			Materials: []BOMLine{
				{MaterialID: vinyl.ID, Quantity: types.NewQuantityFromInt(6)},
			},
		},
	})
	require.NoError(t, err, "over-consumption must not fail production")
	require.Len(t, movements, 1)

	mv := movements[0]
	// the movement keeps the full requested quantity; the clamp shows as shortage
	assert.Equal(t, types.NewQuantityFromInt(6), mv.Quantity)
	assert.Equal(t, types.NewQuantityFromInt(2), mv.Shortage)
	assert.True(t, mv.NewStock.IsZero())
	assert.True(t, repo.materials[vinyl.ID].RemainingStock.IsZero())
}

func TestApplyProductionConsumptionMovesUsageCounterForBeli(t *testing.T) {
	finishing := New("Finishing", KindJasa, "pcs", types.NewMoneyFromInt(5_000))
	repo := newFakeRepo(finishing)
	svc := NewService(repo, fakeTxManager{})

	movements, err := svc.ApplyProductionConsumption(context.Background(), "order", id.New(), []ProductionItem{
		{
			Quantity: types.NewQuantityFromInt(3),
			Materials: []BOMLine{
				{MaterialID: finishing.ID, Quantity: types.NewQuantityFromInt(1)},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)

	// OUT tags the semantic direction, yet the usage counter goes up
	mv := movements[0]
	assert.Equal(t, MovementOut, mv.Type)
	assert.True(t, mv.PreviousStock.IsZero())
	assert.Equal(t, types.NewQuantityFromInt(3), mv.NewStock)
	assert.Equal(t, types.NewQuantityFromInt(3), repo.materials[finishing.ID].CumulativeUsage)
	assert.True(t, repo.materials[finishing.ID].RemainingStock.IsZero())
}

func TestApplyProductionConsumptionAggregatesPerMaterial(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 100)
	repo := newFakeRepo(vinyl)
	svc := NewService(repo, fakeTxManager{})

	// the same material appears in two items: one movement, summed usage
	movements, err := svc.ApplyProductionConsumption(context.Background(), "order", id.New(), []ProductionItem{
		{
			Quantity:  types.NewQuantityFromInt(2),
			Materials: []BOMLine{{MaterialID: vinyl.ID, Quantity: types.NewQuantityFromInt(3)}},
		},
		{
			Quantity:  types.NewQuantityFromInt(1),
			Materials: []BOMLine{{MaterialID: vinyl.ID, Quantity: types.NewQuantityFromFloat64(2.5)}},
		},
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, types.NewQuantityFromFloat64(8.5), movements[0].Quantity)
}

func TestApplyProductionConsumptionEmpty(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeTxManager{})
	movements, err := svc.ApplyProductionConsumption(context.Background(), "order", id.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestReceivePurchaseOrder(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 5)
	jasa := New("Laminasi", KindJasa, "pcs", types.NewMoneyFromInt(2_000))
	repo := newFakeRepo(vinyl, jasa)
	svc := NewService(repo, fakeTxManager{})

	movements, err := svc.ReceivePurchaseOrder(context.Background(), id.New(), []ReceiptLine{
		{MaterialID: vinyl.ID, Quantity: types.NewQuantityFromInt(20)},
		{MaterialID: jasa.ID, Quantity: types.NewQuantityFromInt(2)},
	})
	require.NoError(t, err)
	require.Len(t, movements, 2)

	assert.Equal(t, MovementIn, movements[0].Type)
	assert.Equal(t, ReasonPurchase, movements[0].Reason)
	assert.Equal(t, types.NewQuantityFromInt(25), repo.materials[vinyl.ID].RemainingStock)

	// jasa lines mirror consumption: OUT movement, usage counter up
	assert.Equal(t, MovementOut, movements[1].Type)
	assert.Equal(t, types.NewQuantityFromInt(2), repo.materials[jasa.ID].CumulativeUsage)
}

func TestReceivePurchaseOrderRejectsNonPositiveQuantity(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 5)
	svc := NewService(newFakeRepo(vinyl), fakeTxManager{})

	_, err := svc.ReceivePurchaseOrder(context.Background(), id.New(), []ReceiptLine{
		{MaterialID: vinyl.ID, Quantity: 0},
	})
	require.Error(t, err)
}

func TestAdjust(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 10)
	repo := newFakeRepo(vinyl)
	svc := NewService(repo, fakeTxManager{})

	mv, err := svc.Adjust(context.Background(), vinyl.ID, types.NewQuantityFromInt(7), "opname maret")
	require.NoError(t, err)

	assert.Equal(t, MovementAdjustment, mv.Type)
	assert.Equal(t, types.NewQuantityFromInt(3), mv.Quantity) // absolute delta
	assert.Equal(t, types.NewQuantityFromInt(7), mv.NewStock)
	assert.Equal(t, types.NewQuantityFromInt(7), repo.materials[vinyl.ID].RemainingStock)
}

func TestAdjustRejectsNegativeTarget(t *testing.T) {
	vinyl := stockMaterial("Vinyl", 10)
	svc := NewService(newFakeRepo(vinyl), fakeTxManager{})

	_, err := svc.Adjust(context.Background(), vinyl.ID, types.NewQuantityFromInt(-1), "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestAdjustRejectsNonStockKind(t *testing.T) {
	jasa := New("Laminasi", KindJasa, "pcs", types.NewMoneyFromInt(2_000))
	svc := NewService(newFakeRepo(jasa), fakeTxManager{})

	_, err := svc.Adjust(context.Background(), jasa.ID, types.NewQuantityFromInt(5), "")
	require.Error(t, err)
}

func TestParseMovementFilters(t *testing.T) {
	for _, valid := range []string{"IN", "OUT", "ADJUSTMENT"} {
		mt, err := ParseMovementType(valid)
		require.NoError(t, err)
		assert.Equal(t, MovementType(valid), mt)
	}
	_, err := ParseMovementType("RETURN")
	require.Error(t, err)

	for _, valid := range []string{"PURCHASE", "PRODUCTION_CONSUMPTION", "PRODUCTION_ACQUISITION", "ADJUSTMENT"} {
		r, err := ParseMovementReason(valid)
		require.NoError(t, err)
		assert.Equal(t, MovementReason(valid), r)
	}
	_, err = ParseMovementReason("SHRINKAGE")
	require.Error(t, err)
}
