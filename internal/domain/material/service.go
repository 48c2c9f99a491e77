package material

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kasira/internal/core/apperror"
	appctx "kasira/internal/core/context"
	"kasira/internal/core/id"
	"kasira/internal/core/tx"
	"kasira/internal/core/types"
	"kasira/pkg/logger"
)

// Service is the stock movement engine. Every operation that moves a counter
// writes the material update and the movement rows inside one database
// transaction: a crash can never leave the counter and the log disagreeing.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new material service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// --- Catalog operations ---

// Create validates and stores a new material.
func (s *Service) Create(ctx context.Context, m *Material) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, m)
}

// GetByID retrieves a material.
func (s *Service) GetByID(ctx context.Context, materialID id.ID) (*Material, error) {
	return s.repo.GetByID(ctx, materialID)
}

// Update modifies material metadata. The stock counters are not writable here;
// they move only through the engine operations below.
func (s *Service) Update(ctx context.Context, m *Material) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	m.RemainingStock = current.RemainingStock
	m.CumulativeUsage = current.CumulativeUsage
	return s.repo.Update(ctx, m)
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]Material, error) {
	return s.repo.List(ctx)
}

// ListBelowMinimum returns stock-kind materials under their reorder threshold.
func (s *Service) ListBelowMinimum(ctx context.Context) ([]Material, error) {
	return s.repo.ListBelowMinimum(ctx)
}

// ListMovements returns movement history.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.ListMovements(ctx, filter)
}

// --- Movement engine ---

// BOMLine is one bill-of-materials row: quantity consumed per unit produced.
type BOMLine struct {
	MaterialID id.ID
	Quantity   types.Quantity
}

// ProductionItem is one order line entering production.
type ProductionItem struct {
	Quantity  types.Quantity
	Materials []BOMLine
}

// ApplyProductionConsumption deducts materials for an order entering
// production. Per item and BOM row, total usage is bom quantity times item
// quantity; usage is aggregated per material before any counter moves.
//
// Stock-kind materials are clamped at zero: over-consumption is absorbed, the
// movement keeps the full requested quantity, and the clamped portion is
// recorded as Shortage and warned about. Beli/jasa materials move their usage
// counter upward while the movement stays OUT/PRODUCTION_CONSUMPTION — the
// type tags the semantic direction of consumption, not the sign of the delta.
func (s *Service) ApplyProductionConsumption(ctx context.Context, refType string, refID id.ID, items []ProductionItem) ([]Movement, error) {
	totals := aggregateUsage(items)
	if len(totals) == 0 {
		return nil, nil
	}

	actor := appctx.ActorOrSystem(ctx)
	var movements []Movement

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		movements = movements[:0]
		for _, usage := range totals {
			m, err := s.repo.GetForUpdate(ctx, usage.materialID)
			if err != nil {
				return fmt.Errorf("lock material %s: %w", usage.materialID, err)
			}

			mv := Movement{
				ID:            id.New(),
				MaterialID:    m.ID,
				Type:          MovementOut,
				Reason:        ReasonProductionConsumption,
				Quantity:      usage.total,
				ReferenceID:   &refID,
				ReferenceType: refType,
				CreatedBy:     actor.UserID,
				CreatedByName: actor.Name,
				CreatedAt:     time.Now().UTC(),
			}

			if m.TracksInventory() {
				mv.PreviousStock = m.RemainingStock
				remaining := m.RemainingStock - usage.total
				if remaining.IsNegative() {
					mv.Shortage = remaining.Neg()
					remaining = 0
					logger.Warn(ctx, "production clamped stock at zero",
						"material_id", m.ID,
						"material", m.Name,
						"requested", usage.total,
						"shortage", mv.Shortage,
						"reference_id", refID,
					)
				}
				mv.NewStock = remaining
				m.RemainingStock = remaining
			} else {
				mv.PreviousStock = m.CumulativeUsage
				m.CumulativeUsage += usage.total
				mv.NewStock = m.CumulativeUsage
			}

			if err := s.repo.SetCounters(ctx, m.ID, m.RemainingStock, m.CumulativeUsage); err != nil {
				return fmt.Errorf("update counters for %s: %w", m.ID, err)
			}
			movements = append(movements, mv)
		}
		return s.repo.InsertMovements(ctx, movements)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production consumption applied",
		"reference_type", refType,
		"reference_id", refID,
		"movements", len(movements),
	)
	return movements, nil
}

// ReceiptLine is one received purchase-order row.
type ReceiptLine struct {
	MaterialID id.ID
	Quantity   types.Quantity
}

// ReceivePurchaseOrder applies received goods. Stock-kind materials gain
// on-hand inventory (IN/PURCHASE); beli/jasa rows follow the usage-counter
// convention and record OUT/PRODUCTION_CONSUMPTION, mirroring consumption.
func (s *Service) ReceivePurchaseOrder(ctx context.Context, poID id.ID, lines []ReceiptLine) ([]Movement, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	for i, l := range lines {
		if !l.Quantity.IsPositive() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
	}

	actor := appctx.ActorOrSystem(ctx)
	var movements []Movement

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		movements = movements[:0]
		for _, line := range lines {
			m, err := s.repo.GetForUpdate(ctx, line.MaterialID)
			if err != nil {
				return fmt.Errorf("lock material %s: %w", line.MaterialID, err)
			}

			mv := Movement{
				ID:            id.New(),
				MaterialID:    m.ID,
				Quantity:      line.Quantity,
				ReferenceID:   &poID,
				ReferenceType: "purchase_order",
				CreatedBy:     actor.UserID,
				CreatedByName: actor.Name,
				CreatedAt:     time.Now().UTC(),
			}

			if m.TracksInventory() {
				mv.Type = MovementIn
				mv.Reason = ReasonPurchase
				mv.PreviousStock = m.RemainingStock
				m.RemainingStock += line.Quantity
				mv.NewStock = m.RemainingStock
			} else {
				mv.Type = MovementOut
				mv.Reason = ReasonProductionConsumption
				mv.PreviousStock = m.CumulativeUsage
				m.CumulativeUsage += line.Quantity
				mv.NewStock = m.CumulativeUsage
			}

			if err := s.repo.SetCounters(ctx, m.ID, m.RemainingStock, m.CumulativeUsage); err != nil {
				return fmt.Errorf("update counters for %s: %w", m.ID, err)
			}
			movements = append(movements, mv)
		}
		return s.repo.InsertMovements(ctx, movements)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order received", "purchase_order_id", poID, "movements", len(movements))
	return movements, nil
}

// Adjust sets a stock-kind material's on-hand quantity to an explicit value
// (stock opname). Unlike production consumption, a negative target is a hard
// error: an operator typing a correction gets told, production does not stall.
func (s *Service) Adjust(ctx context.Context, materialID id.ID, newQuantity types.Quantity, note string) (*Movement, error) {
	actor := appctx.ActorOrSystem(ctx)
	var mv Movement

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, materialID)
		if err != nil {
			return fmt.Errorf("lock material %s: %w", materialID, err)
		}
		if !m.TracksInventory() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"only stock-kind materials can be adjusted").
				WithDetail("material_id", materialID.String()).
				WithDetail("kind", string(m.Kind))
		}
		if newQuantity.IsNegative() {
			// A negative target claims more was removed than exists.
			removed := m.RemainingStock - newQuantity
			return apperror.NewInsufficientStock(m.ID.String(),
				removed.Float64(), m.RemainingStock.Float64())
		}

		delta := newQuantity - m.RemainingStock
		mv = Movement{
			ID:            id.New(),
			MaterialID:    m.ID,
			Type:          MovementAdjustment,
			Reason:        ReasonAdjustment,
			Quantity:      delta.Abs(),
			PreviousStock: m.RemainingStock,
			NewStock:      newQuantity,
			Note:          note,
			CreatedBy:     actor.UserID,
			CreatedByName: actor.Name,
			CreatedAt:     time.Now().UTC(),
		}
		m.RemainingStock = newQuantity

		if err := s.repo.SetCounters(ctx, m.ID, m.RemainingStock, m.CumulativeUsage); err != nil {
			return fmt.Errorf("update counters for %s: %w", m.ID, err)
		}
		return s.repo.InsertMovements(ctx, []Movement{mv})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"material_id", materialID,
		"previous", mv.PreviousStock,
		"new", mv.NewStock,
	)
	return &mv, nil
}

// --- helpers ---

type materialUsage struct {
	materialID id.ID
	total      types.Quantity
}

// aggregateUsage sums BOM usage per material across all items, in a stable
// order so lock acquisition is deterministic.
func aggregateUsage(items []ProductionItem) []materialUsage {
	totals := make(map[id.ID]types.Quantity)
	for _, item := range items {
		for _, bom := range item.Materials {
			if id.IsNil(bom.MaterialID) {
				continue
			}
			used := bom.Quantity.Mul(item.Quantity)
			if !used.IsPositive() {
				continue
			}
			totals[bom.MaterialID] += used
		}
	}

	out := make([]materialUsage, 0, len(totals))
	for mid, total := range totals {
		out = append(out, materialUsage{materialID: mid, total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].materialID.String() < out[j].materialID.String()
	})
	return out
}
