package trade

import (
	"context"
	"fmt"
	"time"

	"kasira/internal/core/apperror"
	appctx "kasira/internal/core/context"
	"kasira/internal/core/id"
	"kasira/internal/core/tx"
	"kasira/internal/core/types"
	"kasira/internal/domain/ledger"
	"kasira/internal/domain/material"
	"kasira/internal/domain/product"
	"kasira/pkg/logger"
)

// MaterialConsumer deducts material stock for an order entering production.
type MaterialConsumer interface {
	ApplyProductionConsumption(ctx context.Context, refType string, refID id.ID, items []material.ProductionItem) ([]material.Movement, error)
}

// PaymentLedger records cash entries for order payments.
type PaymentLedger interface {
	Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error)
}

// Service implements the order pipeline.
type Service struct {
	repo      Repository
	products  product.Repository
	materials MaterialConsumer
	payments  PaymentLedger
	txManager tx.Manager
}

// NewService creates a new trade service.
func NewService(repo Repository, products product.Repository, materials MaterialConsumer, payments PaymentLedger, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		materials: materials,
		payments:  payments,
		txManager: txManager,
	}
}

// Create stores a new order in status Pesanan Masuk. Item subtotals and the
// order total are computed here, never trusted from the caller.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	o.ID = id.New()
	o.Status = StatusMasuk
	o.MaterialsDeducted = false
	o.AmountPaid = types.ZeroMoney()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	actor := appctx.ActorOrSystem(ctx)
	o.CreatedBy = actor.UserID
	o.CreatedName = actor.Name

	total := types.ZeroMoney()
	for i := range o.Items {
		item := &o.Items[i]
		item.ID = id.New()
		item.OrderID = o.ID
		item.Subtotal = item.UnitPrice.Mul(item.Quantity.Decimal())
		total = total.Add(item.Subtotal)
	}
	o.Total = total

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if o.Number == "" {
			number, err := s.repo.NextNumber(ctx, now)
			if err != nil {
				return fmt.Errorf("allocate order number: %w", err)
			}
			o.Number = number
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return s.repo.InsertItems(ctx, o.Items)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order created",
		"id", o.ID,
		"number", o.Number,
		"customer", o.CustomerName,
		"total", o.Total,
	)
	return nil
}

// GetByID retrieves an order with its items.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	o.Items = items
	return o, nil
}

// List returns orders matching a filter, without items.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// ChangeStatus moves an order along the pipeline. Entering Proses Produksi
// deducts materials exactly once per order: the deduction and the flag that
// guards it commit in the same transaction as the status change, so a retry
// after failure deducts, and a repeat after success does not.
func (s *Service) ChangeStatus(ctx context.Context, orderID id.ID, to Status) (*Order, error) {
	var result *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == to {
			// no-op repeat, keep it idempotent for double-submits
			result = o
			return nil
		}
		if !CanTransition(o.Status, to) {
			return apperror.NewInvalidTransition(string(o.Status), string(to))
		}

		if to == StatusProduksi && !o.MaterialsDeducted {
			items, err := s.productionItems(ctx, orderID)
			if err != nil {
				return err
			}
			if _, err := s.materials.ApplyProductionConsumption(ctx, ledger.ReferenceOrder, orderID, items); err != nil {
				return fmt.Errorf("deduct materials: %w", err)
			}
			o.MaterialsDeducted = true
		}

		o.Status = to
		o.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order status changed",
		"id", orderID,
		"status", to,
		"materials_deducted", result.MaterialsDeducted,
	)
	return result, nil
}

// productionItems resolves order items into BOM consumption inputs. Items
// whose product carries no bill of materials consume nothing.
func (s *Service) productionItems(ctx context.Context, orderID id.ID) ([]material.ProductionItem, error) {
	orderItems, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	items := make([]material.ProductionItem, 0, len(orderItems))
	for _, item := range orderItems {
		bom, err := s.products.GetBOM(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get bom for product %s: %w", item.ProductID, err)
		}
		if len(bom) == 0 {
			continue
		}
		lines := make([]material.BOMLine, 0, len(bom))
		for _, entry := range bom {
			lines = append(lines, material.BOMLine{
				MaterialID: entry.MaterialID,
				Quantity:   entry.Quantity,
			})
		}
		items = append(items, material.ProductionItem{
			Quantity:  item.Quantity,
			Materials: lines,
		})
	}
	return items, nil
}

// RecordPayment records a customer payment against an order. The cash entry
// and the order's paid amount commit together; overpaying is rejected.
func (s *Service) RecordPayment(ctx context.Context, orderID, accountID id.ID, amount types.Money, description string) (*Order, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	var result *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusBatal {
			return apperror.NewValidation("cannot record payment on a cancelled order").
				WithDetail("orderId", orderID)
		}
		if amount.GreaterThan(o.Remaining()) {
			return apperror.NewValidation("payment exceeds remaining amount").
				WithDetail("remaining", o.Remaining()).
				WithDetail("amount", amount)
		}

		e := ledger.NewEntry(accountID, amount, ledger.CategoryIncome)
		e.EntryType = ledger.EntryTypeOrderan
		e.Description = description
		if e.Description == "" {
			e.Description = fmt.Sprintf("Pembayaran pesanan %s", o.Number)
		}
		e.ReferenceNumber = o.Number
		refID := o.ID
		e.ReferenceID = &refID
		e.ReferenceType = ledger.ReferenceOrder
		if _, err := s.payments.Record(ctx, e); err != nil {
			return fmt.Errorf("record payment entry: %w", err)
		}

		o.AmountPaid = o.AmountPaid.Add(amount)
		o.PaymentAccountID = &accountID
		o.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order payment recorded",
		"id", orderID,
		"amount", amount,
		"paid", result.AmountPaid,
		"remaining", result.Remaining(),
	)
	return result, nil
}

// Cancel moves an order to Dibatalkan. Stock already deducted for production
// stays deducted; the flag is never cleared.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.ChangeStatus(ctx, orderID, StatusBatal)
}
