package purchase

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
	"kasira/pkg/logger"
)

// StockReceiver applies received goods to material counters.
type StockReceiver interface {
	ReceivePurchaseOrder(ctx context.Context, poID id.ID, lines []material.ReceiptLine) ([]material.Movement, error)
}

// PaymentLedger records cash entries for supplier payments.
type PaymentLedger interface {
	Record(ctx context.Context, e ledger.Entry) (*ledger.Entry, error)
}

// Service implements purchase order operations.
type Service struct {
	repo      Repository
	materials StockReceiver
	payments  PaymentLedger
	txManager tx.Manager
}

// NewService creates a new purchase service.
func NewService(repo Repository, materials StockReceiver, payments PaymentLedger, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		materials: materials,
		payments:  payments,
		txManager: txManager,
	}
}

// Create stores a new purchase order in draft. Line subtotals and the order
// total are computed here.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	o.ID = id.New()
	o.Status = StatusDraft
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	actor := appctx.ActorOrSystem(ctx)
	o.CreatedBy = actor.UserID
	o.CreatedName = actor.Name

	total := types.ZeroMoney()
	for i := range o.Lines {
		line := &o.Lines[i]
		line.ID = id.New()
		line.OrderID = o.ID
		line.Subtotal = line.UnitPrice.Mul(line.Quantity.Decimal())
		total = total.Add(line.Subtotal)
	}
	o.Total = total

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if o.Number == "" {
			number, err := s.repo.NextNumber(ctx, now)
			if err != nil {
				return fmt.Errorf("allocate po number: %w", err)
			}
			o.Number = number
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		return s.repo.InsertLines(ctx, o.Lines)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order created",
		"id", o.ID,
		"number", o.Number,
		"supplier", o.SupplierName,
		"total", o.Total,
	)
	return nil
}

// GetByID retrieves a purchase order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	o.Lines = lines
	return o, nil
}

// List returns purchase orders matching a filter, without lines.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// Pay records the supplier payment for a draft purchase order. The cash
// entry (pembayaran_po, expense) and the status change commit together.
func (s *Service) Pay(ctx context.Context, orderID, accountID id.ID) (*Order, error) {
	var result *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != StatusDraft {
			return apperror.NewInvalidTransition(string(o.Status), string(StatusPaid))
		}

		e := ledger.NewEntry(accountID, o.Total, ledger.CategoryExpense)
		e.EntryType = ledger.EntryTypePembayaranPO
		e.Description = fmt.Sprintf("Pembayaran PO %s - %s", o.Number, o.SupplierName)
		e.ReferenceNumber = o.Number
		refID := o.ID
		e.ReferenceID = &refID
		e.ReferenceType = ledger.ReferencePurchaseOrder
		if _, err := s.payments.Record(ctx, e); err != nil {
			return fmt.Errorf("record payment entry: %w", err)
		}

		now := time.Now().UTC()
		o.Status = StatusPaid
		o.PaidAt = &now
		o.UpdatedAt = now
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order paid", "id", orderID, "total", result.Total)
	return result, nil
}

// Receive books the goods receipt for a paid purchase order: stock-kind
// materials gain remaining stock, beli/jasa materials move their usage
// counter, and the status change commits with the counter moves.
func (s *Service) Receive(ctx context.Context, orderID id.ID) (*Order, error) {
	var result *Order
	var lineCount int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != StatusPaid {
			return apperror.NewInvalidTransition(string(o.Status), string(StatusReceived))
		}

		lines, err := s.repo.GetLines(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		receipt := make([]material.ReceiptLine, 0, len(lines))
		for _, line := range lines {
			receipt = append(receipt, material.ReceiptLine{
				MaterialID: line.MaterialID,
				Quantity:   line.Quantity,
			})
		}
		if _, err := s.materials.ReceivePurchaseOrder(ctx, orderID, receipt); err != nil {
			return fmt.Errorf("receive stock: %w", err)
		}
		lineCount = len(lines)

		now := time.Now().UTC()
		o.Status = StatusReceived
		o.ReceivedAt = &now
		o.UpdatedAt = now
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order received", "id", orderID, "lines", lineCount)
	return result, nil
}
