package product

import (
	"context"
	"fmt"

	"kasira/internal/core/id"
	"kasira/internal/core/tx"
	"kasira/pkg/logger"
)

// Service provides catalog operations for products.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create stores a product together with its bill of materials.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return s.repo.SaveBOM(ctx, p.ID, p.Materials)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name, "bom_lines", len(p.Materials))
	return nil
}

// GetByID retrieves a product with its bill of materials.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	bom, err := s.repo.GetBOM(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get bom: %w", err)
	}
	p.Materials = bom
	return p, nil
}

// Update modifies a product and replaces its bill of materials.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return s.repo.SaveBOM(ctx, p.ID, p.Materials)
	})
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.repo.Delete(ctx, productID)
}

// List returns the catalog without BOMs.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}
