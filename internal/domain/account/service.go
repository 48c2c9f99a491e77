package account

import (
	"context"

	"kasira/internal/core/id"
	"kasira/pkg/logger"
)

// Service provides catalog operations for accounts.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new account.
func (s *Service) Create(ctx context.Context, acc *Account) error {
	if err := acc.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return err
	}
	logger.Info(ctx, "account created", "id", acc.ID, "name", acc.Name)
	return nil
}

// GetByID retrieves an account.
func (s *Service) GetByID(ctx context.Context, accountID id.ID) (*Account, error) {
	return s.repo.GetByID(ctx, accountID)
}

// Update modifies account metadata. Balance is never updated through here;
// it moves only via Repository.AddToBalance.
func (s *Service) Update(ctx context.Context, acc *Account) error {
	if err := acc.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, acc)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// ListPaymentAccounts returns accounts usable at the point of sale.
func (s *Service) ListPaymentAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListPaymentAccounts(ctx)
}
