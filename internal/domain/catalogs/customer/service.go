package customer

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/pkg/logger"
)

// Service provides business operations for the customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "id", c.ID, "name", c.Name)
	return nil
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// GetByReference retrieves a customer by its external reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (*Customer, error) {
	return s.repo.FindByReference(ctx, reference)
}

// Update validates and stores customer changes.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	return s.repo.Delete(ctx, customerID)
}

// List retrieves customers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.List(ctx, filter)
}
