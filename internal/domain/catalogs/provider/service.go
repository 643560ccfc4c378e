package provider

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/domain"
	"factura/pkg/logger"
)

// Service provides business operations for the provider catalog.
type Service struct {
	repo Repository
}

// NewService creates a new provider service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new provider.
func (s *Service) Create(ctx context.Context, p *Provider) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "provider created", "id", p.ID, "name", p.Name)
	return nil
}

// GetByID retrieves a provider.
func (s *Service) GetByID(ctx context.Context, providerID id.ID) (*Provider, error) {
	return s.repo.GetByID(ctx, providerID)
}

// Update validates and stores provider changes.
func (s *Service) Update(ctx context.Context, p *Provider) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a provider.
func (s *Service) Delete(ctx context.Context, providerID id.ID) error {
	return s.repo.Delete(ctx, providerID)
}

// List retrieves providers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Provider], error) {
	return s.repo.List(ctx, filter)
}

// SeriesFor implements series.Resolver against the live catalog. The lookup
// runs on the caller's context so it joins any active transaction and honors
// cancellation. Lookup failures fall back to the platform default series.
func (s *Service) SeriesFor(ctx context.Context, providerID string, kind series.DocumentKind) string {
	pid, err := id.Parse(providerID)
	if err != nil {
		return ""
	}

	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		return ""
	}
	return p.SeriesFor(kind)
}

// Ensure compile-time interface compliance.
var _ series.Resolver = (*Service)(nil)
