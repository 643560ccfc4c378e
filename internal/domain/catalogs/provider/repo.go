package provider

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/domain"
)

// Repository defines persistence operations for providers.
type Repository interface {
	// Create inserts a new provider
	Create(ctx context.Context, p *Provider) error

	// GetByID retrieves provider by ID
	GetByID(ctx context.Context, providerID id.ID) (*Provider, error)

	// Update modifies existing provider (with optimistic locking)
	Update(ctx context.Context, p *Provider) error

	// Delete removes a provider
	Delete(ctx context.Context, providerID id.ID) error

	// List retrieves providers with filtering and pagination
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Provider], error)
}
