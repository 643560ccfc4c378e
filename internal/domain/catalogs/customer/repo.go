package customer

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/domain"
)

// Repository defines persistence operations for customers.
type Repository interface {
	// Create inserts a new customer
	Create(ctx context.Context, c *Customer) error

	// GetByID retrieves customer by ID
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)

	// Update modifies existing customer (with optimistic locking)
	Update(ctx context.Context, c *Customer) error

	// Delete removes a customer
	Delete(ctx context.Context, customerID id.ID) error

	// FindByReference retrieves a customer by its external reference
	FindByReference(ctx context.Context, reference string) (*Customer, error)

	// List retrieves customers with filtering and pagination
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error)
}
