package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"factura/internal/core/apperror"
	"factura/internal/domain/catalogs/customer"
	"factura/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*customer.Customer](
			txManager,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			[]string{"name", "reference", "company", "email"},
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// FindByReference retrieves a customer by its external reference.
func (r *CustomerRepo) FindByReference(ctx context.Context, reference string) (*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"reference": reference}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", reference)
		}
		return nil, err
	}
	return c, nil
}

// Ensure compile-time interface compliance.
var _ customer.Repository = (*CustomerRepo)(nil)
