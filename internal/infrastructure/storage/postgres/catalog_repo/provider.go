package catalog_repo

import (
	"factura/internal/domain/catalogs/provider"
	"factura/internal/infrastructure/storage/postgres"
)

const providerTable = "cat_providers"

// ProviderRepo implements provider.Repository.
type ProviderRepo struct {
	*BaseCatalogRepo[*provider.Provider]
}

// NewProviderRepo creates a new provider repository.
func NewProviderRepo(txManager *postgres.TxManager) *ProviderRepo {
	return &ProviderRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*provider.Provider](
			txManager,
			providerTable,
			postgres.ExtractDBColumns[provider.Provider](),
			[]string{"name", "company", "email"},
			func() *provider.Provider { return &provider.Provider{} },
		),
	}
}

// Ensure compile-time interface compliance.
var _ provider.Repository = (*ProviderRepo)(nil)
