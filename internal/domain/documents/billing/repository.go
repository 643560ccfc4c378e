package billing

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/domain"
)

// ListFilter narrows document listings. Zero values mean "no filter".
type ListFilter struct {
	domain.ListFilter

	Kind       series.DocumentKind
	Status     Status
	ProviderID id.ID
	CustomerID id.ID
}

// Repository persists billing documents together with their entries.
// Implementations must store entries as a table part of the document:
// saving a document replaces its entry set atomically.
type Repository interface {
	// Create inserts a new draft with its entries.
	Create(ctx context.Context, doc *Document) error

	// GetByID loads a document with entries sorted by entry id.
	GetByID(ctx context.Context, docID id.ID) (*Document, error)

	// Update persists document fields and replaces the entry set.
	// Returns ConcurrentModification when the stored version moved on.
	Update(ctx context.Context, doc *Document) error

	// DeleteDraft removes a draft document and its entries.
	// Implementations must not be reachable for non-draft documents;
	// the service gates on status before calling.
	DeleteDraft(ctx context.Context, docID id.ID) error

	// List returns documents matching the filter, entries included,
	// along with the total match count for pagination headers.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error)
}
