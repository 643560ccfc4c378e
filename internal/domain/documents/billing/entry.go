package billing

import (
	"context"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/types"
)

// Entry is a single billable line item. Entries exist only inside a document
// (composition): the document assigns entry IDs and gates all mutation on its
// own status.
type Entry struct {
	// EntryID is unique within the owning document, assigned in document
	// order starting at 1, never reused after deletion.
	EntryID int `db:"entry_id" json:"entryId"`

	// Description of the billed item or service
	Description string `db:"description" json:"description"`

	// Unit is an optional unit label ("GB", "hours")
	Unit *string `db:"unit" json:"unit"`

	// Quantity and UnitPrice carry ten fractional digits
	Quantity  types.Decimal `db:"quantity" json:"quantity"`
	UnitPrice types.Decimal `db:"unit_price" json:"unitPrice"`

	// Optional billing period bounds (for prorated entries)
	StartDate *time.Time `db:"start_date" json:"startDate"`
	EndDate   *time.Time `db:"end_date" json:"endDate"`

	// Prorated marks period-proportional billing
	Prorated bool `db:"prorated" json:"prorated"`

	// ProductCode is an optional external SKU reference
	ProductCode *string `db:"product_code" json:"productCode"`
}

// Validate checks entry invariants.
func (e *Entry) Validate(ctx context.Context) error {
	if e.Description == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}

	if e.Quantity.IsNegative() {
		return apperror.NewValidation("quantity must not be negative").
			WithDetail("field", "quantity")
	}

	if e.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}

	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return apperror.NewValidation("end date must not precede start date").
			WithDetail("field", "endDate")
	}

	return nil
}

// Subtotal computes quantity × unit price with exact decimal arithmetic.
func (e *Entry) Subtotal() types.Decimal {
	return types.LineSubtotal(e.Quantity, e.UnitPrice)
}
