// Package customer provides the Customer catalog.
// Customers are the billed parties referenced by billing documents.
package customer

import (
	"context"
	"regexp"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Customer represents a billed party.
type Customer struct {
	entity.BaseCatalog

	// Reference is a human-readable customer identifier (unique per deployment)
	Reference string `db:"reference" json:"reference"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Company is the official registered name
	Company *string `db:"company" json:"company,omitempty"`

	// Emails receive issued documents
	Email *string `db:"email" json:"email,omitempty"`

	// Address block
	Address1 *string `db:"address_1" json:"address1,omitempty"`
	Address2 *string `db:"address_2" json:"address2,omitempty"`
	City     *string `db:"city" json:"city,omitempty"`
	State    *string `db:"state" json:"state,omitempty"`
	ZipCode  *string `db:"zip_code" json:"zipCode,omitempty"`
	Country  *string `db:"country" json:"country,omitempty"`

	// Fiscal identity
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Sales tax overrides applied to new documents for this customer
	SalesTaxName    *string        `db:"sales_tax_name" json:"salesTaxName,omitempty"`
	SalesTaxPercent *types.Decimal `db:"sales_tax_percent" json:"salesTaxPercent,omitempty"`

	// PaymentDueDays shifts the default due date on issuance
	PaymentDueDays int `db:"payment_due_days" json:"paymentDueDays"`

	// ConsolidatedBilling groups the customer's charges on one document per cycle
	ConsolidatedBilling bool `db:"consolidated_billing" json:"consolidatedBilling"`

	// Extra is a free-form note included in snapshots
	Extra *string `db:"extra" json:"extra,omitempty"`
}

// New creates a new Customer with required fields.
func New(reference, name string) *Customer {
	return &Customer{
		BaseCatalog: entity.NewBaseCatalog(),
		Reference:   reference,
		Name:        name,
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if c.PaymentDueDays < 0 {
		return apperror.NewValidation("payment due days must not be negative").
			WithDetail("field", "paymentDueDays")
	}

	if c.SalesTaxPercent != nil && c.SalesTaxPercent.IsNegative() {
		return apperror.NewValidation("sales tax percent must not be negative").
			WithDetail("field", "salesTaxPercent")
	}

	return nil
}
