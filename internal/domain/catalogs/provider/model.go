// Package provider provides the Provider catalog.
// Providers are the billing entities that issue proformas and invoices.
package provider

import (
	"context"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/series"
)

// Flow defines which document kind a provider issues by default.
type Flow string

const (
	FlowProforma Flow = "proforma"
	FlowInvoice  Flow = "invoice"
)

// Provider represents a billing entity issuing documents to customers.
type Provider struct {
	entity.BaseCatalog

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Company is the official registered name
	Company *string `db:"company" json:"company,omitempty"`

	// Flow selects the default document kind for this provider
	Flow Flow `db:"flow" json:"flow"`

	// Series overrides. Empty means the platform default for the kind.
	InvoiceSeries  *string `db:"invoice_series" json:"invoiceSeries,omitempty"`
	ProformaSeries *string `db:"proforma_series" json:"proformaSeries,omitempty"`

	// Contact and address block
	Email    *string `db:"email" json:"email,omitempty"`
	Address1 *string `db:"address_1" json:"address1,omitempty"`
	Address2 *string `db:"address_2" json:"address2,omitempty"`
	City     *string `db:"city" json:"city,omitempty"`
	State    *string `db:"state" json:"state,omitempty"`
	ZipCode  *string `db:"zip_code" json:"zipCode,omitempty"`
	Country  *string `db:"country" json:"country,omitempty"`

	// Fiscal identity
	TaxID              *string `db:"tax_id" json:"taxId,omitempty"`
	RegistrationNumber *string `db:"registration_number" json:"registrationNumber,omitempty"`

	// Bank details printed on issued documents
	BankName    *string `db:"bank_name" json:"bankName,omitempty"`
	BankAccount *string `db:"bank_account" json:"bankAccount,omitempty"`

	// Extra is a free-form note included in snapshots
	Extra *string `db:"extra" json:"extra,omitempty"`
}

// New creates a new Provider with required fields.
func New(name string, flow Flow) *Provider {
	return &Provider{
		BaseCatalog: entity.NewBaseCatalog(),
		Name:        name,
		Flow:        flow,
	}
}

// Validate implements entity.Validatable interface.
func (p *Provider) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	switch p.Flow {
	case FlowProforma, FlowInvoice, "":
	default:
		return apperror.NewValidation("invalid provider flow").
			WithDetail("field", "flow").
			WithDetail("value", string(p.Flow))
	}

	return nil
}

// SeriesFor returns the provider's configured series for a document kind,
// or empty string when the platform default applies.
func (p *Provider) SeriesFor(kind series.DocumentKind) string {
	switch kind {
	case series.KindInvoice:
		if p.InvoiceSeries != nil {
			return *p.InvoiceSeries
		}
	case series.KindProforma:
		if p.ProformaSeries != nil {
			return *p.ProformaSeries
		}
	}
	return ""
}
