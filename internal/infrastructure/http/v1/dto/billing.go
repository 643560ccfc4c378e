package dto

import (
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/core/types"
	"factura/internal/domain/archive"
	"factura/internal/domain/documents/billing"
)

// --- Request DTOs ---

type CreateBillingDocumentRequest struct {
	ProviderID          string                `json:"providerId" binding:"required"`
	CustomerID          string                `json:"customerId" binding:"required"`
	Currency            string                `json:"currency,omitempty"`
	TransactionCurrency string                `json:"transactionCurrency,omitempty"`
	Number              *int64                `json:"number,omitempty"`
	Entries             []BillingEntryRequest `json:"entries,omitempty"`
}

type BillingEntryRequest struct {
	Description string     `json:"description" binding:"required"`
	Unit        *string    `json:"unit,omitempty"`
	Quantity    string     `json:"quantity" binding:"required"`
	UnitPrice   string     `json:"unitPrice" binding:"required"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Prorated    bool       `json:"prorated,omitempty"`
	ProductCode *string    `json:"productCode,omitempty"`
}

// ToEntry parses decimal fields and builds a domain entry.
func (r *BillingEntryRequest) ToEntry() (billing.Entry, error) {
	quantity, err := types.NewDecimalFromString(r.Quantity)
	if err != nil {
		return billing.Entry{}, apperror.NewValidation("invalid quantity").
			WithDetail("field", "quantity").
			WithDetail("value", r.Quantity)
	}

	unitPrice, err := types.NewDecimalFromString(r.UnitPrice)
	if err != nil {
		return billing.Entry{}, apperror.NewValidation("invalid unit price").
			WithDetail("field", "unitPrice").
			WithDetail("value", r.UnitPrice)
	}

	return billing.Entry{
		Description: r.Description,
		Unit:        r.Unit,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Prorated:    r.Prorated,
		ProductCode: r.ProductCode,
	}, nil
}

// ToParams converts the request into service create parameters.
// The document kind comes from the route, not the body.
func (r *CreateBillingDocumentRequest) ToParams(kind series.DocumentKind) (billing.CreateParams, error) {
	providerID, err := id.Parse(r.ProviderID)
	if err != nil {
		return billing.CreateParams{}, apperror.NewValidation("invalid provider id").
			WithDetail("field", "providerId")
	}

	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return billing.CreateParams{}, apperror.NewValidation("invalid customer id").
			WithDetail("field", "customerId")
	}

	entries := make([]billing.Entry, 0, len(r.Entries))
	for i := range r.Entries {
		entry, err := r.Entries[i].ToEntry()
		if err != nil {
			return billing.CreateParams{}, err
		}
		entries = append(entries, entry)
	}

	return billing.CreateParams{
		Kind:                kind,
		ProviderID:          providerID,
		CustomerID:          customerID,
		Currency:            r.Currency,
		TransactionCurrency: r.TransactionCurrency,
		Number:              r.Number,
		Entries:             entries,
	}, nil
}

type TransitionRequest struct {
	Status   string     `json:"status" binding:"required"`
	PaidDate *time.Time `json:"paidDate,omitempty"`
}

// --- Response DTOs ---

type BillingDocumentResponse struct {
	BaseResponse
	Kind                string                 `json:"kind"`
	Series              string                 `json:"series"`
	Number              *int64                 `json:"number,omitempty"`
	ProviderID          string                 `json:"providerId"`
	CustomerID          string                 `json:"customerId"`
	ArchivedProvider    archive.Snapshot       `json:"archivedProvider,omitempty"`
	ArchivedCustomer    archive.Snapshot       `json:"archivedCustomer,omitempty"`
	IssueDate           *time.Time             `json:"issueDate,omitempty"`
	DueDate             *time.Time             `json:"dueDate,omitempty"`
	PaidDate            *time.Time             `json:"paidDate,omitempty"`
	CancelDate          *time.Time             `json:"cancelDate,omitempty"`
	SalesTaxName        string                 `json:"salesTaxName"`
	SalesTaxPercent     string                 `json:"salesTaxPercent"`
	Currency            string                 `json:"currency"`
	TransactionCurrency string                 `json:"transactionCurrency"`
	Status              string                 `json:"status"`
	RelatedInvoiceID    *string                `json:"relatedInvoiceId,omitempty"`
	SourceProformaID    *string                `json:"sourceProformaId,omitempty"`
	Subtotal            string                 `json:"subtotal"`
	Total               string                 `json:"total"`
	Entries             []BillingEntryResponse `json:"entries"`
}

type BillingEntryResponse struct {
	EntryID     int        `json:"entryId"`
	Description string     `json:"description"`
	Unit        *string    `json:"unit,omitempty"`
	Quantity    string     `json:"quantity"`
	UnitPrice   string     `json:"unitPrice"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Prorated    bool       `json:"prorated"`
	ProductCode *string    `json:"productCode,omitempty"`
	Subtotal    string     `json:"subtotal"`
}

func FromBillingDocument(doc *billing.Document) *BillingDocumentResponse {
	resp := &BillingDocumentResponse{
		BaseResponse:        FromBaseDocument(doc.BaseDocument),
		Kind:                string(doc.Kind),
		Series:              doc.Series,
		Number:              doc.Number,
		ProviderID:          doc.ProviderID.String(),
		CustomerID:          doc.CustomerID.String(),
		ArchivedProvider:    doc.ArchivedProvider,
		ArchivedCustomer:    doc.ArchivedCustomer,
		IssueDate:           doc.IssueDate,
		DueDate:             doc.DueDate,
		PaidDate:            doc.PaidDate,
		CancelDate:          doc.CancelDate,
		SalesTaxName:        doc.SalesTaxName,
		SalesTaxPercent:     types.FormatAmount(doc.SalesTaxPercent),
		Currency:            doc.Currency,
		TransactionCurrency: doc.TransactionCurrency,
		Status:              string(doc.Status),
		Subtotal:            types.FormatAmount(doc.Subtotal()),
		Total:               types.FormatAmount(doc.Total()),
	}

	if doc.RelatedInvoiceID != nil {
		s := doc.RelatedInvoiceID.String()
		resp.RelatedInvoiceID = &s
	}
	if doc.SourceProformaID != nil {
		s := doc.SourceProformaID.String()
		resp.SourceProformaID = &s
	}

	resp.Entries = make([]BillingEntryResponse, len(doc.Entries))
	for i := range doc.Entries {
		resp.Entries[i] = FromBillingEntry(&doc.Entries[i])
	}

	return resp
}

func FromBillingEntry(e *billing.Entry) BillingEntryResponse {
	return BillingEntryResponse{
		EntryID:     e.EntryID,
		Description: e.Description,
		Unit:        e.Unit,
		Quantity:    types.FormatQuantity(e.Quantity),
		UnitPrice:   types.FormatQuantity(e.UnitPrice),
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Prorated:    e.Prorated,
		ProductCode: e.ProductCode,
		Subtotal:    types.FormatAmount(e.Subtotal()),
	}
}

type BillingDocumentListResponse struct {
	Items      []*BillingDocumentResponse `json:"items"`
	TotalCount int                        `json:"totalCount"`
	Limit      int                        `json:"limit"`
	Offset     int                        `json:"offset"`
}
