// Package billing provides the billing document (proforma / invoice) and its
// lifecycle: draft → issued → {paid, canceled}. A document becomes a binding,
// immutable-content record at issuance, when it receives its series number and
// the archival snapshots of provider and customer data.
package billing

import (
	"context"
	"sort"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/core/types"
	"factura/internal/domain/archive"
)

// Default tax metadata applied at creation.
const DefaultSalesTaxName = "VAT"

// DefaultSalesTaxPercent returns the platform default tax percent (1.00).
func DefaultSalesTaxPercent() types.Decimal {
	return types.MustDecimal("1.00")
}

// Document represents a proforma or invoice going through the billing
// lifecycle. The two kinds share the same shape; a proforma may additionally
// be converted into an invoice (RelatedInvoiceID).
type Document struct {
	entity.BaseDocument

	// Kind is proforma or invoice
	Kind series.DocumentKind `db:"kind" json:"kind"`

	// Series is the numbering bucket, defaulted per kind unless the
	// provider configured an override
	Series string `db:"series" json:"series"`

	// Number is assigned at issuance (or reserved explicitly at creation),
	// unique within (provider, series)
	Number *int64 `db:"number" json:"number"`

	// References to the live provider/customer records (owned externally)
	ProviderID id.ID `db:"provider_id" json:"providerId"`
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Frozen counterparty snapshots, empty until issuance
	ArchivedProvider archive.Snapshot `db:"archived_provider" json:"archivedProvider"`
	ArchivedCustomer archive.Snapshot `db:"archived_customer" json:"archivedCustomer"`

	// Lifecycle dates, set only by the corresponding transitions
	IssueDate  *time.Time `db:"issue_date" json:"issueDate"`
	DueDate    *time.Time `db:"due_date" json:"dueDate"`
	PaidDate   *time.Time `db:"paid_date" json:"paidDate"`
	CancelDate *time.Time `db:"cancel_date" json:"cancelDate"`

	// Tax metadata
	SalesTaxName    string        `db:"sales_tax_name" json:"salesTaxName"`
	SalesTaxPercent types.Decimal `db:"sales_tax_percent" json:"salesTaxPercent"`

	// Currency is required at creation and immutable afterwards
	Currency string `db:"currency" json:"currency"`

	// TransactionCurrency is the settlement currency, defaulting to Currency
	TransactionCurrency string `db:"transaction_currency" json:"transactionCurrency"`

	Status Status `db:"status" json:"status"`

	// NextEntryID is the next entry sequence value; it only grows, so entry
	// IDs are never reused even after deletions
	NextEntryID int `db:"next_entry_id" json:"-"`

	// RelatedInvoiceID links a proforma to the invoice generated from it
	RelatedInvoiceID *id.ID `db:"related_invoice_id" json:"relatedInvoiceId"`

	// SourceProformaID links an invoice back to its originating proforma
	SourceProformaID *id.ID `db:"source_proforma_id" json:"sourceProformaId"`

	// Table part: line entries, ascending by entry id
	Entries []Entry `db:"-" json:"entries"`
}

// NewDocument creates a draft document with platform defaults.
func NewDocument(kind series.DocumentKind, providerID, customerID id.ID, currency string) *Document {
	return &Document{
		BaseDocument:        entity.NewBaseDocument(),
		Kind:                kind,
		Series:              series.DefaultSeries(kind),
		ProviderID:          providerID,
		CustomerID:          customerID,
		SalesTaxName:        DefaultSalesTaxName,
		SalesTaxPercent:     DefaultSalesTaxPercent(),
		Currency:            currency,
		TransactionCurrency: currency,
		Status:              StatusDraft,
		NextEntryID:         1,
		Entries:             make([]Entry, 0),
	}
}

// IsDraft reports whether entries are still mutable.
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft
}

// Validate implements entity.Validatable.
// Beyond field checks it enforces the lifecycle invariant: only drafts may
// lack a number and archived snapshots.
func (d *Document) Validate(ctx context.Context) error {
	if d.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}

	switch d.Kind {
	case series.KindProforma, series.KindInvoice:
	default:
		return apperror.NewValidation("invalid document kind").
			WithDetail("field", "kind").
			WithDetail("value", string(d.Kind))
	}

	if !d.Status.IsValid() {
		return apperror.NewValidation("unknown document status").
			WithDetail("field", "status").
			WithDetail("value", string(d.Status))
	}

	if id.IsNil(d.ProviderID) {
		return apperror.NewValidation("provider is required").
			WithDetail("field", "providerId")
	}

	if id.IsNil(d.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if d.SalesTaxPercent.IsNegative() {
		return apperror.NewValidation("sales tax percent must not be negative").
			WithDetail("field", "salesTaxPercent")
	}

	if d.Status != StatusDraft {
		if d.Number == nil {
			return apperror.NewValidation("issued document must carry a number").
				WithDetail("field", "number")
		}
		if d.ArchivedProvider.Empty() && d.ArchivedCustomer.Empty() {
			return apperror.NewValidation("issued document must carry archived snapshots").
				WithDetail("field", "archivedProvider")
		}
	}

	for i := range d.Entries {
		if err := d.Entries[i].Validate(ctx); err != nil {
			return err
		}
	}

	return nil
}

// --- Entry store ---

// AddEntry appends an entry, assigning the next entry id.
// Allowed only while the document is in draft.
func (d *Document) AddEntry(ctx context.Context, e Entry) (*Entry, error) {
	if !d.IsDraft() {
		return nil, apperror.NewInvalidState("entry creation", string(d.Status)).
			WithDetail("document_id", d.ID.String())
	}

	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	e.EntryID = d.NextEntryID
	d.NextEntryID++
	d.Entries = append(d.Entries, e)
	d.Touch()

	return &d.Entries[len(d.Entries)-1], nil
}

// RemoveEntry deletes the entry with the given id.
// Allowed only while the document is in draft. The gap in the id sequence is
// permanent: ids are never reassigned.
func (d *Document) RemoveEntry(entryID int) error {
	if !d.IsDraft() {
		return apperror.NewInvalidState("entry removal", string(d.Status)).
			WithDetail("document_id", d.ID.String())
	}

	for i := range d.Entries {
		if d.Entries[i].EntryID == entryID {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
			d.Touch()
			return nil
		}
	}

	return apperror.NewNotFound("entry", entryID).
		WithDetail("document_id", d.ID.String())
}

// EntryByID returns the entry with the given id, or nil.
func (d *Document) EntryByID(entryID int) *Entry {
	for i := range d.Entries {
		if d.Entries[i].EntryID == entryID {
			return &d.Entries[i]
		}
	}
	return nil
}

// SortEntries orders entries ascending by entry id. Repositories call this
// after loading so callers always observe insertion order.
func (d *Document) SortEntries() {
	sort.Slice(d.Entries, func(i, j int) bool {
		return d.Entries[i].EntryID < d.Entries[j].EntryID
	})
}

// --- Transitions ---

// Issue performs draft → issued: stamps dates, assigns the series number and
// freezes the counterparty snapshots. The snapshots are deep-copied so later
// mutation of the caller's maps cannot reach the archived state.
func (d *Document) Issue(today time.Time, number int64, providerSnap, customerSnap archive.Snapshot) error {
	if !CanTransition(d.Status, StatusIssued) {
		return apperror.NewInvalidTransition(string(d.Status), string(StatusIssued))
	}

	if d.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}

	day := dateOnly(today)
	if d.IssueDate == nil {
		d.IssueDate = &day
	}
	if d.DueDate == nil {
		d.DueDate = &day
	}

	if d.Number == nil {
		d.Number = &number
	}

	d.ArchivedProvider = providerSnap.Clone()
	d.ArchivedCustomer = customerSnap.Clone()
	d.Status = StatusIssued
	d.Touch()

	return nil
}

// Pay performs issued → paid. paidDate defaults to today.
func (d *Document) Pay(today time.Time, paidDate *time.Time) error {
	if !CanTransition(d.Status, StatusPaid) {
		return apperror.NewInvalidTransition(string(d.Status), string(StatusPaid))
	}

	day := dateOnly(today)
	if paidDate != nil {
		day = dateOnly(*paidDate)
	}
	d.PaidDate = &day
	d.Status = StatusPaid
	d.Touch()

	return nil
}

// Cancel performs issued → canceled (voiding without payment).
func (d *Document) Cancel(today time.Time) error {
	if !CanTransition(d.Status, StatusCanceled) {
		return apperror.NewInvalidTransition(string(d.Status), string(StatusCanceled))
	}

	day := dateOnly(today)
	d.CancelDate = &day
	d.Status = StatusCanceled
	d.Touch()

	return nil
}

// --- Totals ---

// Subtotal sums entry subtotals with exact decimal addition.
func (d *Document) Subtotal() types.Decimal {
	total := types.Zero()
	for i := range d.Entries {
		total = total.Add(d.Entries[i].Subtotal())
	}
	return total
}

// Total applies the document's sales tax on top of the subtotal.
func (d *Document) Total() types.Decimal {
	return types.ApplySalesTax(d.Subtotal(), d.SalesTaxPercent)
}

func dateOnly(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
