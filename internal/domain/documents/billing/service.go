package billing

import (
	"context"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/lock"
	"factura/internal/core/series"
	"factura/internal/core/tx"
	"factura/internal/domain"
	"factura/internal/domain/archive"
	"factura/internal/domain/catalogs/customer"
	"factura/internal/domain/catalogs/provider"
	"factura/pkg/logger"
)

// ProviderCatalog is the slice of the provider service the billing flow needs.
type ProviderCatalog interface {
	GetByID(ctx context.Context, providerID id.ID) (*provider.Provider, error)
}

// CustomerCatalog is the slice of the customer service the billing flow needs.
type CustomerCatalog interface {
	GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error)
}

// Service orchestrates the billing document lifecycle. All mutating
// operations hold the per-document lock and run inside a transaction, so
// a failure anywhere (including the numbering registry) leaves the
// document untouched.
type Service struct {
	repo      Repository
	providers ProviderCatalog
	customers CustomerCatalog
	registry  series.Registry
	resolver  series.Resolver
	locks     *lock.Registry
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Document]
	cfg       Config

	// now is injectable for tests
	now func() time.Time
}

// NewService wires the billing document service.
func NewService(
	repo Repository,
	providers ProviderCatalog,
	customers CustomerCatalog,
	registry series.Registry,
	resolver series.Resolver,
	txManager tx.Manager,
	cfg Config,
) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		customers: customers,
		registry:  registry,
		resolver:  resolver,
		locks:     lock.NewRegistry("billing document"),
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Document](),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Hooks exposes the lifecycle hook registry for integrations.
func (s *Service) Hooks() *domain.HookRegistry[*Document] {
	return s.hooks
}

// CreateParams carries the caller's input for a new draft.
type CreateParams struct {
	Kind       series.DocumentKind
	ProviderID id.ID
	CustomerID id.ID

	// Currency is required; Validate rejects a draft without one.
	Currency string

	// TransactionCurrency defaults to Currency when empty.
	TransactionCurrency string

	// Number, when set, pre-assigns the document number. The numbering
	// registry is not consulted for pre-assigned numbers.
	Number *int64

	// Entries to seed the draft with, in order.
	Entries []Entry
}

// Create builds and stores a new draft document. The series is resolved from
// the provider's configuration, and the customer's tax overrides (if any)
// replace the platform defaults.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Document, error) {
	prov, err := s.providers.GetByID(ctx, params.ProviderID)
	if err != nil {
		return nil, err
	}

	cust, err := s.customers.GetByID(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(params.Kind, prov.ID, cust.ID, params.Currency)
	doc.Series = series.ResolveSeries(ctx, s.resolver, prov.ID.String(), params.Kind)
	doc.Number = params.Number
	if params.TransactionCurrency != "" {
		doc.TransactionCurrency = params.TransactionCurrency
	}

	if cust.SalesTaxName != nil && *cust.SalesTaxName != "" {
		doc.SalesTaxName = *cust.SalesTaxName
	}
	if cust.SalesTaxPercent != nil {
		doc.SalesTaxPercent = *cust.SalesTaxPercent
	}

	for i := range params.Entries {
		if _, err := doc.AddEntry(ctx, params.Entries[i]); err != nil {
			return nil, err
		}
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterCreate, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "billing document created",
		"id", doc.ID, "kind", doc.Kind, "series", doc.Series)
	return doc, nil
}

// AddEntry appends an entry to a draft document.
func (s *Service) AddEntry(ctx context.Context, docID id.ID, entry Entry) (*Entry, error) {
	var added *Entry
	err := s.withDocument(ctx, docID, func(ctx context.Context, doc *Document) error {
		e, err := doc.AddEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		added = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveEntry deletes an entry from a draft document.
func (s *Service) RemoveEntry(ctx context.Context, docID id.ID, entryID int) error {
	return s.withDocument(ctx, docID, func(ctx context.Context, doc *Document) error {
		if err := doc.RemoveEntry(entryID); err != nil {
			return err
		}
		return s.repo.Update(ctx, doc)
	})
}

// TransitionOptions carries optional transition inputs.
type TransitionOptions struct {
	// PaidDate overrides the payment date on issued → paid (defaults to today).
	PaidDate *time.Time
}

// Transition moves a document to the target status. Anything outside the
// transition table is rejected with INVALID_TRANSITION and no state change.
//
// Issuance reserves the next number in the document's (provider, series)
// bucket and freezes the counterparty snapshots; a registry failure aborts
// the whole transition.
func (s *Service) Transition(ctx context.Context, docID id.ID, target Status, opts TransitionOptions) (*Document, error) {
	if !target.IsValid() {
		return nil, apperror.NewValidation("unknown document status").
			WithDetail("field", "status").
			WithDetail("value", string(target))
	}

	var result *Document
	err := s.withDocument(ctx, docID, func(ctx context.Context, doc *Document) error {
		if err := s.hooks.Run(ctx, domain.BeforeTransition, doc); err != nil {
			return err
		}

		switch target {
		case StatusIssued:
			if err := s.issue(ctx, doc); err != nil {
				return err
			}
		case StatusPaid:
			if err := doc.Pay(s.now(), opts.PaidDate); err != nil {
				return err
			}
		case StatusCanceled:
			if err := doc.Cancel(s.now()); err != nil {
				return err
			}
		default:
			return apperror.NewInvalidTransition(string(doc.Status), string(target))
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.AfterTransition, doc); err != nil {
			return err
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "billing document transitioned",
		"id", result.ID, "status", result.Status, "number", result.Number)
	return result, nil
}

// issue runs the draft → issued sequence inside the document transaction:
// load counterparties, shift the due date by the customer's payment term,
// reserve the series number, then apply the transition on the aggregate.
func (s *Service) issue(ctx context.Context, doc *Document) error {
	if !CanTransition(doc.Status, StatusIssued) {
		return apperror.NewInvalidTransition(string(doc.Status), string(StatusIssued))
	}

	prov, err := s.providers.GetByID(ctx, doc.ProviderID)
	if err != nil {
		return err
	}
	cust, err := s.customers.GetByID(ctx, doc.CustomerID)
	if err != nil {
		return err
	}

	today := s.now()
	dueDays := s.cfg.DefaultDueDays
	if cust.PaymentDueDays > 0 {
		dueDays = cust.PaymentDueDays
	}
	if doc.DueDate == nil && dueDays > 0 {
		due := dateOnly(today).AddDate(0, 0, dueDays)
		doc.DueDate = &due
	}

	number, err := s.reserveNumber(ctx, doc)
	if err != nil {
		return err
	}

	return doc.Issue(today, number, archive.FromProvider(prov), archive.FromCustomer(cust))
}

// reserveNumber returns the document's pre-assigned number if it has one,
// otherwise draws the next value from the (provider, series) counter.
func (s *Service) reserveNumber(ctx context.Context, doc *Document) (int64, error) {
	if doc.Number != nil {
		return *doc.Number, nil
	}

	number, err := s.registry.ReserveNext(ctx, doc.ProviderID, doc.Series)
	if err != nil {
		return 0, apperror.NewRegistryUnavailable(err).
			WithDetail("provider_id", doc.ProviderID.String()).
			WithDetail("series", doc.Series)
	}
	return number, nil
}

// DiscardDraft permanently removes a draft document. Issued documents are
// part of the financial record and cannot be deleted, only canceled.
func (s *Service) DiscardDraft(ctx context.Context, docID id.ID) error {
	return s.withDocument(ctx, docID, func(ctx context.Context, doc *Document) error {
		if !doc.IsDraft() {
			return apperror.NewInvalidState("draft discard", string(doc.Status)).
				WithDetail("document_id", doc.ID.String())
		}

		if err := s.hooks.Run(ctx, domain.BeforeDelete, doc); err != nil {
			return err
		}
		if err := s.repo.DeleteDraft(ctx, doc.ID); err != nil {
			return err
		}
		return s.hooks.Run(ctx, domain.AfterDelete, doc)
	})
}

// CreateInvoiceFromProforma creates a draft invoice carrying over the
// proforma's counterparties, tax setup, currency and entries. The two
// documents are cross-linked; calling again returns the existing invoice.
func (s *Service) CreateInvoiceFromProforma(ctx context.Context, proformaID id.ID) (*Document, error) {
	var invoice *Document
	err := s.withDocument(ctx, proformaID, func(ctx context.Context, proforma *Document) error {
		if proforma.Kind != series.KindProforma {
			return apperror.NewValidation("document is not a proforma").
				WithDetail("document_id", proforma.ID.String()).
				WithDetail("kind", string(proforma.Kind))
		}

		if proforma.Status != StatusIssued {
			return apperror.NewInvalidState("invoice generation", string(proforma.Status)).
				WithDetail("document_id", proforma.ID.String())
		}

		if proforma.RelatedInvoiceID != nil {
			existing, err := s.repo.GetByID(ctx, *proforma.RelatedInvoiceID)
			if err != nil {
				return err
			}
			invoice = existing
			return nil
		}

		inv := NewDocument(series.KindInvoice, proforma.ProviderID, proforma.CustomerID, proforma.Currency)
		inv.Series = series.ResolveSeries(ctx, s.resolver, proforma.ProviderID.String(), series.KindInvoice)
		inv.SalesTaxName = proforma.SalesTaxName
		inv.SalesTaxPercent = proforma.SalesTaxPercent
		inv.TransactionCurrency = proforma.TransactionCurrency
		inv.SourceProformaID = &proforma.ID

		for i := range proforma.Entries {
			e := proforma.Entries[i]
			e.EntryID = 0
			if _, err := inv.AddEntry(ctx, e); err != nil {
				return err
			}
		}

		if err := s.hooks.Run(ctx, domain.BeforeCreate, inv); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.AfterCreate, inv); err != nil {
			return err
		}

		proforma.RelatedInvoiceID = &inv.ID
		proforma.Touch()
		if err := s.repo.Update(ctx, proforma); err != nil {
			return err
		}

		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice generated from proforma",
		"proforma_id", proformaID, "invoice_id", invoice.ID)
	return invoice, nil
}

// Get loads a document with its entries.
func (s *Service) Get(ctx context.Context, docID id.ID) (*Document, error) {
	return s.repo.GetByID(ctx, docID)
}

// GetOfKind loads a document and verifies it belongs to the given kind.
// A mismatch reports not-found, so a kind-scoped endpoint never serves
// (or acts on) a document of the other kind.
func (s *Service) GetOfKind(ctx context.Context, docID id.ID, kind series.DocumentKind) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Kind != kind {
		return nil, apperror.NewNotFound(string(kind), docID.String())
	}
	return doc, nil
}

// List retrieves documents matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// withDocument runs fn under the document's exclusive lock, inside a
// transaction, with the document freshly loaded. The lock wait is bounded
// by the configured timeout.
func (s *Service) withDocument(ctx context.Context, docID id.ID, fn func(ctx context.Context, doc *Document) error) error {
	lockCtx := ctx
	if s.cfg.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.cfg.LockTimeout)
		defer cancel()
	}

	release, err := s.locks.Acquire(lockCtx, docID)
	if err != nil {
		return err
	}
	defer release()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		return fn(ctx, doc)
	})
}
