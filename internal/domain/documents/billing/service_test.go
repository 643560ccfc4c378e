package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/core/types"
	"factura/internal/domain"
	"factura/internal/domain/catalogs/customer"
	"factura/internal/domain/catalogs/provider"
)

// --- test doubles ---

// memDocRepo is an in-memory Repository. GetByID returns copies so a failed
// operation cannot leak partial mutations back into the store.
type memDocRepo struct {
	mu   sync.Mutex
	docs map[id.ID]*Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: make(map[id.ID]*Document)}
}

func copyDoc(d *Document) *Document {
	c := *d
	c.Entries = append([]Entry(nil), d.Entries...)
	c.ArchivedProvider = d.ArchivedProvider.Clone()
	c.ArchivedCustomer = d.ArchivedCustomer.Clone()
	return &c
}

func (r *memDocRepo) Create(ctx context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = copyDoc(doc)
	return nil
}

func (r *memDocRepo) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("billing document", docID.String())
	}
	out := copyDoc(doc)
	out.SortEntries()
	return out, nil
}

func (r *memDocRepo) Update(ctx context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("billing document", doc.ID.String())
	}
	r.docs[doc.ID] = copyDoc(doc)
	return nil
}

func (r *memDocRepo) DeleteDraft(ctx context.Context, docID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("billing document", docID.String())
	}
	delete(r.docs, docID)
	return nil
}

func (r *memDocRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []*Document
	for _, doc := range r.docs {
		if filter.Kind != "" && doc.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if !id.IsNil(filter.ProviderID) && doc.ProviderID != filter.ProviderID {
			continue
		}
		if !id.IsNil(filter.CustomerID) && doc.CustomerID != filter.CustomerID {
			continue
		}
		items = append(items, copyDoc(doc))
	}

	return domain.ListResult[*Document]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

type memProviders struct {
	providers map[id.ID]*provider.Provider
}

func (c *memProviders) GetByID(ctx context.Context, providerID id.ID) (*provider.Provider, error) {
	if p, ok := c.providers[providerID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("provider", providerID.String())
}

type memCustomers struct {
	customers map[id.ID]*customer.Customer
}

func (c *memCustomers) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	if cu, ok := c.customers[customerID]; ok {
		return cu, nil
	}
	return nil, apperror.NewNotFound("customer", customerID.String())
}

// nopTxManager runs fn directly; the memory repo needs no transactions.
type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticResolver struct{ series string }

func (r staticResolver) SeriesFor(ctx context.Context, providerID string, kind series.DocumentKind) string {
	return r.series
}

// recordingResolver captures the context it is called with.
type recordingResolver struct{ got context.Context }

func (r *recordingResolver) SeriesFor(ctx context.Context, providerID string, kind series.DocumentKind) string {
	r.got = ctx
	return ""
}

// --- fixture ---

type fixture struct {
	svc      *Service
	repo     *memDocRepo
	registry *series.MockRegistry
	provider *provider.Provider
	customer *customer.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	prov := provider.New("Presslabs", provider.FlowProforma)
	cust := customer.New("C-0001", "John Doe")

	repo := newMemDocRepo()
	registry := series.NewMockRegistry()

	svc := NewService(
		repo,
		&memProviders{providers: map[id.ID]*provider.Provider{prov.ID: prov}},
		&memCustomers{customers: map[id.ID]*customer.Customer{cust.ID: cust}},
		registry,
		staticResolver{},
		nopTxManager{},
		DefaultConfig(),
	)

	return &fixture{svc: svc, repo: repo, registry: registry, provider: prov, customer: cust}
}

func (f *fixture) createDraft(t *testing.T, kind series.DocumentKind) *Document {
	t.Helper()
	doc, err := f.svc.Create(context.Background(), CreateParams{
		Kind:       kind,
		ProviderID: f.provider.ID,
		CustomerID: f.customer.ID,
		Currency:   "RON",
		Entries:    []Entry{testEntry("hosting")},
	})
	require.NoError(t, err)
	return doc
}

// --- tests ---

func TestService_Create_Defaults(t *testing.T) {
	f := newFixture(t)

	doc := f.createDraft(t, series.KindProforma)

	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, "ProformaSeries", doc.Series)
	assert.Equal(t, "RON", doc.Currency)
	assert.Equal(t, "VAT", doc.SalesTaxName)
	assert.Equal(t, "1.00", types.FormatAmount(doc.SalesTaxPercent))
	assert.Nil(t, doc.Number)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "20.0000000000", types.FormatQuantity(doc.Entries[0].Quantity))

	stored, err := f.svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)
}

func TestService_Create_MissingCurrencyRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateParams{
		Kind:       series.KindInvoice,
		ProviderID: f.provider.ID,
		CustomerID: f.customer.ID,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// Nothing must be stored for a rejected draft.
	all, err := f.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, all.TotalCount)
}

func TestService_Create_CustomerTaxOverride(t *testing.T) {
	f := newFixture(t)
	taxName := "TVA"
	taxPercent := types.MustDecimal("19")
	f.customer.SalesTaxName = &taxName
	f.customer.SalesTaxPercent = &taxPercent

	doc := f.createDraft(t, series.KindProforma)

	assert.Equal(t, "TVA", doc.SalesTaxName)
	assert.Equal(t, "19.00", types.FormatAmount(doc.SalesTaxPercent))
}

func TestService_Create_UnknownProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateParams{
		Kind:       series.KindProforma,
		ProviderID: id.New(),
		CustomerID: f.customer.ID,
		Currency:   "RON",
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Create_ResolverSeesCallerContext(t *testing.T) {
	prov := provider.New("Presslabs", provider.FlowProforma)
	cust := customer.New("C-0001", "John Doe")
	resolver := &recordingResolver{}

	svc := NewService(
		newMemDocRepo(),
		&memProviders{providers: map[id.ID]*provider.Provider{prov.ID: prov}},
		&memCustomers{customers: map[id.ID]*customer.Customer{cust.ID: cust}},
		series.NewMockRegistry(),
		resolver,
		nopTxManager{},
		DefaultConfig(),
	)

	type marker struct{}
	ctx := context.WithValue(context.Background(), marker{}, "req-1")

	_, err := svc.Create(ctx, CreateParams{
		Kind:       series.KindProforma,
		ProviderID: prov.ID,
		CustomerID: cust.ID,
		Currency:   "RON",
	})
	require.NoError(t, err)

	require.NotNil(t, resolver.got)
	assert.Equal(t, "req-1", resolver.got.Value(marker{}))
}

func TestService_GetOfKind_ScopesByKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	proforma := f.createDraft(t, series.KindProforma)

	doc, err := f.svc.GetOfKind(ctx, proforma.ID, series.KindProforma)
	require.NoError(t, err)
	assert.Equal(t, proforma.ID, doc.ID)

	// The other kind's scope must not see it.
	_, err = f.svc.GetOfKind(ctx, proforma.ID, series.KindInvoice)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_AddEntry_Persists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	e, err := f.svc.AddEntry(ctx, doc.ID, testEntry("backup storage"))
	require.NoError(t, err)
	assert.Equal(t, 2, e.EntryID)

	stored, err := f.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 2)
}

func TestService_RemoveEntry_OneOfTen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	for i := 0; i < 9; i++ {
		_, err := f.svc.AddEntry(ctx, doc.ID, testEntry("item"))
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.RemoveEntry(ctx, doc.ID, 5))

	stored, err := f.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 9)
	assert.Nil(t, stored.EntryByID(5))
	assert.NotNil(t, stored.EntryByID(10))
}

func TestService_AddEntry_AfterIssueRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	_, err := f.svc.Transition(ctx, doc.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	_, err = f.svc.AddEntry(ctx, doc.ID, testEntry("late"))
	assert.True(t, apperror.IsInvalidState(err))
}

func TestService_Issue_AssignsSequentialNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createDraft(t, series.KindProforma)
	second := f.createDraft(t, series.KindProforma)

	issued1, err := f.svc.Transition(ctx, first.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)
	issued2, err := f.svc.Transition(ctx, second.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), *issued1.Number)
	assert.Equal(t, int64(2), *issued2.Number)
	assert.False(t, issued1.ArchivedProvider.Empty())
	assert.False(t, issued1.ArchivedCustomer.Empty())
}

func TestService_Issue_SeparateKindsSeparateCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	proforma := f.createDraft(t, series.KindProforma)
	invoice := f.createDraft(t, series.KindInvoice)

	issuedP, err := f.svc.Transition(ctx, proforma.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)
	issuedI, err := f.svc.Transition(ctx, invoice.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), *issuedP.Number)
	assert.Equal(t, int64(1), *issuedI.Number, "each series numbers independently")
}

func TestService_Issue_DueDateFromPaymentTerm(t *testing.T) {
	f := newFixture(t)
	f.customer.PaymentDueDays = 15
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	doc := f.createDraft(t, series.KindInvoice)
	issued, err := f.svc.Transition(ctx, doc.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *issued.IssueDate)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), *issued.DueDate)
}

func TestService_Issue_PreassignedNumberSkipsRegistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.ReserveNextFunc = func(ctx context.Context, providerID id.ID, s string) (int64, error) {
		t.Fatal("registry must not be consulted for pre-assigned numbers")
		return 0, nil
	}

	num := int64(500)
	doc, err := f.svc.Create(ctx, CreateParams{
		Kind:       series.KindInvoice,
		ProviderID: f.provider.ID,
		CustomerID: f.customer.ID,
		Currency:   "RON",
		Number:     &num,
	})
	require.NoError(t, err)

	issued, err := f.svc.Transition(ctx, doc.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(500), *issued.Number)
}

func TestService_Issue_RegistryFailureLeavesDraftUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	f.registry.ReserveNextFunc = func(ctx context.Context, providerID id.ID, s string) (int64, error) {
		return 0, errors.New("connection refused")
	}

	_, err := f.svc.Transition(ctx, doc.ID, StatusIssued, TransitionOptions{})
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeRegistryUnavailable, appErr.Code)

	stored, err := f.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
	assert.Nil(t, stored.Number)
	assert.True(t, stored.ArchivedProvider.Empty())
}

func TestService_Transition_InvalidRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	_, err := f.svc.Transition(ctx, doc.ID, StatusPaid, TransitionOptions{})
	assert.True(t, apperror.IsInvalidTransition(err))

	_, err = f.svc.Transition(ctx, doc.ID, Status("archived"), TransitionOptions{})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_PayWithExplicitDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindInvoice)

	_, err := f.svc.Transition(ctx, doc.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	paidOn := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	paid, err := f.svc.Transition(ctx, doc.ID, StatusPaid, TransitionOptions{PaidDate: &paidOn})
	require.NoError(t, err)
	assert.Equal(t, paidOn, *paid.PaidDate)
}

func TestService_DiscardDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	require.NoError(t, f.svc.DiscardDraft(ctx, doc.ID))

	_, err := f.svc.Get(ctx, doc.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_DiscardIssuedRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.createDraft(t, series.KindProforma)

	_, err := f.svc.Transition(ctx, doc.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	err = f.svc.DiscardDraft(ctx, doc.ID)
	assert.True(t, apperror.IsInvalidState(err))

	stored, err := f.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIssued, stored.Status)
}

func TestService_CreateInvoiceFromProforma(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	proforma := f.createDraft(t, series.KindProforma)

	_, err := f.svc.Transition(ctx, proforma.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	invoice, err := f.svc.CreateInvoiceFromProforma(ctx, proforma.ID)
	require.NoError(t, err)

	assert.Equal(t, series.KindInvoice, invoice.Kind)
	assert.Equal(t, StatusDraft, invoice.Status)
	assert.Equal(t, "InvoiceSeries", invoice.Series)
	assert.Equal(t, "RON", invoice.Currency)
	require.NotNil(t, invoice.SourceProformaID)
	assert.Equal(t, proforma.ID, *invoice.SourceProformaID)
	require.Len(t, invoice.Entries, 1)
	assert.Equal(t, 1, invoice.Entries[0].EntryID)

	stored, err := f.svc.Get(ctx, proforma.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RelatedInvoiceID)
	assert.Equal(t, invoice.ID, *stored.RelatedInvoiceID)
}

func TestService_CreateInvoiceFromProforma_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	proforma := f.createDraft(t, series.KindProforma)

	_, err := f.svc.Transition(ctx, proforma.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	first, err := f.svc.CreateInvoiceFromProforma(ctx, proforma.ID)
	require.NoError(t, err)
	second, err := f.svc.CreateInvoiceFromProforma(ctx, proforma.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestService_CreateInvoiceFromDraftProformaRejected(t *testing.T) {
	f := newFixture(t)
	proforma := f.createDraft(t, series.KindProforma)

	_, err := f.svc.CreateInvoiceFromProforma(context.Background(), proforma.ID)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestService_CreateInvoiceFromInvoiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invoice := f.createDraft(t, series.KindInvoice)

	_, err := f.svc.Transition(ctx, invoice.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	_, err = f.svc.CreateInvoiceFromProforma(ctx, invoice.ID)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_List_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createDraft(t, series.KindProforma)
	f.createDraft(t, series.KindProforma)
	invoice := f.createDraft(t, series.KindInvoice)
	_, err := f.svc.Transition(ctx, invoice.ID, StatusIssued, TransitionOptions{})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)

	proformas, err := f.svc.List(ctx, ListFilter{Kind: series.KindProforma})
	require.NoError(t, err)
	assert.Equal(t, int64(2), proformas.TotalCount)

	issued, err := f.svc.List(ctx, ListFilter{Status: StatusIssued})
	require.NoError(t, err)
	assert.Equal(t, int64(1), issued.TotalCount)
}

// Concurrent issuance of many drafts in the same series must produce a dense,
// unique number sequence.
func TestService_ParallelIssue_UniqueNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	docs := make([]*Document, n)
	for i := range docs {
		docs[i] = f.createDraft(t, series.KindProforma)
	}

	var wg sync.WaitGroup
	results := make([]*Document, n)
	errs := make([]error, n)
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Transition(ctx, docs[i].ID, StatusIssued, TransitionOptions{})
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i].Number)
		num := *results[i].Number
		assert.False(t, seen[num], "number %d assigned twice", num)
		assert.GreaterOrEqual(t, num, int64(1))
		assert.LessOrEqual(t, num, int64(n))
		seen[num] = true
	}
	assert.Len(t, seen, n)
}
