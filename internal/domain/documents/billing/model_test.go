package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/series"
	"factura/internal/core/types"
	"factura/internal/domain/archive"
)

func testEntry(desc string) Entry {
	return Entry{
		Description: desc,
		Quantity:    types.MustDecimal("20.0000000000"),
		UnitPrice:   types.MustDecimal("10.0000000000"),
	}
}

func issuedDoc(t *testing.T) *Document {
	t.Helper()
	doc := NewDocument(series.KindProforma, id.New(), id.New(), "RON")
	_, err := doc.AddEntry(context.Background(), testEntry("hosting"))
	require.NoError(t, err)
	require.NoError(t, doc.Issue(time.Now(), 1, archive.Snapshot{"name": "P"}, archive.Snapshot{"name": "C"}))
	return doc
}

func TestNewDocument_Defaults(t *testing.T) {
	doc := NewDocument(series.KindProforma, id.New(), id.New(), "RON")

	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, "ProformaSeries", doc.Series)
	assert.Nil(t, doc.Number)
	assert.Equal(t, "VAT", doc.SalesTaxName)
	assert.Equal(t, "1.00", types.FormatAmount(doc.SalesTaxPercent))
	assert.Equal(t, "RON", doc.Currency)
	assert.Equal(t, "RON", doc.TransactionCurrency)
	assert.Equal(t, 1, doc.NextEntryID)
	assert.True(t, doc.ArchivedProvider.Empty())
	assert.True(t, doc.ArchivedCustomer.Empty())
	assert.Nil(t, doc.IssueDate)
	assert.Nil(t, doc.DueDate)
}

func TestAddEntry_AssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "USD")

	for i := 0; i < 3; i++ {
		e, err := doc.AddEntry(ctx, testEntry("item"))
		require.NoError(t, err)
		assert.Equal(t, i+1, e.EntryID)
	}
}

func TestRemoveEntry_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "USD")

	for i := 0; i < 3; i++ {
		_, err := doc.AddEntry(ctx, testEntry("item"))
		require.NoError(t, err)
	}

	require.NoError(t, doc.RemoveEntry(2))
	assert.Len(t, doc.Entries, 2)

	// The freed id must not come back.
	e, err := doc.AddEntry(ctx, testEntry("replacement"))
	require.NoError(t, err)
	assert.Equal(t, 4, e.EntryID)
}

func TestRemoveEntry_NotFound(t *testing.T) {
	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "USD")
	err := doc.RemoveEntry(99)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddEntry_RejectedOutsideDraft(t *testing.T) {
	doc := issuedDoc(t)

	_, err := doc.AddEntry(context.Background(), testEntry("late item"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "issued", appErr.Details["status"])
}

func TestRemoveEntry_RejectedOutsideDraft(t *testing.T) {
	doc := issuedDoc(t)
	err := doc.RemoveEntry(1)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Len(t, doc.Entries, 1)
}

func TestIssue_StampsDatesNumberAndSnapshots(t *testing.T) {
	doc := NewDocument(series.KindProforma, id.New(), id.New(), "RON")
	_, err := doc.AddEntry(context.Background(), testEntry("hosting"))
	require.NoError(t, err)

	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	provSnap := archive.Snapshot{"name": "Provider SRL"}
	custSnap := archive.Snapshot{"name": "Customer"}

	require.NoError(t, doc.Issue(now, 7, provSnap, custSnap))

	assert.Equal(t, StatusIssued, doc.Status)
	require.NotNil(t, doc.Number)
	assert.Equal(t, int64(7), *doc.Number)

	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, doc.IssueDate)
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, today, *doc.IssueDate)
	assert.Equal(t, today, *doc.DueDate)

	// Snapshots are frozen copies.
	provSnap["name"] = "Renamed"
	assert.Equal(t, "Provider SRL", doc.ArchivedProvider["name"])
	assert.False(t, doc.ArchivedCustomer.Empty())
}

func TestIssue_KeepsPresetDatesAndNumber(t *testing.T) {
	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "EUR")
	preset := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	num := int64(100)
	doc.IssueDate = &preset
	doc.DueDate = &due
	doc.Number = &num

	require.NoError(t, doc.Issue(time.Now(), 999, archive.Snapshot{"name": "P"}, archive.Snapshot{}))

	assert.Equal(t, preset, *doc.IssueDate)
	assert.Equal(t, due, *doc.DueDate)
	assert.Equal(t, int64(100), *doc.Number)
}

func TestIssue_InvalidFromNonDraft(t *testing.T) {
	doc := issuedDoc(t)
	err := doc.Issue(time.Now(), 2, archive.Snapshot{}, archive.Snapshot{})
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestPay_FromIssued(t *testing.T) {
	doc := issuedDoc(t)
	paidOn := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, doc.Pay(time.Now(), &paidOn))

	assert.Equal(t, StatusPaid, doc.Status)
	require.NotNil(t, doc.PaidDate)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *doc.PaidDate)
	assert.True(t, doc.Status.IsTerminal())
}

func TestPay_DefaultsToToday(t *testing.T) {
	doc := issuedDoc(t)
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, doc.Pay(now, nil))
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), *doc.PaidDate)
}

func TestPay_InvalidFromDraft(t *testing.T) {
	doc := NewDocument(series.KindProforma, id.New(), id.New(), "RON")
	err := doc.Pay(time.Now(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "draft", appErr.Details["from"])
	assert.Equal(t, "paid", appErr.Details["to"])
}

func TestCancel_FromIssued(t *testing.T) {
	doc := issuedDoc(t)
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, doc.Cancel(now))
	assert.Equal(t, StatusCanceled, doc.Status)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), *doc.CancelDate)
}

func TestCancel_InvalidFromPaid(t *testing.T) {
	doc := issuedDoc(t)
	require.NoError(t, doc.Pay(time.Now(), nil))

	err := doc.Cancel(time.Now())
	assert.True(t, apperror.IsInvalidTransition(err))
	assert.Equal(t, StatusPaid, doc.Status)
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusDraft, StatusIssued, true},
		{StatusIssued, StatusPaid, true},
		{StatusIssued, StatusCanceled, true},
		{StatusDraft, StatusPaid, false},
		{StatusDraft, StatusCanceled, false},
		{StatusPaid, StatusCanceled, false},
		{StatusCanceled, StatusPaid, false},
		{StatusIssued, StatusDraft, false},
		{StatusPaid, StatusDraft, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestValidate_IssuedRequiresNumberAndSnapshots(t *testing.T) {
	ctx := context.Background()

	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "USD")
	require.NoError(t, doc.Validate(ctx), "draft without number is valid")

	doc.Status = StatusIssued
	require.Error(t, doc.Validate(ctx), "issued without number is invalid")

	num := int64(1)
	doc.Number = &num
	require.Error(t, doc.Validate(ctx), "issued without snapshots is invalid")

	doc.ArchivedProvider = archive.Snapshot{"name": "P"}
	assert.NoError(t, doc.Validate(ctx))
}

func TestValidate_RequiresCurrencyAndParties(t *testing.T) {
	ctx := context.Background()

	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "")
	assert.Error(t, doc.Validate(ctx))

	doc = NewDocument(series.KindInvoice, id.Nil(), id.New(), "USD")
	assert.Error(t, doc.Validate(ctx))

	doc = NewDocument(series.KindInvoice, id.New(), id.Nil(), "USD")
	assert.Error(t, doc.Validate(ctx))
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "USD")

	// 20 x 10 = 200, twice.
	_, err := doc.AddEntry(ctx, testEntry("a"))
	require.NoError(t, err)
	_, err = doc.AddEntry(ctx, testEntry("b"))
	require.NoError(t, err)

	assert.Equal(t, "400.00", types.FormatAmount(doc.Subtotal()))

	// Default 1.00% tax on top.
	assert.Equal(t, "404.00", types.FormatAmount(doc.Total()))

	doc.SalesTaxPercent = types.MustDecimal("19")
	assert.Equal(t, "476.00", types.FormatAmount(doc.Total()))
}

func TestSortEntries(t *testing.T) {
	doc := NewDocument(series.KindInvoice, id.New(), id.New(), "USD")
	doc.Entries = []Entry{
		{EntryID: 3, Description: "c"},
		{EntryID: 1, Description: "a"},
		{EntryID: 2, Description: "b"},
	}

	doc.SortEntries()

	assert.Equal(t, 1, doc.Entries[0].EntryID)
	assert.Equal(t, 2, doc.Entries[1].EntryID)
	assert.Equal(t, 3, doc.Entries[2].EntryID)
}
