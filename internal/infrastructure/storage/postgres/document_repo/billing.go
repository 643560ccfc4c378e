// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/documents/billing"
	"factura/internal/infrastructure/storage/postgres"
)

const (
	billingDocumentsTable = "billing_documents"
	billingEntriesTable   = "billing_document_entries"
)

// entryCols is the column set of the entries table part, minus document_id.
var entryCols = []string{
	"entry_id", "description", "unit", "quantity", "unit_price",
	"start_date", "end_date", "prorated", "product_code",
}

// BillingRepo implements billing.Repository. Entries are a table part of the
// document: every write replaces the full entry set inside the caller's
// transaction, so header and entries can never drift apart.
type BillingRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewBillingRepo creates a new billing document repository.
func NewBillingRepo(txManager *postgres.TxManager) *BillingRepo {
	return &BillingRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[billing.Document](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BillingRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new document with its entries.
func (r *BillingRepo) Create(ctx context.Context, doc *billing.Document) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(billingDocumentsTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", billingDocumentsTable, err)
	}

	return r.saveEntries(ctx, doc.ID, doc.Entries)
}

// GetByID retrieves a document with entries ordered by entry id.
func (r *BillingRepo) GetByID(ctx context.Context, docID id.ID) (*billing.Document, error) {
	doc := &billing.Document{}

	q := r.Builder().
		Select(r.selectCols...).
		From(billingDocumentsTable).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("billing document", docID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	entries, err := r.getEntries(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Entries = entries

	return doc, nil
}

// Update persists document fields and replaces the entry set,
// with optimistic locking on the header row.
func (r *BillingRepo) Update(ctx context.Context, doc *billing.Document) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	// Exclude immutable fields
	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "created_at" || col == "created_by" {
			continue
		}
		if col == "version" || col == "updated_at" {
			continue // version/updated_at are managed by repo
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(billingDocumentsTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": doc.ID}).
		// The aggregate bumps its version on every mutation before reaching
		// the repo, so the stored row must still hold the previous one.
		Where(squirrel.Eq{"version": version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", billingDocumentsTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(billingDocumentsTable, doc.ID.String())
	}

	return r.saveEntries(ctx, doc.ID, doc.Entries)
}

// DeleteDraft removes a document and its entries.
func (r *BillingRepo) DeleteDraft(ctx context.Context, docID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteEntriesSQL := "DELETE FROM " + billingEntriesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteEntriesSQL, docID); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}

	q := r.Builder().
		Delete(billingDocumentsTable).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", billingDocumentsTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("billing document", docID.String())
	}

	return nil
}

// List retrieves documents matching the filter, entries included.
func (r *BillingRepo) List(ctx context.Context, filter billing.ListFilter) (domain.ListResult[*billing.Document], error) {
	result := domain.ListResult[*billing.Document]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.Builder().
		Select(r.selectCols...).
		From(billingDocumentsTable)

	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if !id.IsNil(filter.ProviderID) {
		q = q.Where(squirrel.Eq{"provider_id": filter.ProviderID})
	}
	if !id.IsNil(filter.CustomerID) {
		q = q.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"series": pattern},
			squirrel.Expr("number::text ILIKE ?", pattern),
		})
	}

	// Count total (before pagination)
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	if err := r.loadEntriesForAll(ctx, result.Items); err != nil {
		return result, err
	}

	return result, nil
}

// getEntries retrieves entries for one document.
func (r *BillingRepo) getEntries(ctx context.Context, docID id.ID) ([]billing.Entry, error) {
	q := r.Builder().
		Select(entryCols...).
		From(billingEntriesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("entry_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entries := make([]billing.Entry, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}

	return entries, nil
}

// saveEntries replaces the document's entry set (delete existing + insert new).
func (r *BillingRepo) saveEntries(ctx context.Context, docID id.ID, entries []billing.Entry) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + billingEntriesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(billingEntriesTable).
		Columns(append([]string{"document_id"}, entryCols...)...)

	for _, e := range entries {
		q = q.Values(
			docID, e.EntryID, e.Description, e.Unit, e.Quantity, e.UnitPrice,
			e.StartDate, e.EndDate, e.Prorated, e.ProductCode,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert entries: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	return nil
}

// entryRow pairs an entry with its owning document for batched loads.
type entryRow struct {
	DocumentID id.ID `db:"document_id"`
	billing.Entry
}

// loadEntriesForAll fetches entries for a page of documents in one query.
func (r *BillingRepo) loadEntriesForAll(ctx context.Context, docs []*billing.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]id.ID, len(docs))
	byID := make(map[id.ID]*billing.Document, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		byID[doc.ID] = doc
		doc.Entries = make([]billing.Entry, 0)
	}

	q := r.Builder().
		Select(append([]string{"document_id"}, entryCols...)...).
		From(billingEntriesTable).
		Where(squirrel.Eq{"document_id": ids}).
		OrderBy("document_id", "entry_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var rows []entryRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return fmt.Errorf("load entries: %w", err)
	}

	for _, row := range rows {
		if doc, ok := byID[row.DocumentID]; ok {
			doc.Entries = append(doc.Entries, row.Entry)
		}
	}

	return nil
}

func (r *BillingRepo) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if orderBy == "" {
		return "created_at DESC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}

// Ensure compile-time interface compliance.
var _ billing.Repository = (*BillingRepo)(nil)
