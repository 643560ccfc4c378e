package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"

	"factura/internal/core/apperror"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](
		nil,
		"test_table",
		[]string{"id", "version", "name", "email"},
		[]string{"name", "email"},
		func() any { return nil },
	)
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "Default", orderBy: "", want: "name ASC"},
		{name: "Ascending", orderBy: "email", want: "email ASC"},
		{name: "ExplicitAscending", orderBy: "+email", want: "email ASC"},
		{name: "Descending", orderBy: "-name", want: "name DESC"},
		{name: "UnknownColumn", orderBy: "password", wantErr: true},
		{name: "Injection", orderBy: "name; DROP TABLE test_table", wantErr: true},
		{name: "BareMinus", orderBy: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.orderBy, got)
				}
				if !apperror.IsAppError(err) {
					t.Errorf("expected AppError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy(%q) failed: %v", tt.orderBy, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderBy(%q)\nwant: %s\ngot:  %s", tt.orderBy, tt.want, got)
			}
		})
	}
}

func TestSearchFilter_BuildsOrOfILike(t *testing.T) {
	repo := newTestRepo()

	q := repo.baseSelect()
	pattern := "%john%"
	or := make(squirrel.Or, 0, len(repo.searchCols))
	for _, col := range repo.searchCols {
		or = append(or, squirrel.ILike{col: pattern})
	}
	q = q.Where(or)

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT id, version, name, email FROM test_table WHERE (name ILIKE $1 OR email ILIKE $2)"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 2 || args[0] != pattern || args[1] != pattern {
		t.Errorf("Args mismatch\nwant: [%s %s]\ngot:  %v", pattern, pattern, args)
	}
}

func TestUpdateBuilder_OptimisticLock(t *testing.T) {
	repo := newTestRepo()

	q := repo.Builder().
		Update(repo.tableName).
		Set("name", "after").
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": "some-id"}).
		Where(squirrel.Eq{"version": 3})

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "UPDATE test_table SET name = $1, version = version + 1 WHERE id = $2 AND version = $3"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 3 || args[2] != 3 {
		t.Errorf("expected version arg 3, got %v", args)
	}
}
