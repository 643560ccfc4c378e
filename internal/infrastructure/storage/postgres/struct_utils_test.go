package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"factura/internal/core/entity"
	"factura/internal/core/id"
)

type mockCatalog struct {
	entity.BaseCatalog
	Reference string `db:"reference" json:"reference"`
	Name      string `db:"name" json:"name"`
	Skipped   string `db:"-" json:"skipped"`
	NoTag     string
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{"id", "version", "reference", "name"}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}

	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:      id.New(),
				Version: 5,
			},
		},
		Reference: "C-0001",
		Name:      "Test Name",
		Skipped:   "must not appear",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "C-0001", m["reference"])
	assert.Equal(t, "Test Name", m["name"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 4)
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &mockCatalog{Reference: "C-0002", Name: "Ptr"}
	m := StructToMap(cat)
	assert.Equal(t, "C-0002", m["reference"])
}

func TestDiff(t *testing.T) {
	oldState := map[string]any{"status": "draft", "currency": "RON", "note": "x"}
	newState := map[string]any{"status": "issued", "currency": "RON", "number": int64(7)}

	changes := Diff(oldState, newState)

	assert.Contains(t, changes, "status")
	assert.Contains(t, changes, "number")
	assert.Contains(t, changes, "note")
	assert.NotContains(t, changes, "currency")

	statusChange := changes["status"].(map[string]any)
	assert.Equal(t, "draft", statusChange["old"])
	assert.Equal(t, "issued", statusChange["new"])
}
