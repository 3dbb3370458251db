package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
)

type MockCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "attributes", "code", "name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	cat := MockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "TEST",
		Name: "Test Name",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
}

func TestStructToMap_PointerFields(t *testing.T) {
	type withNote struct {
		entity.BaseCatalog
		Note *string `db:"note"`
	}

	note := "keep me"
	m := StructToMap(withNote{Note: &note})
	assert.Equal(t, &note, m["note"])

	m = StructToMap(withNote{})
	assert.Contains(t, m, "note")
	assert.Nil(t, m["note"])
}
