package entity

import (
	"context"

	"stockerp/internal/core/apperror"
)

// Catalog is the shared shape of master data records: goods, categories,
// suppliers, customers, warehouses. Hierarchical catalogs chain through
// ParentID; folder rows group leaves and never appear on documents.
type Catalog struct {
	BaseCatalog

	// Code is a human-readable identifier, unique per catalog. It may be
	// left empty on creation and generated at save time.
	Code string `db:"code" json:"code"`

	Name string `db:"name" json:"name"`

	ParentID *string `db:"parent_id" json:"parentId,omitempty"`
	IsFolder bool    `db:"is_folder" json:"isFolder"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
