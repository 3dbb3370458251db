// Package category provides the hierarchical goods category tree.
package category

import (
	"context"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
)

// Category is one node of the goods category tree. ParentID and IsFolder
// come from entity.Catalog; leaf categories hold goods, folders group
// other categories.
type Category struct {
	entity.Catalog

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`

	// SortOrder orders siblings in pickers
	SortOrder int `db:"sort_order" json:"sortOrder"`
}

// NewCategory creates a new Category with required fields.
func NewCategory(code, name string) *Category {
	return &Category{
		Catalog: entity.NewCatalog(code, name),
	}
}

// NewFolder creates a grouping node.
func NewFolder(code, name string) *Category {
	c := NewCategory(code, name)
	c.IsFolder = true
	return c
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.ParentID != nil && *c.ParentID == c.ID.String() {
		return apperror.NewValidation("category cannot be its own parent").
			WithDetail("field", "parentId")
	}

	return nil
}
