package entity

import (
	"context"
	"time"

	"stockerp/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants.
// Validation never touches the database; cross-record rules live in the
// services.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity carries the fields shared by every persisted entity, catalog
// and document alike: a UUIDv7 primary key, the soft-delete mark, the
// optimistic-lock version and the JSONB custom-attribute bag.
type BaseEntity struct {
	ID           id.ID      `db:"id" json:"id"`
	DeletionMark bool       `db:"deletion_mark" json:"deletionMark"`
	Version      int        `db:"version" json:"version"`
	Attributes   Attributes `db:"attributes" json:"attributes,omitempty"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: id.New(), Version: 1}
}

// GetID returns the primary key.
func (b *BaseEntity) GetID() id.ID { return b.ID }

// Touch increments version (for optimistic locking).
func (b *BaseEntity) Touch() { b.Version++ }

// BaseDocument extends BaseEntity with audit fields. Documents record who
// created and last changed them; catalogs do not.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewBaseDocument creates a new BaseDocument with generated ID and timestamps.
func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}

// BaseCatalog uses BaseEntity directly.
type BaseCatalog struct {
	BaseEntity
}

// NewBaseCatalog creates a new BaseCatalog with generated ID.
func NewBaseCatalog() BaseCatalog {
	return BaseCatalog{BaseEntity: NewBaseEntity()}
}
