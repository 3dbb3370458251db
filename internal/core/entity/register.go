// Package entity provides core domain entities.
package entity

import (
	"time"

	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
)

// MovementKind classifies what produced a ledger entry.
// The kind never implies the sign: ChangeQuantity is always signed.
type MovementKind string

const (
	// MovementInbound - goods received into a warehouse
	MovementInbound MovementKind = "inbound"
	// MovementOutbound - goods shipped out of a warehouse
	MovementOutbound MovementKind = "outbound"
	// MovementAdjust - manual correction (either direction)
	MovementAdjust MovementKind = "adjust"
	// MovementTransfer - one leg of a warehouse-to-warehouse transfer
	MovementTransfer MovementKind = "transfer"
)

// StockMovement is one immutable entry of the stock ledger.
// Rows are append-only: never updated, never deleted.
//
// Invariant: BeforeQuantity + ChangeQuantity == AfterQuantity.
type StockMovement struct {
	// ID is unique identifier for this ledger line (UUIDv7, time-ordered)
	ID id.ID `db:"id" json:"id"`

	// Dimensions
	GoodsID     id.ID `db:"goods_id" json:"goodsId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Kind classifies the originating operation
	Kind MovementKind `db:"kind" json:"kind"`

	// ChangeQuantity is the signed delta applied to the balance
	ChangeQuantity types.Quantity `db:"change_quantity" json:"changeQuantity"`

	// Balance snapshots taken under the row lock
	BeforeQuantity types.Quantity `db:"before_quantity" json:"beforeQuantity"`
	AfterQuantity  types.Quantity `db:"after_quantity" json:"afterQuantity"`

	// RefDocType/RefDocID point at the originating document, if any
	RefDocType string `db:"ref_doc_type" json:"refDocType,omitempty"`
	RefDocID   id.ID  `db:"ref_doc_id" json:"refDocId,omitempty"`

	// Note is a free-text remark recorded with the mutation
	Note string `db:"note" json:"note,omitempty"`

	// CreatedBy is the actor who triggered the mutation
	CreatedBy string `db:"created_by" json:"createdBy"`

	// CreatedAt orders the ledger within a (goods, warehouse) pair
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// DocRef identifies the document that triggered a mutation.
// Zero value means "no originating document" (manual operation).
type DocRef struct {
	Type string
	ID   id.ID
}

// IsZero reports whether the reference is empty.
func (r DocRef) IsZero() bool {
	return r.Type == "" && id.IsNil(r.ID)
}

// NewStockMovement builds a ledger entry from a balance snapshot and a signed
// delta. before is the balance under lock prior to the mutation.
func NewStockMovement(
	goodsID, warehouseID id.ID,
	kind MovementKind,
	change, before types.Quantity,
	ref DocRef,
	note, actor string,
) StockMovement {
	return StockMovement{
		ID:             id.New(),
		GoodsID:        goodsID,
		WarehouseID:    warehouseID,
		Kind:           kind,
		ChangeQuantity: change,
		BeforeQuantity: before,
		AfterQuantity:  before + change,
		RefDocType:     ref.Type,
		RefDocID:       ref.ID,
		Note:           note,
		CreatedBy:      actor,
		CreatedAt:      time.Now().UTC(),
	}
}

// StockBalance is the materialized on-hand quantity per (goods, warehouse).
// It exists for fast reads and row-level locking; the ledger is the source
// of truth and the balance must always equal the ledger's running sum.
type StockBalance struct {
	// Dimensions (unique together)
	GoodsID     id.ID `db:"goods_id" json:"goodsId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Quantity is the current on-hand amount
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
