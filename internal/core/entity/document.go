package entity

import (
	"context"
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
)

// DocStatus is the lifecycle state of a stock-affecting document.
//
// Transitions:
//
//	draft ──confirm──▶ completed
//	draft ──confirm──▶ partial ──confirm──▶ completed   (purchase/sale only)
//	draft ──cancel───▶ cancelled
//
// completed and cancelled are terminal.
type DocStatus string

const (
	StatusDraft     DocStatus = "draft"
	StatusPartial   DocStatus = "partial"
	StatusCompleted DocStatus = "completed"
	StatusCancelled DocStatus = "cancelled"
)

// Document is the base type for business transactions.
// Examples: PurchaseOrder, SaleOrder, StockAdjustment, StockTransfer.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the lifecycle state, see DocStatus
	Status DocStatus `db:"status" json:"status"`

	// ConfirmedAt is set on the first successful confirm
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`

	// ConfirmedBy is the actor of the first successful confirm
	ConfirmedBy string `db:"confirmed_by" json:"confirmedBy,omitempty"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new draft Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Status:       StatusDraft,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// CanModify checks if document header and lines can still be edited.
// Only drafts are editable; stock has already moved for every other state.
func (d *Document) CanModify() error {
	if d.Status != StatusDraft {
		return apperror.NewInvalidState("document", string(d.Status), "modify").
			WithDetail("document_id", d.ID.String())
	}
	return nil
}

// CanConfirm reports whether a confirm transition is legal from the current
// state. allowPartial permits re-confirming a partially fulfilled document
// (purchase and sale orders).
func (d *Document) CanConfirm(docType string, allowPartial bool) error {
	if d.Status == StatusDraft {
		return nil
	}
	if allowPartial && d.Status == StatusPartial {
		return nil
	}
	return apperror.NewInvalidState(docType, string(d.Status), "confirm").
		WithDetail("document_id", d.ID.String())
}

// CanCancel reports whether the document can be cancelled. Cancel is only
// reachable from draft; confirmed stock movements cannot be undone here.
func (d *Document) CanCancel(docType string) error {
	if d.Status != StatusDraft {
		return apperror.NewInvalidState(docType, string(d.Status), "cancel").
			WithDetail("document_id", d.ID.String())
	}
	return nil
}

// MarkConfirmed records the outcome of a confirm run. completed=false leaves
// the document in partial state (some lines still carry unresolved quantity).
func (d *Document) MarkConfirmed(actor string, completed bool) {
	if d.ConfirmedAt == nil {
		now := time.Now().UTC()
		d.ConfirmedAt = &now
		d.ConfirmedBy = actor
	}
	if completed {
		d.Status = StatusCompleted
	} else {
		d.Status = StatusPartial
	}
	d.Touch()
}

// MarkCancelled moves a draft to the cancelled terminal state.
func (d *Document) MarkCancelled() {
	d.Status = StatusCancelled
	d.Touch()
}

// IsFinal returns true for terminal states.
func (d *Document) IsFinal() bool {
	return d.Status == StatusCompleted || d.Status == StatusCancelled
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}
