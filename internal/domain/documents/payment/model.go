// Package payment provides the Payment document (money received from a
// customer or paid to a supplier).
package payment

import (
	"context"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
)

// Kind distinguishes incoming from outgoing money.
type Kind string

const (
	KindReceive Kind = "receive"
	KindPay     Kind = "pay"
)

// PartyType names the counterparty catalog a payment settles with.
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartySupplier PartyType = "supplier"
)

// DocumentType is the type name used in audit entries and state errors.
const DocumentType = "Payment"

// Payment records money moving between the company and a counterparty.
// It never touches the stock ledger; confirm only fixes the record and
// stamps the confirmation. Headers only, no table part.
type Payment struct {
	entity.Document

	Kind      Kind        `db:"kind" json:"kind"`
	PartyType PartyType   `db:"party_type" json:"partyType"`
	PartyID   id.ID       `db:"party_id" json:"partyId"`
	Amount    types.Money `db:"amount" json:"amount"`

	// Method is free-form: cash, bank transfer, card.
	Method string `db:"method" json:"method,omitempty"`
}

// NewPayment creates a new draft payment.
func NewPayment(kind Kind, partyType PartyType, partyID id.ID, amount types.Money) *Payment {
	return &Payment{
		Document:  entity.NewDocument(),
		Kind:      kind,
		PartyType: partyType,
		PartyID:   partyID,
		Amount:    amount,
	}
}

// Validate implements entity.Validatable. Receipts settle with customers and
// payments with suppliers; the kind pins the party type.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	switch p.Kind {
	case KindReceive:
		if p.PartyType != PartyCustomer {
			return apperror.NewValidation("receive settles with a customer").
				WithDetail("field", "partyType")
		}
	case KindPay:
		if p.PartyType != PartySupplier {
			return apperror.NewValidation("pay settles with a supplier").
				WithDetail("field", "partyType")
		}
	default:
		return apperror.NewValidation("kind must be receive or pay").
			WithDetail("field", "kind")
	}

	if id.IsNil(p.PartyID) {
		return apperror.NewValidation("party is required").
			WithDetail("field", "partyId")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	return nil
}
