package dto

import (
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain/documents/payment"
)

// --- Request DTOs ---

// CreatePaymentRequest is the request body for creating a payment.
type CreatePaymentRequest struct {
	Kind      string      `json:"kind" binding:"required,oneof=receive pay"`
	PartyType string      `json:"partyType" binding:"required,oneof=customer supplier"`
	PartyID   string      `json:"partyId" binding:"required"`
	Amount    types.Money `json:"amount" binding:"required"`
	Method    string      `json:"method"`
	Date      *time.Time  `json:"date"`
	Comment   string      `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePaymentRequest) ToEntity() (*payment.Payment, error) {
	partyID, err := id.Parse(r.PartyID)
	if err != nil {
		return nil, apperror.NewValidation("invalid partyId format")
	}

	doc := payment.NewPayment(payment.Kind(r.Kind), payment.PartyType(r.PartyType), partyID, r.Amount)
	doc.Method = r.Method
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment
	return doc, nil
}

// UpdatePaymentRequest is the request body for updating a draft payment.
type UpdatePaymentRequest struct {
	Kind      string      `json:"kind" binding:"required,oneof=receive pay"`
	PartyType string      `json:"partyType" binding:"required,oneof=customer supplier"`
	PartyID   string      `json:"partyId" binding:"required"`
	Amount    types.Money `json:"amount" binding:"required"`
	Method    string      `json:"method"`
	Date      *time.Time  `json:"date"`
	Comment   string      `json:"comment"`
	Version   int         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePaymentRequest) ApplyTo(doc *payment.Payment) error {
	partyID, err := id.Parse(r.PartyID)
	if err != nil {
		return apperror.NewValidation("invalid partyId format")
	}

	doc.Kind = payment.Kind(r.Kind)
	doc.PartyType = payment.PartyType(r.PartyType)
	doc.PartyID = partyID
	doc.Amount = r.Amount
	doc.Method = r.Method
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment
	doc.Version = r.Version
	return nil
}

// --- Response DTOs ---

// PaymentResponse is the response body for a payment.
type PaymentResponse struct {
	DocumentResponse
	Kind      string      `json:"kind"`
	PartyType string      `json:"partyType"`
	PartyID   string      `json:"partyId"`
	Amount    types.Money `json:"amount"`
	Method    string      `json:"method,omitempty"`
}

// FromPayment creates response DTO from domain entity.
func FromPayment(doc *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		DocumentResponse: FromDocument(doc.Document),
		Kind:             string(doc.Kind),
		PartyType:        string(doc.PartyType),
		PartyID:          doc.PartyID.String(),
		Amount:           doc.Amount,
		Method:           doc.Method,
	}
}
