// Package apperror defines the structured error type every layer speaks.
// Handlers translate an AppError straight into the API's JSON error shape,
// so business code never formats HTTP responses itself.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeNoSuchBalance          = "NO_SUCH_BALANCE"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeInvalidState           = "INVALID_STATE"
	CodeDuplicateLineItem      = "DUPLICATE_LINE_ITEM"
	CodeConsistencyViolation   = "CONSISTENCY_VIOLATION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	CodeNotFound = "NOT_FOUND"

	CodeConflict    = "CONFLICT"
	CodeDuplicate   = "DUPLICATE_ENTRY"
	CodeIdempotency = "IDEMPOTENCY_CONFLICT"
)

// AppError carries a code, a client-safe message, optional structured
// details, the HTTP status the error maps to, and the internal cause.
// The cause is logged but never serialized to the client.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is/As.
func (e *AppError) Unwrap() error { return e.Err }

// WithDetail adds one key-value pair to the details map.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// --- Factories ---

// NewValidation reports malformed input (400).
func NewValidation(message string) *AppError {
	return newError(http.StatusBadRequest, CodeValidation, message)
}

// NewNotFound reports a missing entity (404).
func NewNotFound(entity string, id any) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule reports a domain rule violation (422) under a caller-chosen code.
func NewBusinessRule(code, message string) *AppError {
	return newError(http.StatusUnprocessableEntity, code, message)
}

// NewInvalidQuantity is returned when a mutation is requested with a
// non-positive quantity.
func NewInvalidQuantity(requested string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeInvalidQuantity, "Quantity must be positive").
		WithDetail("requested", requested)
}

// NewNoSuchBalance is returned on outbound mutation against a (goods, warehouse)
// pair that has never received stock.
func NewNoSuchBalance(goodsID, warehouseID string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeNoSuchBalance,
		"No stock balance exists for this goods and warehouse").
		WithDetail("goods_id", goodsID).
		WithDetail("warehouse_id", warehouseID)
}

// NewInsufficientStock reports a stock shortage. The message carries the
// current balance for diagnostics.
func NewInsufficientStock(goodsID string, requested, available string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeInsufficientStock,
		fmt.Sprintf("Insufficient stock: current balance is %s", available)).
		WithDetail("goods_id", goodsID).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewInvalidState is returned when a document transition is attempted from a
// state that does not allow it (e.g. confirming an already confirmed document).
func NewInvalidState(docType, current, attempted string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeInvalidState,
		fmt.Sprintf("Cannot %s a %s document in status %q", attempted, docType, current)).
		WithDetail("document_type", docType).
		WithDetail("status", current)
}

// NewDuplicateLineItem is returned when the same goods appears twice in one
// document's lines.
func NewDuplicateLineItem(goodsID string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeDuplicateLineItem,
		"The same goods is listed more than once").
		WithDetail("goods_id", goodsID)
}

// NewConsistencyViolation signals a broken ledger invariant. Not expected in
// normal operation; reserved for invariant assertions.
func NewConsistencyViolation(message string) *AppError {
	return newError(http.StatusInternalServerError, CodeConsistencyViolation, message)
}

// NewConcurrentModification reports an optimistic lock failure (409).
func NewConcurrentModification(entity string, id any) *AppError {
	return newError(http.StatusConflict, CodeConcurrentModification,
		"Record was modified by another user. Please refresh and try again.").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewInternal wraps an unexpected error; the cause stays server-side.
func NewInternal(err error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "Internal server error").
		WithCause(err)
}

// NewUnauthorized reports a failed or missing authentication (401).
func NewUnauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

// NewForbidden reports an authorization failure (403).
func NewForbidden(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

// NewIdempotencyConflict is returned when the keyed operation is still running
// or already finished.
func NewIdempotencyConflict(key string) *AppError {
	return newError(http.StatusConflict, CodeIdempotency,
		"Operation already in progress or completed").
		WithDetail("idempotency_key", key)
}

// NewIdempotencyMismatch is returned when the same idempotency key is reused
// for a different request (different user/operation/body hash).
func NewIdempotencyMismatch(key string) *AppError {
	return newError(http.StatusConflict, CodeIdempotency, "Idempotency key mismatch").
		WithDetail("idempotency_key", key)
}

// NewConflict reports a generic state conflict (409).
func NewConflict(message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, message)
}

// NewDuplicate reports a uniqueness violation (409).
func NewDuplicate(entity, field, value string) *AppError {
	return newError(http.StatusConflict, CodeDuplicate,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// --- Inspection helpers ---

// AsAppError extracts an AppError from the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether the chain contains an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// IsCode reports whether the error carries the given code.
func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether the error is a CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}
