package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind groups domain errors by how a caller should react to them.
type ErrorKind string

const (
	// KindValidation errors are caller-correctable and raised before any mutation.
	KindValidation ErrorKind = "validation"
	// KindState errors reject a transition that violates a lifecycle.
	KindState ErrorKind = "state"
	// KindNotFound errors mean the addressed record does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindConcurrency errors mean the record changed between read and write.
	KindConcurrency ErrorKind = "concurrency"
	// KindDuplicate errors mean an identical request is already in flight.
	KindDuplicate ErrorKind = "duplicate"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON              = "INVALID_JSON"
	ErrCodeMissingField             = "MISSING_FIELD"
	ErrCodeInvalidID                = "INVALID_ID"
	ErrCodeInvalidParameter         = "INVALID_PARAMETER"
	ErrCodeInvalidLineItem          = "INVALID_LINE_ITEM"
	ErrCodeEmptyCart                = "EMPTY_CART"
	ErrCodeMissingAddress           = "MISSING_ADDRESS"
	ErrCodeInvalidOrderType         = "INVALID_ORDER_TYPE"
	ErrCodeInvalidStatus            = "INVALID_STATUS"
	ErrCodeMenuItemNotFound         = "MENU_ITEM_NOT_FOUND"
	ErrCodeMenuItemUnavailable      = "MENU_ITEM_UNAVAILABLE"
	ErrCodePastDate                 = "PAST_DATE"
	ErrCodeHorizonExceeded          = "HORIZON_EXCEEDED"
	ErrCodePartySize                = "PARTY_SIZE"
	ErrCodeMissingContact           = "MISSING_CONTACT"
	ErrCodeInvalidTransition        = "INVALID_TRANSITION"
	ErrCodeCancellationWindowClosed = "CANCELLATION_WINDOW_CLOSED"
	ErrCodeOrderNotFound            = "ORDER_NOT_FOUND"
	ErrCodeReservationNotFound      = "RESERVATION_NOT_FOUND"
	ErrCodeConcurrentModification   = "CONCURRENT_MODIFICATION"
	ErrCodeDuplicateRequest         = "DUPLICATE_REQUEST"
	ErrCodeUnauthorised             = "UNAUTHORIZED"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidLineItem          = NewDomainError(KindValidation, ErrCodeInvalidLineItem, "line item has a negative price or a quantity below one")
	ErrEmptyCart                = NewDomainError(KindValidation, ErrCodeEmptyCart, "cart is empty")
	ErrMissingAddress           = NewDomainError(KindValidation, ErrCodeMissingAddress, "delivery address is required for delivery orders")
	ErrInvalidOrderType         = NewDomainError(KindValidation, ErrCodeInvalidOrderType, "order type must be delivery, pickup or dine_in")
	ErrInvalidStatus            = NewDomainError(KindValidation, ErrCodeInvalidStatus, "unknown status")
	ErrMenuItemNotFound         = NewDomainError(KindValidation, ErrCodeMenuItemNotFound, "one or more menu items not found")
	ErrMenuItemUnavailable      = NewDomainError(KindValidation, ErrCodeMenuItemUnavailable, "one or more menu items are unavailable")
	ErrPastDate                 = NewDomainError(KindValidation, ErrCodePastDate, "reservation time is in the past")
	ErrHorizonExceeded          = NewDomainError(KindValidation, ErrCodeHorizonExceeded, "reservation time is beyond the booking horizon")
	ErrPartySize                = NewDomainError(KindValidation, ErrCodePartySize, "party size is outside the bookable range")
	ErrMissingContact           = NewDomainError(KindValidation, ErrCodeMissingContact, "a customer id or guest name is required")
	ErrInvalidTransition        = NewDomainError(KindState, ErrCodeInvalidTransition, "status transition not allowed")
	ErrCancellationWindowClosed = NewDomainError(KindState, ErrCodeCancellationWindowClosed, "reservation can no longer be cancelled")
	ErrOrderNotFound            = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "order not found")
	ErrReservationNotFound      = NewDomainError(KindNotFound, ErrCodeReservationNotFound, "reservation not found")
	ErrMenuItemMissing          = NewDomainError(KindNotFound, ErrCodeNotFound, "menu item not found")
	ErrConcurrentModification   = NewDomainError(KindConcurrency, ErrCodeConcurrentModification, "record was modified concurrently, retry the request")
	ErrDuplicateRequest         = NewDomainError(KindDuplicate, ErrCodeDuplicateRequest, "an identical request is already being processed")
)
