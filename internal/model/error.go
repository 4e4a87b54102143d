package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeBasketNotFound       = "BASKET_NOT_FOUND"
	ErrCodeBasketConflict       = "BASKET_CONFLICT"
	ErrCodeInvalidCoupon        = "INVALID_COUPON"
	ErrCodeCouponNotApplied     = "COUPON_NOT_APPLIED"
	ErrCodePaymentIntentMissing = "PAYMENT_INTENT_MISSING"
	ErrCodePaymentSyncFailed    = "PAYMENT_SYNC_FAILED"
	ErrCodeEmptyBasket          = "EMPTY_BASKET"
	ErrCodeInvalidSearchQuery   = "INVALID_SEARCH_QUERY"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrBasketNotFound       = NewDomainError(ErrCodeBasketNotFound, "Basket not found")
	ErrBasketConflict       = NewDomainError(ErrCodeBasketConflict, "Basket was modified concurrently, please retry")
	ErrInvalidCoupon        = NewDomainError(ErrCodeInvalidCoupon, "Invalid coupon code")
	ErrCouponNotApplied     = NewDomainError(ErrCodeCouponNotApplied, "No coupon is applied to this basket")
	ErrPaymentIntentMissing = NewDomainError(ErrCodePaymentIntentMissing, "Basket has no payment intent")
	ErrPaymentSync          = NewDomainError(ErrCodePaymentSyncFailed, "Problem updating the payment intent")
	ErrEmptyBasket          = NewDomainError(ErrCodeEmptyBasket, "Basket is empty")
	ErrInvalidSearchQuery   = NewDomainError(ErrCodeInvalidSearchQuery, "Query cannot be empty")
	ErrEmptyChatMessage     = NewDomainError(ErrCodeMissingField, "Message cannot be empty")
	ErrServiceUnavailable   = NewDomainError(ErrCodeServiceUnavailable, "Service is not available")
)

// ValidationError wraps a field-level validation failure.
func ValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidationFailed, message)
}
