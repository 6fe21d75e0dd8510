package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeNoFloristFound    = "NO_FLORIST_AVAILABLE"
	ErrCodeFloristNotFound   = "FLORIST_NOT_FOUND"
	ErrCodeNoFloristMatched  = "NO_FLORIST_MATCHED"
	ErrCodePromoNotFound     = "PROMO_NOT_FOUND"
	ErrCodePromoExpired      = "PROMO_EXPIRED"
	ErrCodePromoInactive     = "PROMO_INACTIVE"
	ErrCodePromoBelowMinimum = "PROMO_BELOW_MINIMUM"
	ErrCodeProviderRejected  = "PROVIDER_REJECTED"
	ErrCodeSessionTimeout    = "SESSION_TIMEOUT"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
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
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart must contain at least one item")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrNoFloristAvailable = NewDomainError(ErrCodeNoFloristFound, "No available florist can serve this delivery")
	ErrFloristNotFound    = NewDomainError(ErrCodeFloristNotFound, "Florist not found")
	ErrNoFloristMatched   = NewDomainError(ErrCodeNoFloristMatched, "Delivery fee requires a matched florist")
	ErrPromoNotFound      = NewDomainError(ErrCodePromoNotFound, "Promo code not found")
	ErrPromoExpired       = NewDomainError(ErrCodePromoExpired, "Promo code has expired")
	ErrPromoInactive      = NewDomainError(ErrCodePromoInactive, "Promo code is no longer active")
	ErrPromoBelowMinimum  = NewDomainError(ErrCodePromoBelowMinimum, "Order total is below the promo code minimum")
	ErrProviderRejected   = NewDomainError(ErrCodeProviderRejected, "Payment provider rejected the checkout session")
	ErrSessionTimeout     = NewDomainError(ErrCodeSessionTimeout, "Payment provider did not respond in time")
	ErrInvalidConfig      = NewDomainError(ErrCodeInvalidConfig, "Checkout session configuration is invalid")
)
