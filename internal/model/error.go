package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorKind classifies a domain error so callers can decide how to react.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindInsufficientStock
	KindNotFound
	KindConflict
	KindUnauthorised
	KindForbidden
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorised:
		return "unauthorised"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeMissingAddress     = "MISSING_ADDRESS"
	ErrCodeInvalidAddress     = "INVALID_ADDRESS"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidCategory    = "INVALID_CATEGORY"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business rule violation with a stable code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string

	// ProductID and ProductName are set for insufficient stock errors.
	ProductID   string
	ProductName string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Retryable reports whether resubmitting the same request unchanged may succeed.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindInternal
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with the generic validation code.
func NewValidationError(message string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, message)
}

// NewInsufficientStockError names the product that cannot cover the requested quantity.
func NewInsufficientStockError(productID, productName string) *DomainError {
	return &DomainError{
		Kind:        KindInsufficientStock,
		Code:        ErrCodeInsufficientStock,
		Message:     fmt.Sprintf("Insufficient stock for %s", productName),
		ProductID:   productID,
		ProductName: productName,
	}
}

// AsDomainError unwraps err into a DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

// Common domain errors
var (
	ErrEmptyCart          = NewDomainError(KindValidation, ErrCodeEmptyCart, "Cannot place order with empty cart")
	ErrMissingAddress     = NewDomainError(KindValidation, ErrCodeMissingAddress, "Please select a delivery address")
	ErrInvalidQuantity    = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than 0")
	ErrQuantityTooLarge   = NewDomainError(KindValidation, ErrCodeInvalidQuantity, fmt.Sprintf("Quantity cannot exceed %d", MaxItemQuantity))
	ErrInvalidCategory    = NewDomainError(KindValidation, ErrCodeInvalidCategory, "Unknown product category")
	ErrInvalidStatus      = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidZipCode     = NewDomainError(KindValidation, ErrCodeInvalidAddress, "Valid 5-digit ZIP code is required")
	ErrInvalidState       = NewDomainError(KindValidation, ErrCodeInvalidAddress, "Valid 2-letter state code is required")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrAddressNotFound    = NewDomainError(KindNotFound, ErrCodeAddressNotFound, "Address not found")
	ErrCartItemNotFound   = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound       = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrEmailTaken         = NewDomainError(KindConflict, ErrCodeEmailTaken, "This email is already registered")
	ErrInvalidCredentials = NewDomainError(KindUnauthorised, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUnauthorised       = NewDomainError(KindUnauthorised, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "You do not have access to this resource")
)
