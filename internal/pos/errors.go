package pos

import "net/http"

type ErrorCode string

const (
	ErrEmptyCart               ErrorCode = "EMPTY_CART"
	ErrInvalidItem             ErrorCode = "INVALID_ITEM"
	ErrInvalidOrderType        ErrorCode = "INVALID_ORDER_TYPE"
	ErrInvalidPaymentMethod    ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrDiscountOutOfRange      ErrorCode = "DISCOUNT_OUT_OF_RANGE"
	ErrDiscountExceedsSubtotal ErrorCode = "DISCOUNT_EXCEEDS_SUBTOTAL"
	ErrTableRequired           ErrorCode = "TABLE_REQUIRED"
	ErrTableNotFound           ErrorCode = "TABLE_NOT_FOUND"
	ErrTableOccupied           ErrorCode = "TABLE_OCCUPIED"
	ErrDeliveryInfoRequired    ErrorCode = "DELIVERY_INFO_REQUIRED"
	ErrInsufficientPayment     ErrorCode = "INSUFFICIENT_PAYMENT"
	ErrOrderCompleted          ErrorCode = "ORDER_ALREADY_COMPLETED"
	ErrCustomerNotFound        ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrInvalidState            ErrorCode = "INVALID_STATE"
)

type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code ErrorCode, message string, status int) *Error {
	return &Error{Code: code, Message: message, StatusCode: status}
}

func ValidationError(code ErrorCode, message string) *Error {
	return newError(code, message, http.StatusBadRequest)
}

func ConflictError(code ErrorCode, message string) *Error {
	return newError(code, message, http.StatusConflict)
}

func NotFoundError(code ErrorCode, message string) *Error {
	return newError(code, message, http.StatusNotFound)
}
