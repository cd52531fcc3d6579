package pos

// IsPaid is the single payment-status predicate. Every consumer of payment
// state (clearing, table projections, receipts, events) must go through it
// rather than comparing amounts inline. A nil amountPaid means unpaid.
func IsPaid(total float64, amountPaid *float64) bool {
	return total > 0 && amountPaid != nil && *amountPaid >= total
}

// ChangeDue returns the cash change for an amount tendered against a total,
// never negative.
func ChangeDue(total float64, amountPaid float64) float64 {
	change := Round2(amountPaid - total)
	if change < 0 {
		return 0
	}
	return change
}

// CheckRecordPayment validates recording a payment against the loaded order.
// Recording payment only ever writes the payment fields: the order stays
// OPEN and the table keeps its occupant until an explicit clear.
func CheckRecordPayment(status OrderStatus, method PaymentMethod, amountPaid *float64, total float64) *Error {
	if status == OrderStatusCompleted {
		return ConflictError(ErrOrderCompleted, "Order is already completed")
	}
	if amountPaid == nil || *amountPaid <= 0 {
		return ValidationError("VALIDATION_ERROR", "Amount paid must be positive")
	}
	if method == PaymentCash && *amountPaid < total {
		return ValidationError(ErrInsufficientPayment, "Cash payment is less than the order total")
	}
	return nil
}
