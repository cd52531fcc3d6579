package pos

import "testing"

func TestIsPaid(t *testing.T) {
	cases := []struct {
		name       string
		total      float64
		amountPaid *float64
		expected   bool
	}{
		{name: "nil amount is unpaid", total: 23, amountPaid: nil, expected: false},
		{name: "exact amount", total: 23, amountPaid: f64(23), expected: true},
		{name: "overpaid", total: 23, amountPaid: f64(30), expected: true},
		{name: "underpaid", total: 23, amountPaid: f64(22.99), expected: false},
		{name: "zero total never counts as paid", total: 0, amountPaid: f64(0), expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPaid(tc.total, tc.amountPaid); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCheckRecordPayment(t *testing.T) {
	cases := []struct {
		name       string
		status     OrderStatus
		method     PaymentMethod
		amountPaid *float64
		total      float64
		wantCode   ErrorCode
	}{
		{name: "open cash exact", status: OrderStatusOpen, method: PaymentCash, amountPaid: f64(23), total: 23},
		{name: "open card under total allowed", status: OrderStatusOpen, method: PaymentCard, amountPaid: f64(10), total: 23},
		{name: "completed order refused", status: OrderStatusCompleted, method: PaymentCash, amountPaid: f64(23), total: 23, wantCode: ErrOrderCompleted},
		{name: "nil amount", status: OrderStatusOpen, method: PaymentCard, amountPaid: nil, total: 23, wantCode: "VALIDATION_ERROR"},
		{name: "zero amount", status: OrderStatusOpen, method: PaymentCard, amountPaid: f64(0), total: 23, wantCode: "VALIDATION_ERROR"},
		{name: "cash below total", status: OrderStatusOpen, method: PaymentCash, amountPaid: f64(20), total: 23, wantCode: ErrInsufficientPayment},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verr := CheckRecordPayment(tc.status, tc.method, tc.amountPaid, tc.total)
			if tc.wantCode == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("expected %s, got none", tc.wantCode)
			}
			if verr.Code != tc.wantCode {
				t.Fatalf("expected %s, got %s", tc.wantCode, verr.Code)
			}
		})
	}
}

func TestChangeDue(t *testing.T) {
	if got := ChangeDue(23, 25); got != 2 {
		t.Fatalf("expected change 2, got %v", got)
	}
	if got := ChangeDue(23, 23); got != 0 {
		t.Fatalf("expected change 0, got %v", got)
	}
	if got := ChangeDue(23, 20); got != 0 {
		t.Fatalf("expected no negative change, got %v", got)
	}
}
