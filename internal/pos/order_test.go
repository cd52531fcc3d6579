package pos

import "testing"

func f64(v float64) *float64 { return &v }
func i32(v int32) *int32     { return &v }

func TestValidateAndPriceDineIn(t *testing.T) {
	draft := Draft{
		OrderType: OrderTypeDineIn,
		Items: []LineItem{
			{ProductID: 1, ProductName: "Burger", UnitPrice: 10, Quantity: 1},
			{ProductID: 2, ProductName: "Pizza", UnitPrice: 10, Quantity: 1},
		},
		PaymentMethod: PaymentCash,
		TableNumber:   i32(5),
		GuestCount:    i32(2),
	}

	totals, verr := ValidateAndPrice(draft, 0.15)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if totals.Subtotal != 20 {
		t.Fatalf("expected subtotal 20, got %v", totals.Subtotal)
	}
	if totals.TaxAmount != 3 {
		t.Fatalf("expected tax 3, got %v", totals.TaxAmount)
	}
	if totals.Total != 23 {
		t.Fatalf("expected total 23, got %v", totals.Total)
	}
}

func TestValidateAndPriceDiscounts(t *testing.T) {
	base := func() Draft {
		return Draft{
			OrderType:     OrderTypeTakeaway,
			Items:         []LineItem{{ProductID: 1, ProductName: "Kebab", UnitPrice: 50, Quantity: 2}},
			PaymentMethod: PaymentCard,
		}
	}

	cases := []struct {
		name      string
		discount  *Discount
		wantCode  ErrorCode
		wantTotal float64
	}{
		{
			name:      "no discount",
			wantTotal: 115,
		},
		{
			name:      "valid percentage",
			discount:  &Discount{Type: DiscountPercentage, Value: 10},
			wantTotal: 103.5,
		},
		{
			name:     "percentage above 100",
			discount: &Discount{Type: DiscountPercentage, Value: 150},
			wantCode: ErrDiscountOutOfRange,
		},
		{
			name:     "negative percentage",
			discount: &Discount{Type: DiscountPercentage, Value: -5},
			wantCode: ErrDiscountOutOfRange,
		},
		{
			name:      "valid fixed",
			discount:  &Discount{Type: DiscountFixed, Value: 100},
			wantTotal: 0,
		},
		{
			name:     "fixed above subtotal",
			discount: &Discount{Type: DiscountFixed, Value: 100.01},
			wantCode: ErrDiscountExceedsSubtotal,
		},
		{
			name:     "unknown type",
			discount: &Discount{Type: "COUPON", Value: 5},
			wantCode: ErrDiscountOutOfRange,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := base()
			draft.Discount = tc.discount
			totals, verr := ValidateAndPrice(draft, 0.15)
			if tc.wantCode != "" {
				if verr == nil {
					t.Fatalf("expected error %s, got none", tc.wantCode)
				}
				if verr.Code != tc.wantCode {
					t.Fatalf("expected code %s, got %s", tc.wantCode, verr.Code)
				}
				return
			}
			if verr != nil {
				t.Fatalf("unexpected error: %v", verr)
			}
			if totals.Total != tc.wantTotal {
				t.Fatalf("expected total %v, got %v", tc.wantTotal, totals.Total)
			}
		})
	}
}

func TestValidateAndPriceRejections(t *testing.T) {
	item := LineItem{ProductID: 1, ProductName: "Soup", UnitPrice: 8, Quantity: 1}

	cases := []struct {
		name     string
		draft    Draft
		wantCode ErrorCode
	}{
		{
			name:     "empty cart",
			draft:    Draft{OrderType: OrderTypeTakeaway, PaymentMethod: PaymentCash},
			wantCode: ErrEmptyCart,
		},
		{
			name: "zero quantity",
			draft: Draft{
				OrderType:     OrderTypeTakeaway,
				Items:         []LineItem{{ProductID: 1, ProductName: "Soup", UnitPrice: 8}},
				PaymentMethod: PaymentCash,
			},
			wantCode: ErrInvalidItem,
		},
		{
			name: "line discount above line amount",
			draft: Draft{
				OrderType:     OrderTypeTakeaway,
				Items:         []LineItem{{ProductID: 1, ProductName: "Soup", UnitPrice: 8, Quantity: 1, LineDiscount: 9}},
				PaymentMethod: PaymentCash,
			},
			wantCode: ErrInvalidItem,
		},
		{
			name: "dine-in without table",
			draft: Draft{
				OrderType:     OrderTypeDineIn,
				Items:         []LineItem{item},
				PaymentMethod: PaymentCash,
				GuestCount:    i32(2),
			},
			wantCode: ErrTableRequired,
		},
		{
			name: "dine-in without guests",
			draft: Draft{
				OrderType:     OrderTypeDineIn,
				Items:         []LineItem{item},
				PaymentMethod: PaymentCash,
				TableNumber:   i32(3),
			},
			wantCode: ErrTableRequired,
		},
		{
			name: "delivery without payload",
			draft: Draft{
				OrderType:     OrderTypeDelivery,
				Items:         []LineItem{item},
				PaymentMethod: PaymentCard,
			},
			wantCode: ErrDeliveryInfoRequired,
		},
		{
			name: "delivery payload missing address",
			draft: Draft{
				OrderType:     OrderTypeDelivery,
				Items:         []LineItem{item},
				PaymentMethod: PaymentCard,
				Delivery:      &DeliveryInfo{RecipientName: "aa", RecipientPhone: "123"},
			},
			wantCode: ErrDeliveryInfoRequired,
		},
		{
			name: "cash below total",
			draft: Draft{
				OrderType:     OrderTypeTakeaway,
				Items:         []LineItem{item},
				PaymentMethod: PaymentCash,
				AmountPaid:    f64(5),
			},
			wantCode: ErrInsufficientPayment,
		},
		{
			name: "unknown order type",
			draft: Draft{
				OrderType:     "DRIVE_THROUGH",
				Items:         []LineItem{item},
				PaymentMethod: PaymentCash,
			},
			wantCode: ErrInvalidOrderType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, verr := ValidateAndPrice(tc.draft, 0.15)
			if verr == nil {
				t.Fatalf("expected error %s, got none", tc.wantCode)
			}
			if verr.Code != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, verr.Code)
			}
		})
	}
}

func TestValidateAndPriceDeliveryWithPayload(t *testing.T) {
	draft := Draft{
		OrderType:     OrderTypeDelivery,
		Items:         []LineItem{{ProductID: 1, ProductName: "Wrap", UnitPrice: 12, Quantity: 2}},
		PaymentMethod: PaymentCard,
		Delivery: &DeliveryInfo{
			RecipientName:   "aa",
			RecipientPhone:  "123",
			DeliveryAddress: "X St",
		},
	}

	totals, verr := ValidateAndPrice(draft, 0.1)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if totals.Total != 26.4 {
		t.Fatalf("expected total 26.4, got %v", totals.Total)
	}
}
