package pos

import (
	"fmt"
	"math"
	"strings"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
	PaymentQR   PaymentMethod = "QR"
)

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))) {
	case PaymentCash:
		return PaymentCash, true
	case PaymentCard:
		return PaymentCard, true
	case PaymentQR:
		return PaymentQR, true
	}
	return "", false
}

type LineItem struct {
	ProductID    int64
	ProductName  string
	UnitPrice    float64
	Quantity     int32
	LineDiscount float64
}

func (li LineItem) Subtotal() float64 {
	return Round2(float64(li.Quantity)*li.UnitPrice - li.LineDiscount)
}

type Discount struct {
	Type  DiscountType
	Value float64
}

type DeliveryInfo struct {
	DeliveryAddress     string
	PickupAddress       string
	SpecialInstructions string
	EstimatedMinutes    int32
	Priority            DeliveryPriority
	RecipientName       string
	RecipientPhone      string
}

// Draft is a checkout request before it touches the database.
type Draft struct {
	OrderType     OrderType
	Items         []LineItem
	Discount      *Discount
	PaymentMethod PaymentMethod
	AmountPaid    *float64
	TableNumber   *int32
	GuestCount    *int32
	Delivery      *DeliveryInfo
}

type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	Total          float64
}

// ValidateAndPrice rejects an invalid draft before any persistence and
// computes the invoice totals. Tax applies after the invoice discount.
func ValidateAndPrice(draft Draft, taxRate float64) (Totals, *Error) {
	switch draft.OrderType {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
	default:
		return Totals{}, ValidationError(ErrInvalidOrderType, "Order type must be DINE_IN, TAKEAWAY or DELIVERY")
	}

	if len(draft.Items) == 0 {
		return Totals{}, ValidationError(ErrEmptyCart, "Order must have at least one item")
	}

	subtotal := 0.0
	for _, item := range draft.Items {
		if item.Quantity <= 0 {
			return Totals{}, ValidationError(ErrInvalidItem, fmt.Sprintf("Invalid quantity for %q", item.ProductName))
		}
		if item.UnitPrice < 0 {
			return Totals{}, ValidationError(ErrInvalidItem, fmt.Sprintf("Invalid unit price for %q", item.ProductName))
		}
		lineAmount := float64(item.Quantity) * item.UnitPrice
		if item.LineDiscount < 0 || item.LineDiscount > lineAmount {
			return Totals{}, ValidationError(ErrInvalidItem, fmt.Sprintf("Invalid line discount for %q", item.ProductName))
		}
		subtotal += lineAmount - item.LineDiscount
	}
	subtotal = Round2(subtotal)

	discountAmount := 0.0
	if draft.Discount != nil {
		switch draft.Discount.Type {
		case DiscountPercentage:
			if draft.Discount.Value < 0 || draft.Discount.Value > 100 {
				return Totals{}, ValidationError(ErrDiscountOutOfRange, "Percentage discount must be between 0 and 100")
			}
			discountAmount = Round2(subtotal * draft.Discount.Value / 100)
		case DiscountFixed:
			if draft.Discount.Value < 0 {
				return Totals{}, ValidationError(ErrDiscountOutOfRange, "Fixed discount cannot be negative")
			}
			if draft.Discount.Value > subtotal {
				return Totals{}, ValidationError(ErrDiscountExceedsSubtotal, "Fixed discount cannot exceed the subtotal")
			}
			discountAmount = Round2(draft.Discount.Value)
		default:
			return Totals{}, ValidationError(ErrDiscountOutOfRange, "Discount type must be PERCENTAGE or FIXED")
		}
	}

	if draft.OrderType == OrderTypeDineIn {
		if draft.TableNumber == nil {
			return Totals{}, ValidationError(ErrTableRequired, "Dine-in orders require a table number")
		}
		if draft.GuestCount == nil || *draft.GuestCount <= 0 {
			return Totals{}, ValidationError(ErrTableRequired, "Dine-in orders require a positive guest count")
		}
	}

	// A delivery order without the structured payload used to silently skip
	// the tracking record; the payload is now mandatory for the type.
	if draft.OrderType == OrderTypeDelivery {
		if draft.Delivery == nil {
			return Totals{}, ValidationError(ErrDeliveryInfoRequired, "Delivery orders require delivery info")
		}
		if strings.TrimSpace(draft.Delivery.RecipientName) == "" ||
			strings.TrimSpace(draft.Delivery.RecipientPhone) == "" ||
			strings.TrimSpace(draft.Delivery.DeliveryAddress) == "" {
			return Totals{}, ValidationError(ErrDeliveryInfoRequired, "Delivery orders require customer name, phone and address")
		}
	}

	taxable := subtotal - discountAmount
	taxAmount := Round2(taxable * taxRate)
	total := Round2(taxable + taxAmount)

	if draft.PaymentMethod == PaymentCash && draft.AmountPaid != nil && *draft.AmountPaid < total {
		return Totals{}, ValidationError(ErrInsufficientPayment, "Cash payment is less than the order total")
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          total,
	}, nil
}

func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
