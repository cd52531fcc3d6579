package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"branch-pos-service/internal/middleware"
	"branch-pos-service/internal/pos"
	"branch-pos-service/internal/queue"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type createOrderRequest struct {
	OrderType     string               `json:"orderType"`
	Items         []createOrderItem    `json:"items"`
	Discount      *createOrderDiscount `json:"discount"`
	PaymentMethod string               `json:"paymentMethod"`
	AmountPaid    *float64             `json:"amountPaid"`
	TableNumber   *int32               `json:"tableNumber"`
	GuestCount    *int32               `json:"guestCount"`
	CustomerID    any                  `json:"customerId"`
	Customer      *customerPayload     `json:"customer"`
	DeliveryInfo  *deliveryInfoPayload `json:"deliveryInfo"`
	Notes         string               `json:"notes"`
}

type createOrderItem struct {
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     int32   `json:"quantity"`
	LineDiscount float64 `json:"lineDiscount"`
}

type createOrderDiscount struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type deliveryInfoPayload struct {
	DeliveryAddress     string `json:"deliveryAddress"`
	PickupAddress       string `json:"pickupAddress"`
	SpecialInstructions string `json:"specialInstructions"`
	EstimatedMinutes    int32  `json:"estimatedMinutes"`
	Priority            string `json:"priority"`
}

func writePOSError(w http.ResponseWriter, verr *pos.Error) {
	response.Error(w, verr.StatusCode, string(verr.Code), verr.Message)
}

// POSCreateOrder finalizes a cart into a persisted order. For dine-in the
// table is occupied in the same transaction; for delivery the tracking row
// is projected in the same transaction. Nothing is written when validation
// fails.
func (h *Handler) POSCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Staff context not found")
		return
	}

	var body createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	paymentMethod, ok := pos.ParsePaymentMethod(body.PaymentMethod)
	if !ok {
		response.Error(w, http.StatusBadRequest, string(pos.ErrInvalidPaymentMethod), "Payment method must be CASH, CARD or QR")
		return
	}

	draft, verr := buildDraft(body, paymentMethod)
	if verr != nil {
		writePOSError(w, verr)
		return
	}

	// Reads only before validation: a referenced customer must exist, and
	// for a delivery it supplies the recipient contact when the request did
	// not inline it. The inline customer is created inside the order tx so a
	// rejected draft leaves no row behind.
	customerID, verr := h.lookupCustomer(ctx, body.CustomerID)
	if verr != nil {
		writePOSError(w, verr)
		return
	}
	if draft.Delivery != nil && draft.Delivery.RecipientName == "" && customerID != nil {
		if err := h.DB.QueryRow(ctx, "select name, phone from customers where id = $1", *customerID).
			Scan(&draft.Delivery.RecipientName, &draft.Delivery.RecipientPhone); err != nil {
			h.Logger.Error("delivery recipient lookup failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order")
			return
		}
	}

	totals, verr := pos.ValidateAndPrice(draft, h.Config.TaxRate)
	if verr != nil {
		writePOSError(w, verr)
		return
	}

	orderNumber, err := h.generateOrderNumber(ctx)
	if err != nil {
		h.Logger.Error("order number generation failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order")
		return
	}

	orderID, verr := h.insertOrderTx(ctx, draft, totals, orderNumber, customerID, body.Customer, body.Notes, authCtx.UserID)
	if verr != nil {
		writePOSError(w, verr)
		return
	}

	h.publishEvent(ctx, queue.OrderEvent{
		Event:       queue.EventOrderCreated,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OrderType:   string(draft.OrderType),
		TableNumber: draft.TableNumber,
		Total:       totals.Total,
		IsPaid:      pos.IsPaid(totals.Total, draft.AmountPaid),
	})

	data, err := h.fetchOrderDetail(ctx, orderID)
	if err != nil {
		h.Logger.Error("order detail fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Order created but could not be loaded")
		return
	}
	response.Created(w, data)
}

func buildDraft(body createOrderRequest, paymentMethod pos.PaymentMethod) (pos.Draft, *pos.Error) {
	items := make([]pos.LineItem, 0, len(body.Items))
	for _, item := range body.Items {
		items = append(items, pos.LineItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			LineDiscount: item.LineDiscount,
		})
	}

	draft := pos.Draft{
		OrderType:     pos.OrderType(strings.ToUpper(strings.TrimSpace(body.OrderType))),
		Items:         items,
		PaymentMethod: paymentMethod,
		AmountPaid:    body.AmountPaid,
		TableNumber:   body.TableNumber,
		GuestCount:    body.GuestCount,
	}

	if body.Discount != nil {
		draft.Discount = &pos.Discount{
			Type:  pos.DiscountType(strings.ToUpper(strings.TrimSpace(body.Discount.Type))),
			Value: body.Discount.Value,
		}
	}

	if body.DeliveryInfo != nil {
		minutes := body.DeliveryInfo.EstimatedMinutes
		if minutes <= 0 {
			minutes = 30
		}
		info := &pos.DeliveryInfo{
			DeliveryAddress:     strings.TrimSpace(body.DeliveryInfo.DeliveryAddress),
			PickupAddress:       strings.TrimSpace(body.DeliveryInfo.PickupAddress),
			SpecialInstructions: strings.TrimSpace(body.DeliveryInfo.SpecialInstructions),
			EstimatedMinutes:    minutes,
			Priority:            pos.ParseDeliveryPriority(body.DeliveryInfo.Priority),
		}
		if body.Customer != nil {
			info.RecipientName = strings.TrimSpace(body.Customer.Name)
			info.RecipientPhone = strings.TrimSpace(body.Customer.Phone)
		}
		draft.Delivery = info
	}

	return draft, nil
}

// lookupCustomer verifies a referenced customer id. Inline payloads are not
// handled here; they are created inside the order transaction.
func (h *Handler) lookupCustomer(ctx context.Context, rawID any) (*int64, *pos.Error) {
	if rawID == nil {
		return nil, nil
	}
	id, ok := parseNumericID(rawID)
	if !ok {
		return nil, pos.ValidationError(pos.ErrCustomerNotFound, "Customer id is invalid")
	}
	var exists bool
	if err := h.DB.QueryRow(ctx, "select exists(select 1 from customers where id = $1)", id).Scan(&exists); err != nil || !exists {
		return nil, pos.NotFoundError(pos.ErrCustomerNotFound, "Customer not found")
	}
	return &id, nil
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomOrderSuffix(length int) string {
	var suffix strings.Builder
	for i := 0; i < length; i++ {
		suffix.WriteByte(orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))])
	}
	return suffix.String()
}

// generateOrderNumber builds the human-readable invoice number. The random
// suffix is collision-checked rather than a counter so two concurrent
// checkouts cannot settle on the same number.
func (h *Handler) generateOrderNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	for attempt := 0; attempt < 10; attempt++ {
		value := fmt.Sprintf("INV-%s-%s-%s", h.Config.BranchCode, today, randomOrderSuffix(4))
		var exists bool
		if err := h.DB.QueryRow(ctx, `
			select exists(select 1 from orders where order_number = $1)
		`, value).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return value, nil
		}
	}
	return fmt.Sprintf("INV-%s-%s-%s", h.Config.BranchCode, today, time.Now().UTC().Format("150405")), nil
}

func (h *Handler) insertOrderTx(ctx context.Context, draft pos.Draft, totals pos.Totals, orderNumber string, customerID *int64, inline *customerPayload, notes string, userID int64) (int64, *pos.Error) {
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("order tx begin failed", zapError(err))
		return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
	}
	defer tx.Rollback(ctx)

	if customerID == nil && inline != nil {
		id, verr := h.insertCustomer(ctx, tx, *inline)
		if verr != nil {
			return 0, verr
		}
		customerID = &id
	}

	var tableID *int64
	if draft.OrderType == pos.OrderTypeDineIn {
		id, verr := lockAvailableTable(ctx, tx, *draft.TableNumber)
		if verr != nil {
			return 0, verr
		}
		tableID = &id
	}

	var (
		amountPaid     *float64
		changeReturned *float64
	)
	if draft.AmountPaid != nil {
		amountPaid = draft.AmountPaid
		change := 0.0
		if draft.PaymentMethod == pos.PaymentCash {
			change = pos.ChangeDue(totals.Total, *draft.AmountPaid)
		}
		changeReturned = &change
	}

	var discountType *string
	var discountValue *float64
	if draft.Discount != nil {
		dt := string(draft.Discount.Type)
		discountType = &dt
		discountValue = &draft.Discount.Value
	}

	var orderID int64
	if err := tx.QueryRow(ctx, `
		insert into orders (
			order_number, order_type, status, table_id, customer_id,
			subtotal, discount_type, discount_value, discount_amount,
			tax_amount, total_amount, amount_paid, change_returned,
			payment_method, notes, created_by_user_id, created_at
		)
		values (
			$1, $2, 'OPEN', $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, now()
		)
		returning id
	`, orderNumber, string(draft.OrderType), tableID, customerID,
		totals.Subtotal, discountType, discountValue, totals.DiscountAmount,
		totals.TaxAmount, totals.Total, amountPaid, changeReturned,
		string(draft.PaymentMethod), nullIfEmpty(strings.TrimSpace(notes)), userID,
	).Scan(&orderID); err != nil {
		if isOpenOrderConflict(err) {
			return 0, pos.ConflictError(pos.ErrTableOccupied, "Table already has an open order")
		}
		h.Logger.Error("order insert failed", zapError(err))
		return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
	}

	for _, item := range draft.Items {
		if _, err := tx.Exec(ctx, `
			insert into order_items (order_id, product_id, product_name, unit_price, quantity, line_discount, subtotal)
			values ($1,$2,$3,$4,$5,$6,$7)
		`, orderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.LineDiscount, item.Subtotal()); err != nil {
			h.Logger.Error("order item insert failed", zapError(err))
			return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
		}
	}

	if tableID != nil {
		if _, err := tx.Exec(ctx, `
			update tables
			set status = 'OCCUPIED', current_order_id = $1, guest_count = $2,
			    occupied_at = now(), updated_at = now()
			where id = $3
		`, orderID, *draft.GuestCount, *tableID); err != nil {
			h.Logger.Error("table occupy failed", zapError(err))
			return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
		}
	}

	// Tracking rows exist iff the structured payload was supplied; validation
	// already ties the payload to the DELIVERY order type.
	if draft.Delivery != nil {
		if _, err := tx.Exec(ctx, `
			insert into delivery_orders (order_id, delivery_address, pickup_address, special_instructions, estimated_minutes, priority, status, created_at, updated_at)
			values ($1,$2,$3,$4,$5,$6,'PENDING', now(), now())
		`, orderID, draft.Delivery.DeliveryAddress, nullIfEmpty(draft.Delivery.PickupAddress),
			nullIfEmpty(draft.Delivery.SpecialInstructions), draft.Delivery.EstimatedMinutes,
			string(draft.Delivery.Priority)); err != nil {
			h.Logger.Error("delivery projection failed", zapError(err))
			return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("order tx commit failed", zapError(err))
		return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
	}
	return orderID, nil
}

// lockAvailableTable row-locks the table so two concurrent dine-in orders
// cannot both observe it available. The partial unique index on open orders
// per table is the backstop.
func lockAvailableTable(ctx context.Context, tx pgx.Tx, tableNumber int32) (int64, *pos.Error) {
	var (
		id     int64
		status string
	)
	err := tx.QueryRow(ctx, `
		select id, status from tables where table_number = $1 for update
	`, tableNumber).Scan(&id, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, pos.NotFoundError(pos.ErrTableNotFound, "Table not found")
	}
	if err != nil {
		return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create order", StatusCode: http.StatusInternalServerError}
	}
	if verr := pos.CheckOccupiable(pos.TableStatus(status)); verr != nil {
		return 0, verr
	}
	return id, nil
}

// isOpenOrderConflict matches only the partial index enforcing one open
// order per table. Other unique violations on the insert (the order number,
// say) are not table conflicts and must not report TABLE_OCCUPIED.
func isOpenOrderConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" &&
		pgErr.ConstraintName == "orders_open_table_unique"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
