package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"branch-pos-service/internal/pos"
	"branch-pos-service/internal/queue"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type recordPaymentRequest struct {
	PaymentMethod  string   `json:"paymentMethod"`
	AmountPaid     *float64 `json:"amountPaid"`
	ChangeReturned *float64 `json:"changeReturned"`
}

// POSRecordPayment sets the payment fields on an open order. It never
// touches the table: a paid dine-in order stays occupied until staff clear
// it explicitly.
func (h *Handler) POSRecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	var body recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	paymentMethod, ok := pos.ParsePaymentMethod(body.PaymentMethod)
	if !ok {
		response.Error(w, http.StatusBadRequest, string(pos.ErrInvalidPaymentMethod), "Payment method must be CASH, CARD or QR")
		return
	}

	var (
		orderNumber string
		orderType   string
		status      string
		total       float64
		tableNumber pgtype.Int4
	)
	err = h.DB.QueryRow(ctx, `
		select o.order_number, o.order_type, o.status, o.total_amount, t.table_number
		from orders o
		left join tables t on t.id = o.table_id
		where o.id = $1
	`, orderID).Scan(&orderNumber, &orderType, &status, &total, &tableNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("payment order lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment")
		return
	}

	if verr := pos.CheckRecordPayment(pos.OrderStatus(status), paymentMethod, body.AmountPaid, total); verr != nil {
		writePOSError(w, verr)
		return
	}

	change := 0.0
	if body.ChangeReturned != nil && *body.ChangeReturned >= 0 {
		change = pos.Round2(*body.ChangeReturned)
	} else if paymentMethod == pos.PaymentCash {
		change = pos.ChangeDue(total, *body.AmountPaid)
	}

	// The status guard re-checks inside the write: a concurrent clear may
	// have completed the order since the lookup above.
	tag, err := h.DB.Exec(ctx, `
		update orders
		set amount_paid = $2, payment_method = $3, change_returned = $4
		where id = $1 and status = 'OPEN'
	`, orderID, pos.Round2(*body.AmountPaid), string(paymentMethod), change)
	if err != nil {
		h.Logger.Error("payment update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record payment")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusConflict, string(pos.ErrOrderCompleted), "Order is already completed")
		return
	}

	var eventTable *int32
	if tableNumber.Valid {
		eventTable = &tableNumber.Int32
	}
	h.publishEvent(ctx, queue.OrderEvent{
		Event:       queue.EventOrderPaymentRecorded,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OrderType:   orderType,
		TableNumber: eventTable,
		Total:       total,
		IsPaid:      pos.IsPaid(total, body.AmountPaid),
	})

	data, err := h.fetchOrderDetail(ctx, orderID)
	if err != nil {
		h.Logger.Error("order detail fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Payment recorded but order could not be loaded")
		return
	}
	response.Success(w, data)
}
