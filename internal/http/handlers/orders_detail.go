package handlers

import (
	"context"
	"errors"
	"net/http"

	"branch-pos-service/internal/pos"
	"branch-pos-service/internal/utils"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (h *Handler) POSOrderGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	data, err := h.fetchOrderDetail(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order detail fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}
	response.Success(w, data)
}

func (h *Handler) fetchOrderDetail(ctx context.Context, orderID int64) (map[string]any, error) {
	var (
		orderNumber    string
		orderType      string
		status         string
		tableNumber    pgtype.Int4
		subtotal       pgtype.Numeric
		discountType   pgtype.Text
		discountValue  pgtype.Numeric
		discountAmount pgtype.Numeric
		taxAmount      pgtype.Numeric
		totalAmount    pgtype.Numeric
		amountPaid     pgtype.Numeric
		changeReturned pgtype.Numeric
		paymentMethod  pgtype.Text
		notes          pgtype.Text
		createdAt      pgtype.Timestamptz
		completedAt    pgtype.Timestamptz
		customerID     pgtype.Int8
		customerCode   pgtype.Text
		customerName   pgtype.Text
		customerPhone  pgtype.Text
	)

	err := h.DB.QueryRow(ctx, `
		select o.order_number, o.order_type, o.status, t.table_number,
		       o.subtotal, o.discount_type, o.discount_value, o.discount_amount,
		       o.tax_amount, o.total_amount, o.amount_paid, o.change_returned,
		       o.payment_method, o.notes, o.created_at, o.completed_at,
		       c.id, c.code, c.name, c.phone
		from orders o
		left join tables t on t.id = o.table_id
		left join customers c on c.id = o.customer_id
		where o.id = $1
	`, orderID).Scan(
		&orderNumber, &orderType, &status, &tableNumber,
		&subtotal, &discountType, &discountValue, &discountAmount,
		&taxAmount, &totalAmount, &amountPaid, &changeReturned,
		&paymentMethod, &notes, &createdAt, &completedAt,
		&customerID, &customerCode, &customerName, &customerPhone,
	)
	if err != nil {
		return nil, err
	}

	total := utils.NumericToFloat64(totalAmount)
	paid := utils.NumericToFloat64Ptr(amountPaid)

	data := map[string]any{
		"id":             orderID,
		"orderNumber":    orderNumber,
		"orderType":      orderType,
		"status":         status,
		"subtotal":       utils.NumericToFloat64(subtotal),
		"discountAmount": utils.NumericToFloat64(discountAmount),
		"taxAmount":      utils.NumericToFloat64(taxAmount),
		"totalAmount":    total,
		"isPaid":         pos.IsPaid(total, paid),
		"createdAt":      createdAt.Time,
	}
	if tableNumber.Valid {
		data["tableNumber"] = tableNumber.Int32
	}
	if discountType.Valid {
		data["discountType"] = discountType.String
		data["discountValue"] = utils.NumericToFloat64(discountValue)
	}
	if paid != nil {
		data["amountPaid"] = *paid
		data["changeReturned"] = utils.NumericToFloat64(changeReturned)
	}
	if paymentMethod.Valid {
		data["paymentMethod"] = paymentMethod.String
	}
	if notes.Valid {
		data["notes"] = notes.String
	}
	if completedAt.Valid {
		data["completedAt"] = completedAt.Time
	}
	if customerID.Valid {
		data["customer"] = map[string]any{
			"id":    customerID.Int64,
			"code":  customerCode.String,
			"name":  customerName.String,
			"phone": customerPhone.String,
		}
	}

	items, err := h.fetchOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	data["items"] = items

	delivery, err := h.fetchDeliveryOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if delivery != nil {
		data["delivery"] = delivery
	}

	return data, nil
}

func (h *Handler) fetchOrderItems(ctx context.Context, orderID int64) ([]map[string]any, error) {
	rows, err := h.DB.Query(ctx, `
		select product_id, product_name, unit_price, quantity, line_discount, subtotal
		from order_items
		where order_id = $1
		order by id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]map[string]any, 0)
	for rows.Next() {
		var (
			productID    int64
			productName  string
			unitPrice    pgtype.Numeric
			quantity     int32
			lineDiscount pgtype.Numeric
			itemSubtotal pgtype.Numeric
		)
		if err := rows.Scan(&productID, &productName, &unitPrice, &quantity, &lineDiscount, &itemSubtotal); err != nil {
			return nil, err
		}
		items = append(items, map[string]any{
			"productId":    productID,
			"productName":  productName,
			"unitPrice":    utils.NumericToFloat64(unitPrice),
			"quantity":     quantity,
			"lineDiscount": utils.NumericToFloat64(lineDiscount),
			"subtotal":     utils.NumericToFloat64(itemSubtotal),
		})
	}
	return items, rows.Err()
}

func (h *Handler) fetchDeliveryOrder(ctx context.Context, orderID int64) (map[string]any, error) {
	var (
		id                  int64
		deliveryAddress     string
		pickupAddress       pgtype.Text
		specialInstructions pgtype.Text
		estimatedMinutes    int32
		priority            string
		status              string
		driverUserID        pgtype.Int8
		assignedAt          pgtype.Timestamptz
		deliveredAt         pgtype.Timestamptz
	)
	err := h.DB.QueryRow(ctx, `
		select id, delivery_address, pickup_address, special_instructions,
		       estimated_minutes, priority, status, driver_user_id, assigned_at, delivered_at
		from delivery_orders
		where order_id = $1
	`, orderID).Scan(&id, &deliveryAddress, &pickupAddress, &specialInstructions,
		&estimatedMinutes, &priority, &status, &driverUserID, &assignedAt, &deliveredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	delivery := map[string]any{
		"id":               id,
		"deliveryAddress":  deliveryAddress,
		"estimatedMinutes": estimatedMinutes,
		"priority":         priority,
		"status":           status,
	}
	if pickupAddress.Valid {
		delivery["pickupAddress"] = pickupAddress.String
	}
	if specialInstructions.Valid {
		delivery["specialInstructions"] = specialInstructions.String
	}
	if driverUserID.Valid {
		delivery["driverUserId"] = driverUserID.Int64
	}
	if assignedAt.Valid {
		delivery["assignedAt"] = assignedAt.Time
	}
	if deliveredAt.Valid {
		delivery["deliveredAt"] = deliveredAt.Time
	}
	return delivery, nil
}
