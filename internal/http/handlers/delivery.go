package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"branch-pos-service/internal/pos"
	"branch-pos-service/internal/queue"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (h *Handler) POSDeliveryList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := strings.TrimSpace(r.URL.Query().Get("status"))
	if filter != "" {
		if _, ok := pos.ParseDeliveryStatus(filter); !ok {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown delivery status filter")
			return
		}
		filter = strings.ToUpper(filter)
	}

	rows, err := h.DB.Query(ctx, `
		select d.id, d.order_id, o.order_number, d.delivery_address, d.estimated_minutes,
		       d.priority, d.status, d.driver_user_id, d.assigned_at, d.created_at
		from delivery_orders d
		join orders o on o.id = d.order_id
		where ($1 = '' or d.status = $1)
		order by d.created_at desc
		limit 100
	`, filter)
	if err != nil {
		h.Logger.Error("delivery list failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load delivery orders")
		return
	}
	defer rows.Close()

	deliveries := make([]map[string]any, 0)
	for rows.Next() {
		var (
			id               int64
			orderID          int64
			orderNumber      string
			deliveryAddress  string
			estimatedMinutes int32
			priority         string
			status           string
			driverUserID     pgtype.Int8
			assignedAt       pgtype.Timestamptz
			createdAt        pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &orderID, &orderNumber, &deliveryAddress, &estimatedMinutes,
			&priority, &status, &driverUserID, &assignedAt, &createdAt); err != nil {
			h.Logger.Error("delivery scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load delivery orders")
			return
		}
		entry := map[string]any{
			"id":               id,
			"orderId":          orderID,
			"orderNumber":      orderNumber,
			"deliveryAddress":  deliveryAddress,
			"estimatedMinutes": estimatedMinutes,
			"priority":         priority,
			"status":           status,
			"createdAt":        createdAt.Time,
		}
		if driverUserID.Valid {
			entry["driverUserId"] = driverUserID.Int64
		}
		if assignedAt.Valid {
			entry["assignedAt"] = assignedAt.Time
		}
		deliveries = append(deliveries, entry)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("delivery iteration failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load delivery orders")
		return
	}

	response.Success(w, deliveries)
}

// POSDeliveryAssign assigns or unassigns a driver. An empty driverUserId
// resets the tracking record to PENDING.
func (h *Handler) POSDeliveryAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	var body struct {
		DriverUserID any `json:"driverUserId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	var (
		deliveryID int64
		status     string
	)
	err = h.DB.QueryRow(ctx, `
		select id, status from delivery_orders where order_id = $1
	`, orderID).Scan(&deliveryID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "DELIVERY_NOT_FOUND", "Order has no delivery record")
		return
	}
	if err != nil {
		h.Logger.Error("delivery lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update driver assignment")
		return
	}

	if pos.DeliveryStatus(status) == pos.DeliveryDelivered {
		response.Error(w, http.StatusConflict, string(pos.ErrInvalidState), "Delivered orders cannot be modified")
		return
	}

	driverID, hasDriver := parseNumericID(body.DriverUserID)
	if !hasDriver {
		if _, err := h.DB.Exec(ctx, `
			update delivery_orders
			set driver_user_id = null, assigned_at = null, status = 'PENDING', updated_at = now()
			where id = $1
		`, deliveryID); err != nil {
			h.Logger.Error("driver unassign failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update driver assignment")
			return
		}
		h.publishDeliveryEvent(ctx, orderID, pos.DeliveryPending)
		response.Success(w, map[string]any{"orderId": orderID, "status": string(pos.DeliveryPending)})
		return
	}

	if _, err := h.DB.Exec(ctx, `
		update delivery_orders
		set driver_user_id = $2, assigned_at = now(), status = 'ASSIGNED', updated_at = now()
		where id = $1
	`, deliveryID, driverID); err != nil {
		h.Logger.Error("driver assign failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update driver assignment")
		return
	}

	h.publishDeliveryEvent(ctx, orderID, pos.DeliveryAssigned)
	response.Success(w, map[string]any{
		"orderId":      orderID,
		"driverUserId": driverID,
		"status":       string(pos.DeliveryAssigned),
	})
}

func (h *Handler) POSDeliveryUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order ID is required")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	target, ok := pos.ParseDeliveryStatus(body.Status)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown delivery status")
		return
	}

	var (
		deliveryID int64
		current    string
	)
	err = h.DB.QueryRow(ctx, `
		select id, status from delivery_orders where order_id = $1
	`, orderID).Scan(&deliveryID, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "DELIVERY_NOT_FOUND", "Order has no delivery record")
		return
	}
	if err != nil {
		h.Logger.Error("delivery lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update delivery status")
		return
	}

	if !pos.CanTransitionDelivery(pos.DeliveryStatus(current), target) {
		response.Error(w, http.StatusConflict, string(pos.ErrInvalidState),
			"Cannot transition delivery from "+current+" to "+string(target))
		return
	}

	query := `update delivery_orders set status = $2, updated_at = now() where id = $1`
	if target == pos.DeliveryDelivered {
		query = `update delivery_orders set status = $2, delivered_at = now(), updated_at = now() where id = $1`
	}
	if _, err := h.DB.Exec(ctx, query, deliveryID, string(target)); err != nil {
		h.Logger.Error("delivery status update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update delivery status")
		return
	}

	h.publishDeliveryEvent(ctx, orderID, target)
	response.Success(w, map[string]any{"orderId": orderID, "status": string(target)})
}

func (h *Handler) publishDeliveryEvent(ctx context.Context, orderID int64, status pos.DeliveryStatus) {
	var orderNumber string
	if err := h.DB.QueryRow(ctx, `select order_number from orders where id = $1`, orderID).Scan(&orderNumber); err != nil {
		return
	}
	h.publishEvent(ctx, queue.OrderEvent{
		Event:       queue.EventOrderDeliveryUpdated,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OrderType:   string(pos.OrderTypeDelivery),
		Status:      string(status),
	})
}
