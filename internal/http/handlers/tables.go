package handlers

import (
	"errors"
	"net/http"

	"branch-pos-service/internal/middleware"
	"branch-pos-service/internal/pos"
	"branch-pos-service/internal/queue"
	"branch-pos-service/internal/utils"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// POSClearTable completes the open order on a table and frees the table in
// one transaction. Clearing a table that has no open order is a benign
// no-op ({cleared:false}) so bulk clear actions stay quiet.
func (h *Handler) POSClearTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Staff context not found")
		return
	}

	tableNumber, err := readPathInt64(r, "tableNumber")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Table number is required")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.Logger.Error("clear table tx begin failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear table")
		return
	}
	defer tx.Rollback(ctx)

	var (
		tableID        int64
		currentOrderID pgtype.Int8
	)
	err = tx.QueryRow(ctx, `
		select id, current_order_id from tables where table_number = $1 for update
	`, tableNumber).Scan(&tableID, &currentOrderID)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, string(pos.ErrTableNotFound), "Table not found")
		return
	}
	if err != nil {
		h.Logger.Error("clear table lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear table")
		return
	}

	plan := pos.PlanClear(currentOrderID.Valid)
	if !plan.Cleared {
		response.Success(w, map[string]any{"cleared": false})
		return
	}

	var (
		orderNumber string
		orderType   string
	)
	// The open order is found through the table link; a stale link to an
	// already-completed order still gets the table freed below.
	err = tx.QueryRow(ctx, `
		update orders
		set status = 'COMPLETED', completed_at = now()
		where id = $1 and status = 'OPEN'
		returning order_number, order_type
	`, currentOrderID.Int64).Scan(&orderNumber, &orderType)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.Logger.Error("order completion failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear table")
		return
	}

	if _, err := tx.Exec(ctx, `
		update tables
		set status = 'AVAILABLE', current_order_id = null, guest_count = null,
		    occupied_at = null, updated_at = now()
		where id = $1
	`, tableID); err != nil {
		h.Logger.Error("table release failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear table")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.Logger.Error("clear table commit failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear table")
		return
	}

	h.Logger.Info("table cleared",
		zap.Int64("tableNumber", tableNumber),
		zap.String("orderNumber", orderNumber),
		zap.Int64("userId", authCtx.UserID))

	tn := int32(tableNumber)
	h.publishEvent(ctx, queue.OrderEvent{
		Event:       queue.EventOrderCleared,
		OrderID:     currentOrderID.Int64,
		OrderNumber: orderNumber,
		OrderType:   orderType,
		TableNumber: &tn,
	})

	response.Success(w, map[string]any{
		"cleared":     true,
		"orderNumber": orderNumber,
	})
}

// POSTablesList returns every table with its occupancy fields and, for
// occupied tables, the linked order with the derived paid indicator.
func (h *Handler) POSTablesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.DB.Query(ctx, `
		select t.id, t.table_number, t.status, t.guest_count, t.occupied_at, t.updated_at,
		       o.id, o.order_number, o.total_amount, o.amount_paid
		from tables t
		left join orders o on o.id = t.current_order_id
		order by t.table_number
	`)
	if err != nil {
		h.Logger.Error("tables query failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tables")
		return
	}
	defer rows.Close()

	tables := make([]map[string]any, 0)
	for rows.Next() {
		var (
			id          int64
			tableNumber int32
			status      string
			guestCount  pgtype.Int4
			occupiedAt  pgtype.Timestamptz
			updatedAt   pgtype.Timestamptz
			orderID     pgtype.Int8
			orderNumber pgtype.Text
			totalAmount pgtype.Numeric
			amountPaid  pgtype.Numeric
		)
		if err := rows.Scan(&id, &tableNumber, &status, &guestCount, &occupiedAt, &updatedAt,
			&orderID, &orderNumber, &totalAmount, &amountPaid); err != nil {
			h.Logger.Error("tables scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tables")
			return
		}

		entry := map[string]any{
			"id":          id,
			"tableNumber": tableNumber,
			"status":      status,
			"updatedAt":   updatedAt.Time,
		}
		if guestCount.Valid {
			entry["guestCount"] = guestCount.Int32
		}
		if occupiedAt.Valid {
			entry["occupiedAt"] = occupiedAt.Time
		}
		if orderID.Valid {
			total := utils.NumericToFloat64(totalAmount)
			paid := utils.NumericToFloat64Ptr(amountPaid)
			order := map[string]any{
				"id":          orderID.Int64,
				"orderNumber": orderNumber.String,
				"totalAmount": total,
				"isPaid":      pos.IsPaid(total, paid),
			}
			if paid != nil {
				order["amountPaid"] = *paid
			}
			entry["currentOrder"] = order
		}
		tables = append(tables, entry)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("tables iteration failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tables")
		return
	}

	response.Success(w, tables)
}
