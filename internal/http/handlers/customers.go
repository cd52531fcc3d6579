package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"branch-pos-service/internal/pos"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5/pgtype"
)

type customerPayload struct {
	Name      string `json:"name"`
	NameLocal string `json:"nameLocal"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// newCustomerCode derives the human-readable customer code from the
// creation instant: CUST- plus the last eight digits of the millisecond
// timestamp.
func newCustomerCode(now time.Time) string {
	return fmt.Sprintf("CUST-%08d", now.UnixMilli()%100_000_000)
}

func (h *Handler) POSCustomerCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body customerPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	id, verr := h.insertCustomer(ctx, h.DB, body)
	if verr != nil {
		writePOSError(w, verr)
		return
	}

	data, err := h.fetchCustomer(ctx, id)
	if err != nil {
		h.Logger.Error("customer fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Customer created but could not be loaded")
		return
	}
	response.Created(w, data)
}

func (h *Handler) insertCustomer(ctx context.Context, q rowQuerier, payload customerPayload) (int64, *pos.Error) {
	name := strings.TrimSpace(payload.Name)
	phone := strings.TrimSpace(payload.Phone)
	if name == "" || phone == "" {
		return 0, pos.ValidationError("VALIDATION_ERROR", "Customer name and phone are required")
	}

	var id int64
	err := q.QueryRow(ctx, `
		insert into customers (code, name, name_local, phone, email, address, purchase_count, loyalty_points, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,0,0, now(), now())
		returning id
	`, newCustomerCode(time.Now()), name, nullIfEmpty(strings.TrimSpace(payload.NameLocal)), phone,
		nullIfEmpty(strings.TrimSpace(payload.Email)), nullIfEmpty(strings.TrimSpace(payload.Address))).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, pos.ConflictError("CUSTOMER_EXISTS", "A customer with this phone already exists")
		}
		h.Logger.Error("customer insert failed", zapError(err))
		return 0, &pos.Error{Code: "INTERNAL_ERROR", Message: "Failed to create customer", StatusCode: http.StatusInternalServerError}
	}
	return id, nil
}

func (h *Handler) POSCustomerSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "search query parameter is required")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select id, code, name, name_local, phone, email, address, purchase_count, loyalty_points
		from customers
		where code ilike '%' || $1 || '%'
		   or name ilike '%' || $1 || '%'
		   or name_local ilike '%' || $1 || '%'
		   or phone ilike '%' || $1 || '%'
		order by name
		limit 20
	`, search)
	if err != nil {
		h.Logger.Error("customer search failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search customers")
		return
	}
	defer rows.Close()

	customers := make([]map[string]any, 0)
	for rows.Next() {
		var (
			id            int64
			code          string
			name          string
			nameLocal     pgtype.Text
			phone         string
			email         pgtype.Text
			address       pgtype.Text
			purchaseCount int32
			loyaltyPoints int32
		)
		if err := rows.Scan(&id, &code, &name, &nameLocal, &phone, &email, &address, &purchaseCount, &loyaltyPoints); err != nil {
			h.Logger.Error("customer scan failed", zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search customers")
			return
		}
		entry := map[string]any{
			"id":            id,
			"code":          code,
			"name":          name,
			"phone":         phone,
			"purchaseCount": purchaseCount,
			"loyaltyPoints": loyaltyPoints,
		}
		if nameLocal.Valid {
			entry["nameLocal"] = nameLocal.String
		}
		if email.Valid {
			entry["email"] = email.String
		}
		if address.Valid {
			entry["address"] = address.String
		}
		customers = append(customers, entry)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("customer iteration failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search customers")
		return
	}

	response.Success(w, customers)
}

func (h *Handler) fetchCustomer(ctx context.Context, id int64) (map[string]any, error) {
	var (
		code          string
		name          string
		nameLocal     pgtype.Text
		phone         string
		email         pgtype.Text
		address       pgtype.Text
		purchaseCount int32
		loyaltyPoints int32
	)
	if err := h.DB.QueryRow(ctx, `
		select code, name, name_local, phone, email, address, purchase_count, loyalty_points
		from customers where id = $1
	`, id).Scan(&code, &name, &nameLocal, &phone, &email, &address, &purchaseCount, &loyaltyPoints); err != nil {
		return nil, err
	}

	data := map[string]any{
		"id":            id,
		"code":          code,
		"name":          name,
		"phone":         phone,
		"purchaseCount": purchaseCount,
		"loyaltyPoints": loyaltyPoints,
	}
	if nameLocal.Valid {
		data["nameLocal"] = nameLocal.String
	}
	if email.Valid {
		data["email"] = email.String
	}
	if address.Valid {
		data["address"] = address.String
	}
	return data, nil
}
