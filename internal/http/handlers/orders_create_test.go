package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"branch-pos-service/internal/middleware"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// The handler under test carries a nil pool: any query or insert before the
// draft is validated would panic, so a clean 4xx proves rejected orders
// write nothing.
func TestCreateOrderValidatesBeforeAnyWrite(t *testing.T) {
	h := &Handler{Logger: zap.NewNop()}

	cases := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{
			name: "inline customer with out-of-range discount",
			body: map[string]any{
				"orderType":     "TAKEAWAY",
				"paymentMethod": "CASH",
				"items": []map[string]any{
					{"productId": 1, "productName": "Tea", "unitPrice": 2.5, "quantity": 2},
				},
				"discount": map[string]any{"type": "PERCENTAGE", "value": 150},
				"customer": map[string]any{"name": "Walk In", "phone": "0123456"},
			},
			wantCode: "DISCOUNT_OUT_OF_RANGE",
		},
		{
			name: "empty cart",
			body: map[string]any{
				"orderType":     "TAKEAWAY",
				"paymentMethod": "CASH",
				"items":         []map[string]any{},
			},
			wantCode: "EMPTY_CART",
		},
		{
			name: "unknown payment method",
			body: map[string]any{
				"orderType":     "TAKEAWAY",
				"paymentMethod": "CRYPTO",
				"items": []map[string]any{
					{"productId": 1, "productName": "Tea", "unitPrice": 2.5, "quantity": 2},
				},
			},
			wantCode: "INVALID_PAYMENT_METHOD",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := json.Marshal(tc.body)
			if err != nil {
				t.Fatalf("marshal request: %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/pos/orders", bytes.NewReader(payload))
			req = req.WithContext(middleware.WithAuthContext(req.Context(), &middleware.AuthContext{UserID: 7}))
			rec := httptest.NewRecorder()

			h.POSCreateOrder(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var envelope struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if envelope.Success {
				t.Fatal("expected success=false")
			}
			if envelope.Error != tc.wantCode {
				t.Fatalf("expected error %s, got %s", tc.wantCode, envelope.Error)
			}
		})
	}
}

func TestIsOpenOrderConflict(t *testing.T) {
	open := &pgconn.PgError{Code: "23505", ConstraintName: "orders_open_table_unique"}
	if !isOpenOrderConflict(open) {
		t.Fatal("expected open-order index violation to be a table conflict")
	}

	number := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}
	if isOpenOrderConflict(number) {
		t.Fatal("order number collision must not report a table conflict")
	}

	if isOpenOrderConflict(errors.New("connection reset")) {
		t.Fatal("plain error must not be a table conflict")
	}
}

func TestRandomOrderSuffix(t *testing.T) {
	for i := 0; i < 50; i++ {
		suffix := randomOrderSuffix(4)
		if len(suffix) != 4 {
			t.Fatalf("expected 4 characters, got %q", suffix)
		}
		for _, c := range suffix {
			if !strings.ContainsRune(orderNumberAlphabet, c) {
				t.Fatalf("unexpected character %q in %q", c, suffix)
			}
		}
	}
}
