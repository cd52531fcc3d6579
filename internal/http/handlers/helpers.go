package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"branch-pos-service/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// rowQuerier is satisfied by both the pool and an open transaction, so a
// write can join a caller's transaction when one exists.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var errMissingParam = errors.New("missing param")

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	return strconv.ParseInt(value, 10, 64)
}

// parseNumericID accepts ids sent as JSON numbers or strings; POS clients
// are not consistent about which they use.
func parseNumericID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return 0, false
		}
		return parsed, true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func formatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

// publishEvent is best-effort: a broker outage must not fail the POS
// operation that already committed.
func (h *Handler) publishEvent(ctx context.Context, event queue.OrderEvent) {
	if h.Queue == nil {
		return
	}
	event.Branch = h.Config.BranchCode
	if err := h.Queue.PublishOrderEvent(ctx, event); err != nil {
		h.Logger.Warn("order event publish failed",
			zap.String("event", event.Event),
			zap.String("orderNumber", event.OrderNumber),
			zapError(err))
	}
}
