package migrate

import (
	"context"
	"errors"
	"fmt"

	"branch-pos-service/internal/pos"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRollbackUnsupported is returned when a downgrade of the delivery status
// remap is attempted. The consolidation drops distinctions (CONFIRMED and
// PREPARING collapse into PENDING, PICKED_UP into OUT_FOR_DELIVERY), so the
// legacy codes cannot be reconstructed from the new values.
var ErrRollbackUnsupported = errors.New("delivery status remap cannot be rolled back")

// Legacy integer codes persisted before the enum was consolidated from seven
// values down to five.
const (
	legacyPending        = 0
	legacyConfirmed      = 1
	legacyPreparing      = 2
	legacyAssigned       = 3
	legacyPickedUp       = 4
	legacyOutForDelivery = 5
	legacyDelivered      = 6
)

var legacyStatusMap = map[int]pos.DeliveryStatus{
	legacyPending:        pos.DeliveryPending,
	legacyConfirmed:      pos.DeliveryPending,
	legacyPreparing:      pos.DeliveryPending,
	legacyAssigned:       pos.DeliveryAssigned,
	legacyPickedUp:       pos.DeliveryOutForDelivery,
	legacyOutForDelivery: pos.DeliveryOutForDelivery,
	legacyDelivered:      pos.DeliveryDelivered,
}

// MapLegacyDeliveryStatus translates a pre-consolidation integer code into
// the current status set. Codes above the known range were written by a
// failed-delivery patch that never shipped a constant; they map to FAILED.
func MapLegacyDeliveryStatus(code int) (pos.DeliveryStatus, error) {
	if status, ok := legacyStatusMap[code]; ok {
		return status, nil
	}
	if code == 7 {
		return pos.DeliveryFailed, nil
	}
	return "", fmt.Errorf("unknown legacy delivery status code %d", code)
}

// ForwardDeliveryStatusRemap rewrites rows still carrying a legacy integer
// code into the five-value text status. It is idempotent: rows with a status
// already set are skipped, and the legacy column is kept for audit.
func ForwardDeliveryStatusRemap(ctx context.Context, db *pgxpool.Pool) (int64, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var total int64
	for code := legacyPending; code <= legacyDelivered+1; code++ {
		status, err := MapLegacyDeliveryStatus(code)
		if err != nil {
			return 0, err
		}
		tag, err := tx.Exec(ctx, `
			update delivery_orders
			set status = $1, updated_at = now()
			where legacy_status = $2 and (status is null or status = '')
		`, string(status), code)
		if err != nil {
			return 0, fmt.Errorf("remap legacy code %d: %w", code, err)
		}
		total += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

// RollbackDeliveryStatusRemap exists so a rollback attempt fails loudly
// instead of silently corrupting consolidated rows.
func RollbackDeliveryStatusRemap(context.Context, *pgxpool.Pool) error {
	return ErrRollbackUnsupported
}
