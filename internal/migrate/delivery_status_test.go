package migrate

import (
	"context"
	"errors"
	"testing"

	"branch-pos-service/internal/pos"
)

func TestMapLegacyDeliveryStatus(t *testing.T) {
	cases := []struct {
		code     int
		expected pos.DeliveryStatus
	}{
		{0, pos.DeliveryPending},
		{1, pos.DeliveryPending},
		{2, pos.DeliveryPending},
		{3, pos.DeliveryAssigned},
		{4, pos.DeliveryOutForDelivery},
		{5, pos.DeliveryOutForDelivery},
		{6, pos.DeliveryDelivered},
		{7, pos.DeliveryFailed},
	}

	for _, tc := range cases {
		got, err := MapLegacyDeliveryStatus(tc.code)
		if err != nil {
			t.Fatalf("code %d: unexpected error %v", tc.code, err)
		}
		if got != tc.expected {
			t.Fatalf("code %d: expected %s, got %s", tc.code, tc.expected, got)
		}
	}

	if _, err := MapLegacyDeliveryStatus(42); err == nil {
		t.Fatalf("expected error for unknown code")
	}
}

func TestRollbackRefused(t *testing.T) {
	err := RollbackDeliveryStatusRemap(context.Background(), nil)
	if !errors.Is(err, ErrRollbackUnsupported) {
		t.Fatalf("expected ErrRollbackUnsupported, got %v", err)
	}
}
