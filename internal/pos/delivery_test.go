package pos

import "testing"

func TestCanTransitionDelivery(t *testing.T) {
	allowed := [][2]DeliveryStatus{
		{DeliveryPending, DeliveryAssigned},
		{DeliveryAssigned, DeliveryOutForDelivery},
		{DeliveryAssigned, DeliveryPending},
		{DeliveryOutForDelivery, DeliveryDelivered},
		{DeliveryOutForDelivery, DeliveryFailed},
		{DeliveryFailed, DeliveryAssigned},
	}
	for _, pair := range allowed {
		if !CanTransitionDelivery(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	statuses := []DeliveryStatus{DeliveryPending, DeliveryAssigned, DeliveryOutForDelivery, DeliveryFailed}
	for _, s := range statuses {
		if CanTransitionDelivery(DeliveryDelivered, s) {
			t.Fatalf("DELIVERED must be terminal, allowed transition to %s", s)
		}
	}

	if CanTransitionDelivery(DeliveryPending, DeliveryDelivered) {
		t.Fatalf("PENDING must not jump straight to DELIVERED")
	}
	if CanTransitionDelivery(DeliveryAssigned, DeliveryAssigned) {
		t.Fatalf("self transition must be rejected")
	}
}

func TestParseDeliveryStatus(t *testing.T) {
	if s, ok := ParseDeliveryStatus(" out_for_delivery "); !ok || s != DeliveryOutForDelivery {
		t.Fatalf("expected OUT_FOR_DELIVERY, got %s (%v)", s, ok)
	}
	if _, ok := ParseDeliveryStatus("CONFIRMED"); ok {
		t.Fatalf("legacy status must not parse")
	}
}

func TestParseDeliveryPriority(t *testing.T) {
	if got := ParseDeliveryPriority("urgent"); got != PriorityUrgent {
		t.Fatalf("expected URGENT, got %s", got)
	}
	if got := ParseDeliveryPriority(""); got != PriorityNormal {
		t.Fatalf("expected NORMAL default, got %s", got)
	}
}
