package pos

import "strings"

type DeliveryStatus string

const (
	DeliveryPending        DeliveryStatus = "PENDING"
	DeliveryAssigned       DeliveryStatus = "ASSIGNED"
	DeliveryOutForDelivery DeliveryStatus = "OUT_FOR_DELIVERY"
	DeliveryDelivered      DeliveryStatus = "DELIVERED"
	DeliveryFailed         DeliveryStatus = "FAILED"
)

type DeliveryPriority string

const (
	PriorityNormal DeliveryPriority = "NORMAL"
	PriorityHigh   DeliveryPriority = "HIGH"
	PriorityUrgent DeliveryPriority = "URGENT"
)

func ParseDeliveryStatus(raw string) (DeliveryStatus, bool) {
	switch DeliveryStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case DeliveryPending:
		return DeliveryPending, true
	case DeliveryAssigned:
		return DeliveryAssigned, true
	case DeliveryOutForDelivery:
		return DeliveryOutForDelivery, true
	case DeliveryDelivered:
		return DeliveryDelivered, true
	case DeliveryFailed:
		return DeliveryFailed, true
	}
	return "", false
}

func ParseDeliveryPriority(raw string) DeliveryPriority {
	switch DeliveryPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityUrgent:
		return PriorityUrgent
	}
	return PriorityNormal
}

// CanTransitionDelivery enforces the tracking state machine. DELIVERED is
// terminal; a FAILED attempt may be re-assigned and retried.
func CanTransitionDelivery(from, to DeliveryStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case DeliveryPending:
		return to == DeliveryAssigned
	case DeliveryAssigned:
		return to == DeliveryOutForDelivery || to == DeliveryPending
	case DeliveryOutForDelivery:
		return to == DeliveryDelivered || to == DeliveryFailed
	case DeliveryFailed:
		return to == DeliveryAssigned
	}
	return false
}
