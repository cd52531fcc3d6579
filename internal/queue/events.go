package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EventsExchange     = "pos.events"
	NotificationsQueue = "pos.notifications"

	EventOrderCreated         = "order.created"
	EventOrderPaymentRecorded = "order.payment.recorded"
	EventOrderCleared         = "order.cleared"
	EventOrderDeliveryUpdated = "order.delivery.updated"
)

type OrderEvent struct {
	Event       string    `json:"event"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	OrderType   string    `json:"orderType"`
	TableNumber *int32    `json:"tableNumber,omitempty"`
	Total       float64   `json:"total,omitempty"`
	IsPaid      bool      `json:"isPaid"`
	Status      string    `json:"status,omitempty"`
	Branch      string    `json:"branch"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// EnsureEventTopology declares the exchange and the notifications queue bound
// to every order.* routing key, including multi-segment ones.
func EnsureEventTopology(c *Client) error {
	if err := c.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := c.EnsureQueue(NotificationsQueue); err != nil {
		return err
	}
	return c.BindQueue(NotificationsQueue, EventsExchange, "order.#")
}

func (c *Client) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return c.PublishJSON(ctx, EventsExchange, event.Event, event)
}

// RecordOrderEvent is the notifications-queue handler: it appends the event
// to the order_events audit log so kitchen displays and reports read one
// consistent history.
func RecordOrderEvent(ctx context.Context, db *pgxpool.Pool, body []byte) error {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if event.Event == "" || event.OrderID == 0 {
		return fmt.Errorf("order event missing event name or order id")
	}

	_, err := db.Exec(ctx, `
		insert into order_events (order_id, order_number, event_type, payload, occurred_at)
		values ($1, $2, $3, $4, $5)
	`, event.OrderID, event.OrderNumber, event.Event, body, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}
