package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderEventHandler processes one message from the notifications queue.
type OrderEventHandler func(ctx context.Context, body []byte) error

// ConsumeWithRetry feeds queue messages to the handler until the channel
// closes or ctx is cancelled. A failed message is requeued with a bumped
// x-retry-count header and dropped once maxRetries is exhausted.
func (c *Client) ConsumeWithRetry(ctx context.Context, queueName string, handler OrderEventHandler, maxRetries int, retryDelay time.Duration, log *zap.Logger) error {
	msgs, err := c.ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("consumer channel closed")
			}

			err := handler(ctx, msg.Body)
			if err == nil {
				_ = msg.Ack(false)
				continue
			}

			retries := retryCountFrom(msg.Headers)
			if retries >= maxRetries {
				log.Warn("order event dropped after retries",
					zap.Int("retries", retries),
					zap.Error(err))
				_ = msg.Nack(false, false)
				continue
			}

			retries++
			headers := msg.Headers
			if headers == nil {
				headers = amqp.Table{}
			}
			headers["x-retry-count"] = retries

			log.Warn("order event handling failed; requeueing",
				zap.Int("attempt", retries),
				zap.Error(err))
			time.Sleep(retryDelay)
			_ = c.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Body,
				Headers:     headers,
				Timestamp:   time.Now(),
			})
			_ = msg.Ack(false)
		}
	}
}

func retryCountFrom(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers["x-retry-count"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
