package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRetryCountFrom(t *testing.T) {
	cases := []struct {
		name     string
		headers  amqp.Table
		expected int
	}{
		{name: "nil headers", headers: nil, expected: 0},
		{name: "missing key", headers: amqp.Table{}, expected: 0},
		{name: "int32", headers: amqp.Table{"x-retry-count": int32(2)}, expected: 2},
		{name: "int64", headers: amqp.Table{"x-retry-count": int64(3)}, expected: 3},
		{name: "int", headers: amqp.Table{"x-retry-count": 4}, expected: 4},
		{name: "wrong type", headers: amqp.Table{"x-retry-count": "5"}, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryCountFrom(tc.headers); got != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}
