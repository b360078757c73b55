package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderNotifier handles one consumed order completion, typically by sending
// the confirmation email. A failure is logged and the message is still
// acknowledged: confirmation email is best effort and a redelivery loop
// would just hammer the mail provider.
type OrderNotifier interface {
	NotifyOrderCompleted(ctx context.Context, ev OrderCompletedEvent) error
}

// StartOrderConsumer connects to RabbitMQ, declares the order.completed
// queue and consumes it until the context is cancelled. It runs a reconnect
// loop with capped exponential backoff and never panics; the server keeps
// serving even with the broker down.
func StartOrderConsumer(ctx context.Context, url string, notifier OrderNotifier) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("order-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, notifier); err != nil {
			log.Printf("order-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, notifier OrderNotifier) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("order-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleDelivery(ctx, d.Body, notifier); err != nil {
				log.Printf("order-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleDelivery(ctx context.Context, body []byte, notifier OrderNotifier) error {
	var ev OrderCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := notifier.NotifyOrderCompleted(ctx, ev); err != nil {
		// Email failure never blocks the ack; the message is consumed.
		log.Printf("order-consumer: notify for order %d failed: %v", ev.OrderID, err)
	}
	return nil
}
