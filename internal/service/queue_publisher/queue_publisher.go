// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers can ignore failures without interrupting
// the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/ssizenet/intranet-api/internal/queue"
)

const rentQueueName = "rent.events"

// Publisher publishes rent lifecycle events. A zero URL disables
// publishing, which keeps tests and broker-less deployments quiet.
type Publisher struct{ URL string }

// PublishRentEvent sends a RentEvent to the rent.events queue. The
// function never panics; any error is logged and returned so the caller
// can choose to ignore it. Messages are marked persistent.
func (p Publisher) PublishRentEvent(ctx context.Context, event q.RentEvent) error {
	if p.URL == "" {
		return nil
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(rentQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", rentQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
	return err
}
