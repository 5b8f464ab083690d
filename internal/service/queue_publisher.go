package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/train-seat-reservation/internal/queue"
)

// EventPublisher announces completed bookings and cancellations. Failures
// are reported to the caller, which logs them; a dropped event never
// undoes a booking.
type EventPublisher interface {
	PublishTicketBooked(ctx context.Context, event q.TicketBookedEvent) error
	PublishTicketCancelled(ctx context.Context, event q.TicketCancelledEvent) error
}

// NoopPublisher discards every event. It is used when messaging is off.
type NoopPublisher struct{}

func (NoopPublisher) PublishTicketBooked(context.Context, q.TicketBookedEvent) error { return nil }

func (NoopPublisher) PublishTicketCancelled(context.Context, q.TicketCancelledEvent) error {
	return nil
}

// AMQPPublisher publishes ticket events to RabbitMQ. It dials per message,
// which keeps it free of connection state; booking volume is low enough
// for that.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// PublishTicketBooked publishes to the ticket.booked queue.
func (p *AMQPPublisher) PublishTicketBooked(ctx context.Context, event q.TicketBookedEvent) error {
	return p.publish(ctx, q.TicketBookedQueue, event)
}

// PublishTicketCancelled publishes to the ticket.cancelled queue.
func (p *AMQPPublisher) PublishTicketCancelled(ctx context.Context, event q.TicketCancelledEvent) error {
	return p.publish(ctx, q.TicketCancelledQueue, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return fmt.Errorf("rabbitmq: declare queue %s: %w", queue, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", queue, err)
	}
	return nil
}
