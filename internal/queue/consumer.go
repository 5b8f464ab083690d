package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartTicketConsumer connects to RabbitMQ, declares the ticket queues
// (durable) and consumes both. Each message is appended to booking.log in
// logDir as a single human-friendly line. The function runs a reconnect
// loop with exponential backoff and returns only when ctx is cancelled.
// Messages that cannot be handled are rejected without requeue so one bad
// payload cannot block the queue.
func StartTicketConsumer(ctx context.Context, url, logDir string) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logDir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	booked, err := declareAndConsume(ch, TicketBookedQueue)
	if err != nil {
		return err
	}
	cancelled, err := declareAndConsume(ch, TicketCancelledQueue)
	if err != nil {
		return err
	}

	for {
		var (
			d     amqp.Delivery
			ok    bool
			queue string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-booked:
			queue = TicketBookedQueue
		case d, ok = <-cancelled:
			queue = TicketCancelledQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := handleMessage(logDir, queue, d.Body, time.Now().UTC()); err != nil {
			log.Printf("ticket-consumer: handle %s message failed: %v", queue, err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func declareAndConsume(ch *amqp.Channel, name string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", name, err)
	}
	msgs, err := ch.Consume(name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", name, err)
	}
	return msgs, nil
}

// handleMessage formats one event and appends it to logDir/booking.log.
func handleMessage(logDir, queue string, body []byte, now time.Time) error {
	line, err := formatEvent(queue, body, now)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join(logDir, "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEvent(queue string, body []byte, now time.Time) (string, error) {
	ts := now.Format(time.RFC3339)
	switch queue {
	case TicketBookedQueue:
		var ev TicketBookedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		if ev.BookedAt != "" {
			ts = ev.BookedAt
		}
		return fmt.Sprintf("[%s] Ticket booked | ticket_id=%s | user=%q | train=%s | seat=%d/%d | route=%s->%s\n",
			ts, ev.TicketID, ev.UserName, ev.TrainID, ev.Row, ev.Seat, ev.Source, ev.Destination), nil
	case TicketCancelledQueue:
		var ev TicketCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		if ev.CancelledAt != "" {
			ts = ev.CancelledAt
		}
		return fmt.Sprintf("[%s] Ticket cancelled | ticket_id=%s | user=%q | train=%s | seat=%d/%d | train_missing=%t | seat_was_free=%t\n",
			ts, ev.TicketID, ev.UserName, ev.TrainID, ev.Row, ev.Seat, ev.TrainMissing, ev.SeatWasFree), nil
	default:
		return "", fmt.Errorf("unknown queue %q", queue)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
