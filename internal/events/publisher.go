package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher pushes domain events to RabbitMQ. Publishing is best-effort:
// errors are logged and returned, and callers are expected to ignore them
// rather than fail the main request flow.
//
// A nil Publisher (or one built with an empty URL) is a no-op, so wiring can
// leave the broker optional.
type Publisher struct {
	url string
	log *slog.Logger

	mu sync.Mutex
	// conn/ch are lazily established and re-dialed after failures.
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, log *slog.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log}
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, e BookingConfirmed) error {
	return p.publish(ctx, QueueBookingConfirmed, e)
}

func (p *Publisher) PublishMessageSent(ctx context.Context, e MessageSent) error {
	return p.publish(ctx, QueueMessageSent, e)
}

func (p *Publisher) publish(ctx context.Context, queue string, v any) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", queue, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.Warn("event publish skipped, broker unavailable", "queue", queue, "err", err)
		return err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.reset()
		p.log.Warn("event queue declare failed", "queue", queue, "err", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.reset()
		p.log.Warn("event publish failed", "queue", queue, "err", err)
		return err
	}
	return nil
}

// channel returns the cached channel, dialing if needed. Caller holds mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	p.ch = ch
	return ch, nil
}

// reset drops the cached connection so the next publish re-dials.
// Caller holds mu.
func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}
