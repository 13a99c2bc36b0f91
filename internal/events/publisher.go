package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers booking lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
	Close() error
}

// RabbitPublisher publishes events to a durable topic exchange. The event
// type doubles as the routing key (booking.created, booking.approved,
// booking.rejected).
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher swallows events; used when the event stream is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (NopPublisher) Close() error { return nil }
