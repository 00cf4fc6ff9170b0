package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	ch       *amqp.Channel
	origin   string
	producer string
}

type PublisherOptions struct {
	// Origin is this instance's id; consumers use it to skip their own events.
	Origin   string
	Producer string
}

func NewPublisher(conn *amqp.Connection, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = storefrontServiceName
	}

	return &Publisher{ch: ch, origin: opts.Origin, producer: producer}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishCacheInvalidated(ctx context.Context, correlationID string, keys ...[]string) error {
	env, err := newCacheInvalidatedEvent(EventMeta{
		CorrelationID: correlationID,
		Origin:        p.origin,
		Producer:      p.producer,
	}, CacheInvalidatedPayload{Keys: keys}, time.Now().UTC())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CacheInvalidated envelope: %w", err)
	}
	return p.publishJSON(ctx, CacheInvalidatedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			// Invalidations are only meaningful to live instances.
			DeliveryMode: amqp.Transient,
			Body:         body,
		},
	)
}
