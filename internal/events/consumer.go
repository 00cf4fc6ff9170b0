package events

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InvalidationHandler applies one key prefix received from another instance.
type InvalidationHandler func(key []string)

// StartCacheInvalidatedConsumer binds a private queue to the events exchange
// and applies invalidations from other instances until ctx is done.
func StartCacheInvalidatedConsumer(ctx context.Context, conn *amqp.Connection, origin string, apply InvalidationHandler, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, CacheInvalidatedRoutingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		storefrontServiceName+"."+origin, // consumer tag
		false,                            // autoAck
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping cache invalidation consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("Cache invalidation channel closed")
					return
				}

				if err := handleCacheInvalidated(msg.Body, origin, apply, logger); err != nil {
					logger.Error("Handle cache invalidation", "error", err)
					_ = msg.Nack(false, false) // drop malformed events
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleCacheInvalidated(body []byte, origin string, apply InvalidationHandler, logger *slog.Logger) error {
	env, payload, err := decodeCacheInvalidated(body)
	if err != nil {
		return err
	}
	if env.Origin == origin {
		return nil
	}
	for _, k := range payload.Keys {
		if len(k) == 0 {
			continue
		}
		apply(k)
	}
	logger.Debug("Applied remote cache invalidation",
		"origin", env.Origin,
		"keys", len(payload.Keys),
		"correlation_id", env.CorrelationID)
	return nil
}
