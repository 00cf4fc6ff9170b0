package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange             = "storefront.events"
	CacheInvalidatedRoutingKey = "cache.invalidated.v1"
	storefrontServiceName      = "storefront-go"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
