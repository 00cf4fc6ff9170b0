package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const EventTypeCacheInvalidated = "CacheInvalidated"

// CacheInvalidatedPayload lists the query key prefixes to mark stale.
type CacheInvalidatedPayload struct {
	Keys [][]string `json:"keys"`
}

type EventMeta struct {
	CorrelationID string
	Origin        string
	Producer      string
}

func newCacheInvalidatedEvent(meta EventMeta, payload CacheInvalidatedPayload, occurredAt time.Time) (EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("marshal CacheInvalidated payload: %w", err)
	}
	producer := meta.Producer
	if producer == "" {
		producer = storefrontServiceName
	}
	return EventEnvelope{
		EventName:     EventTypeCacheInvalidated,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producer,
		Origin:        meta.Origin,
		OccurredAt:    occurredAt,
		Payload:       raw,
	}, nil
}

func decodeCacheInvalidated(body []byte) (EventEnvelope, CacheInvalidatedPayload, error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return EventEnvelope{}, CacheInvalidatedPayload{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if err := env.Validate(EventTypeCacheInvalidated, 1); err != nil {
		return env, CacheInvalidatedPayload{}, err
	}
	var payload CacheInvalidatedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return env, CacheInvalidatedPayload{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	return env, payload, nil
}
