package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in a hash and announces writes on a pub/sub channel.
type RedisStore struct {
	client    *redis.Client
	namespace string
	origin    string
	logger    *slog.Logger
}

type redisChange struct {
	Origin string  `json:"origin"`
	Key    string  `json:"key"`
	Value  *string `json:"value"`
}

func NewRedisStore(ctx context.Context, redisURL, namespace string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client, namespace, logger), nil
}

func NewRedisStoreWithClient(client *redis.Client, namespace string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{
		client:    client,
		namespace: namespace,
		origin:    uuid.NewString(),
		logger:    logger,
	}
}

func (s *RedisStore) hashKey() string { return "storefront:" + s.namespace + ":storage" }
func (s *RedisStore) channel() string { return "storefront:" + s.namespace + ":storage:changes" }

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.hashKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.hashKey(), key, value).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return s.publish(ctx, key, &value)
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	n, err := s.client.HDel(ctx, s.hashKey(), key).Result()
	if err != nil {
		return fmt.Errorf("redis remove %s: %w", key, err)
	}
	if n == 0 {
		return nil
	}
	return s.publish(ctx, key, nil)
}

func (s *RedisStore) publish(ctx context.Context, key string, value *string) error {
	body, err := json.Marshal(redisChange{Origin: s.origin, Key: key, Value: value})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel(), body).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context) (<-chan Change, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no write is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan Change, watchBuffer)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var rc redisChange
				if err := json.Unmarshal([]byte(msg.Payload), &rc); err != nil {
					s.logger.Warn("Ignoring malformed storage change", "error", err)
					continue
				}
				if rc.Origin == s.origin {
					continue
				}
				select {
				case out <- Change{Key: rc.Key, NewValue: rc.Value}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
