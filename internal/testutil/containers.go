// Package testutil starts throwaway backing services for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(cleanupCtx)
	})
	return container
}

func endpoint(ctx context.Context, t *testing.T, c testcontainers.Container, port string) (string, string) {
	t.Helper()

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return host, mappedPort.Port()
}

// StartPostgres launches a Postgres container and returns its DSN. The schema
// is left to the caller.
func StartPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	c := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "storefront"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	})
	host, port := endpoint(ctx, t, c, "5432/tcp")
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/storefront?sslmode=disable", host, port)
}

// StartRedis launches a Redis container and returns a redis:// URL.
func StartRedis(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	c := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	})
	host, port := endpoint(ctx, t, c, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s/0", host, port)
}

// StartRabbitMQ launches a RabbitMQ container and returns a ready AMQP
// connection plus its URL.
func StartRabbitMQ(t *testing.T) (*amqp.Connection, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	c := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
	})
	host, port := endpoint(ctx, t, c, "5672/tcp")
	url := "amqp://guest:guest@" + host + ":" + port + "/"

	var conn *amqp.Connection
	require.Eventually(t, func() bool {
		var err error
		conn, err = amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
		return err == nil
	}, 60*time.Second, 500*time.Millisecond)

	t.Cleanup(func() { _ = conn.Close() })
	return conn, url
}
