package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gym-door-access/internal/models"
)

const amqpPort = nat.Port("5672/tcp")

func setupRabbitMQ(ctx context.Context, t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if url := os.Getenv("TEST_RABBITMQ_URL"); url != "" {
		return url
	}

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{string(amqpPort)},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": "guest",
			"RABBITMQ_DEFAULT_PASS": "guest",
		},
		WaitingFor: wait.ForListeningPort(amqpPort).WithStartupTimeout(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, amqpPort)
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestPublisher_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	url := setupRabbitMQ(ctx, t)

	conn, err := Connect(ctx, url, 10, time.Second, newNoopLogger())
	require.NoError(t, err)
	defer conn.Close()

	ch, err := SetupExchange(conn, "door_access_test")
	require.NoError(t, err)
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "access.*", "door_access_test", false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	p := NewPublisher(ch, "door_access_test")
	require.NoError(t, p.PublishAccess(ctx, models.AccessLogEntry{
		Allowed: true, DoorLocation: "main", CreatedAt: time.Now(),
	}))

	select {
	case d := <-deliveries:
		assert.Equal(t, RoutingKeyGranted, d.RoutingKey)
		var event AccessEvent
		require.NoError(t, json.Unmarshal(d.Body, &event))
		assert.True(t, event.Allowed)
		assert.Equal(t, "main", event.DoorLocation)
	case <-time.After(10 * time.Second):
		t.Fatal("event was not delivered")
	}
}
