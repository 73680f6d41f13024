//go:build integration
// +build integration

package mq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRabbitMQContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-management-alpine",
		ExposedPorts: []string{"5672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": "guest",
			"RABBITMQ_DEFAULT_PASS": "guest",
		},
		WaitingFor: wait.ForLog("Server startup complete").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start rabbitmq container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)

	url := fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
	time.Sleep(2 * time.Second)

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return url, cleanup
}

type postCreatedMsg struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
}

// Exercises the full publish -> exchange -> bound queue -> ConsumeJSON path,
// including JSON decode of the delivered body.
func TestConsumeJSON_PublishAndReceive(t *testing.T) {
	url, cleanup := setupRabbitMQContainer(t)
	defer cleanup()

	log := logrus.NewEntry(logrus.New())
	broker, err := Dial(url, log)
	require.NoError(t, err)
	defer broker.Close()

	require.NoError(t, broker.DeclareExchange(PostExchange))
	queueName, err := broker.DeclareQueue(PostExchange, "test-post-created-2", "post.created")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan postCreatedMsg, 1)
	err = ConsumeJSON[postCreatedMsg](ctx, broker, queueName, "test-consumer-2", func(ctx context.Context, msg postCreatedMsg, headers amqp.Table) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, PostExchange, "post.created", postCreatedMsg{ID: "post-1", OwnerID: "user-1"}, nil))

	select {
	case msg := <-received:
		assert.Equal(t, "post-1", msg.ID)
		assert.Equal(t, "user-1", msg.OwnerID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

// A delivery whose body fails to decode is discarded (nacked without
// requeue) rather than blocking the queue forever.
func TestConsumeJSON_DiscardsUndecodableDelivery(t *testing.T) {
	url, cleanup := setupRabbitMQContainer(t)
	defer cleanup()

	log := logrus.NewEntry(logrus.New())
	publishBroker, err := Dial(url, log)
	require.NoError(t, err)
	defer publishBroker.Close()

	require.NoError(t, publishBroker.DeclareExchange(PostExchange))
	queueName, err := publishBroker.DeclareQueue(PostExchange, "test-bad-payload", "post.updated")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlerCalls := make(chan struct{}, 1)
	err = ConsumeJSON[postCreatedMsg](ctx, publishBroker, queueName, "test-consumer-3", func(ctx context.Context, msg postCreatedMsg, headers amqp.Table) error {
		handlerCalls <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, publishBroker.Publish(ctx, PostExchange, "post.updated", "not-an-object", nil))

	select {
	case <-handlerCalls:
		t.Fatal("handler should not run for an undecodable payload")
	case <-time.After(2 * time.Second):
		// expected: no call within the window.
	}
}
