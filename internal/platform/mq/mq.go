// Package mq wraps RabbitMQ publishing and consumption for the mesh's two
// durable direct exchanges, supporting the multi-exchange, multi-queue
// topology the message bus needs.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Exchange names, fixed by the message bus component design.
const (
	PostExchange = "post-exchange"
	UserExchange = "user-exchange"
)

// Broker owns the AMQP connection and channel, and declares the durable
// exchanges/queues this mesh depends on.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *logrus.Entry

	mu     sync.Mutex
	closed bool
}

// Dial connects to the broker at uri and opens a single multiplexed
// channel. Publishing and consuming both use this one long-lived channel.
func Dial(uri string, log *logrus.Entry) (*Broker, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	return &Broker{conn: conn, ch: ch, log: log}, nil
}

// DeclareExchange declares a durable direct exchange, idempotent across
// restarts.
func (b *Broker) DeclareExchange(name string) error {
	return b.ch.ExchangeDeclare(name, amqp.ExchangeDirect, true, false, false, false, nil)
}

// DeclareQueue declares a durable queue and binds it to exchange with
// routingKey, returning the queue name for consumption.
func (b *Broker) DeclareQueue(exchange, queueName, routingKey string) (string, error) {
	q, err := b.ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return "", fmt.Errorf("declaring queue %s: %w", queueName, err)
	}
	if err := b.ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return "", fmt.Errorf("binding queue %s to %s/%s: %w", queueName, exchange, routingKey, err)
	}
	return q.Name, nil
}

// Publish marshals payload to JSON and publishes it as a persistent message
// to exchange under routingKey, carrying the headers supplied (used to
// propagate trace context).
func (b *Broker) Publish(ctx context.Context, exchange, routingKey string, payload any, headers amqp.Table) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	return b.ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Headers:      headers,
	})
}

// Handler processes one raw delivery. A handler error is logged but does
// not prevent the delivery from being acknowledged; nothing is requeued.
type Handler func(ctx context.Context, delivery amqp.Delivery) error

// Consume starts a goroutine delivering messages from queueName to handler
// until ctx is cancelled. Bodies are passed to handler undecoded (ConsumeJSON
// is the decoding variant); every delivery is acked once handler returns,
// and a handler error is only logged — this mesh's handlers are idempotent, so redelivering a
// message whose side effect already landed would just do needless work.
func (b *Broker) Consume(ctx context.Context, queueName, consumerTag string, handler Handler) error {
	deliveries, err := b.ch.Consume(queueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("starting consumer on %s: %w", queueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				b.handleDelivery(ctx, d, handler)
			}
		}
	}()
	return nil
}

func (b *Broker) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	if err := handler(ctx, d); err != nil {
		b.log.WithError(err).WithField("routingKey", d.RoutingKey).Warn("message handler failed, acking anyway")
	}
	if err := d.Ack(false); err != nil {
		b.log.WithError(err).Error("failed to ack delivery")
	}
}

// NackDecodeFailure nacks a delivery without requeue, for use by callers
// that decode the body themselves before invoking Consume's handler — kept
// as a standalone helper for handlers built directly on amqp.Delivery.
func NackDecodeFailure(d amqp.Delivery) error {
	return d.Nack(false, false)
}

// TypedHandler processes one successfully-decoded message of type T.
type TypedHandler[T any] func(ctx context.Context, msg T, headers amqp.Table) error

// ConsumeJSON starts a consumer that JSON-decodes each delivery body into T
// before invoking handler: a delivery whose body fails to unmarshal is
// nacked without requeue (it will never decode on retry), while a handler
// error is logged and the delivery is still acked.
func ConsumeJSON[T any](ctx context.Context, b *Broker, queueName, consumerTag string, handler TypedHandler[T]) error {
	deliveries, err := b.ch.Consume(queueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("starting consumer on %s: %w", queueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var msg T
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					b.log.WithError(err).WithField("routingKey", d.RoutingKey).Warn("failed to decode message, discarding")
					if nackErr := d.Nack(false, false); nackErr != nil {
						b.log.WithError(nackErr).Error("failed to nack undecodable delivery")
					}
					continue
				}
				if err := handler(ctx, msg, d.Headers); err != nil {
					b.log.WithError(err).WithField("routingKey", d.RoutingKey).Warn("message handler failed, acking anyway")
				}
				if err := d.Ack(false); err != nil {
					b.log.WithError(err).Error("failed to ack delivery")
				}
			}
		}
	}()
	return nil
}

// Close shuts down the channel then the connection, safe to call more than
// once.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.ch.Close(); err != nil {
		b.conn.Close()
		return fmt.Errorf("closing channel: %w", err)
	}
	return b.conn.Close()
}
