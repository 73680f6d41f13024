// Package events wires the media service's inbound message-bus consumers
// to its domain service: this service binds user-created-media-service-queue
// and user-deleted-media-service-queue.
package events

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/nimbusfeed/socialmesh/internal/media/service"
	"github.com/nimbusfeed/socialmesh/internal/platform/mq"
)

const (
	UserCreatedQueue = "user-created-media-service-queue"
	UserDeletedQueue = "user-deleted-media-service-queue"
)

// UserCreatedEvent and UserDeletedEvent are the JSON payloads published by
// the external user-management service.
type UserCreatedEvent struct {
	ID string `json:"id"`
}
type UserDeletedEvent struct {
	ID string `json:"id"`
}

// Register binds this service's consumer queues and starts consuming.
func Register(ctx context.Context, broker *mq.Broker, svc *service.Service, log *logrus.Entry) error {
	if err := broker.DeclareExchange(mq.UserExchange); err != nil {
		return err
	}

	if _, err := broker.DeclareQueue(mq.UserExchange, UserCreatedQueue, "user.created"); err != nil {
		return err
	}
	if err := mq.ConsumeJSON(ctx, broker, UserCreatedQueue, "media-service", func(ctx context.Context, msg UserCreatedEvent, _ amqp.Table) error {
		return svc.HandleUserCreated(ctx, msg.ID)
	}); err != nil {
		return err
	}

	if _, err := broker.DeclareQueue(mq.UserExchange, UserDeletedQueue, "user.deleted"); err != nil {
		return err
	}
	if err := mq.ConsumeJSON(ctx, broker, UserDeletedQueue, "media-service", func(ctx context.Context, msg UserDeletedEvent, _ amqp.Table) error {
		return svc.HandleUserDeleted(ctx, msg.ID)
	}); err != nil {
		return err
	}

	log.Info("media service event consumers registered")
	return nil
}
