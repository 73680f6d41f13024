// Package events wires the user-interaction service's inbound message-bus
// consumers to its domain service: this service binds all four
// post/user queues.
package events

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/nimbusfeed/socialmesh/internal/platform/mq"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/service"
)

const (
	PostDeletedQueue = "post-deleted-user-interaction-queue"
	PostCreatedQueue = "post-created-user-interaction-queue"
	UserCreatedQueue = "user-created-user-interaction-queue"
	UserDeletedQueue = "user-deleted-user-interaction-queue"
)

type PostDeletedEvent struct {
	ID string `json:"id"`
}
type PostCreatedEvent struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}
type UserCreatedEvent struct {
	ID string `json:"id"`
}
type UserDeletedEvent struct {
	ID string `json:"id"`
}

// Register binds this service's consumer queues and starts consuming.
func Register(ctx context.Context, broker *mq.Broker, svc *service.Service, log *logrus.Entry) error {
	if err := broker.DeclareExchange(mq.PostExchange); err != nil {
		return err
	}
	if err := broker.DeclareExchange(mq.UserExchange); err != nil {
		return err
	}

	if _, err := broker.DeclareQueue(mq.PostExchange, PostDeletedQueue, "post.deleted"); err != nil {
		return err
	}
	if err := mq.ConsumeJSON(ctx, broker, PostDeletedQueue, "user-interaction", func(ctx context.Context, msg PostDeletedEvent, _ amqp.Table) error {
		return svc.HandlePostDeleted(ctx, msg.ID)
	}); err != nil {
		return err
	}

	if _, err := broker.DeclareQueue(mq.PostExchange, PostCreatedQueue, "post.created"); err != nil {
		return err
	}
	if err := mq.ConsumeJSON(ctx, broker, PostCreatedQueue, "user-interaction", func(ctx context.Context, msg PostCreatedEvent, _ amqp.Table) error {
		return svc.HandlePostCreated(ctx, msg.ID, msg.UserID)
	}); err != nil {
		return err
	}

	if _, err := broker.DeclareQueue(mq.UserExchange, UserCreatedQueue, "user.created"); err != nil {
		return err
	}
	if err := mq.ConsumeJSON(ctx, broker, UserCreatedQueue, "user-interaction", func(ctx context.Context, msg UserCreatedEvent, _ amqp.Table) error {
		return svc.HandleUserCreated(ctx, msg.ID)
	}); err != nil {
		return err
	}

	if _, err := broker.DeclareQueue(mq.UserExchange, UserDeletedQueue, "user.deleted"); err != nil {
		return err
	}
	if err := mq.ConsumeJSON(ctx, broker, UserDeletedQueue, "user-interaction", func(ctx context.Context, msg UserDeletedEvent, _ amqp.Table) error {
		return svc.HandleUserDeleted(ctx, msg.ID)
	}); err != nil {
		return err
	}

	log.Info("user-interaction service event consumers registered")
	return nil
}
