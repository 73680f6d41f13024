// Package service implements the media service's write and read paths,
// shared by its gRPC and HTTP transport adapters.
package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/nimbusfeed/socialmesh/internal/media/domain"
	"github.com/nimbusfeed/socialmesh/internal/media/store"
	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
	"github.com/nimbusfeed/socialmesh/internal/platform/ids"
	"github.com/nimbusfeed/socialmesh/internal/platform/mq"
	"github.com/nimbusfeed/socialmesh/internal/platform/objectstore"
)

// Publisher is the subset of the broker the service needs, narrowed for
// testability.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload any, headers map[string][]string) error
}

type brokerPublisher struct{ b *mq.Broker }

func NewBrokerPublisher(b *mq.Broker) Publisher { return brokerPublisher{b: b} }

func (p brokerPublisher) Publish(ctx context.Context, exchange, routingKey string, payload any, headers map[string][]string) error {
	return p.b.Publish(ctx, exchange, routingKey, payload, amqp.Table(toAMQPTable(headers)))
}

// PostCreatedEvent, PostUpdatedEvent, PostDeletedEvent are the JSON payloads
// published to post-exchange after each write.
type PostCreatedEvent struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
}
type PostUpdatedEvent struct {
	ID string `json:"id"`
}
type PostDeletedEvent struct {
	ID string `json:"id"`
}

// NewFile is a caller-supplied file upload awaiting an object-store key.
type NewFile struct {
	OriginalName string
	ContentType  string
	Body         []byte
}

// Service is the media domain's single entry point.
type Service struct {
	store   *store.Store
	objects *objectstore.Store
	pub     Publisher
	log     *logrus.Entry
	urlTTL  time.Duration
}

func New(st *store.Store, objects *objectstore.Store, pub Publisher, log *logrus.Entry, urlTTL time.Duration) *Service {
	return &Service{store: st, objects: objects, pub: pub, log: log, urlTTL: urlTTL}
}

// CreatePost rejects an owner absent from the local user-existence cache,
// uploads each file, and publishes post.created after the store write
// commits.
func (s *Service) CreatePost(ctx context.Context, ownerID, content string, files []NewFile) (*domain.Post, error) {
	exists, err := s.store.UserExists(ctx, ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "checking user existence", err)
	}
	if !exists {
		return nil, apperr.New(apperr.KindValidation, "owner does not exist")
	}

	refs, err := s.uploadFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := domain.Post{
		ID:        ids.New(),
		OwnerID:   ownerID,
		Content:   content,
		Files:     refs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storing post", err)
	}

	if err := s.pub.Publish(ctx, mq.PostExchange, "post.created", PostCreatedEvent{ID: post.ID, OwnerID: post.OwnerID}, nil); err != nil {
		s.log.WithError(err).Warn("failed to publish post.created")
	}

	return &post, nil
}

// AddFiles appends newly uploaded files to an existing post (grow-only)
// and publishes post.updated.
func (s *Service) AddFiles(ctx context.Context, postID string, files []NewFile) error {
	refs, err := s.uploadFiles(ctx, files)
	if err != nil {
		return err
	}

	if err := s.store.AddFiles(ctx, postID, refs, time.Now()); err != nil {
		return apperr.Wrap(apperr.KindInternal, "appending files", err)
	}

	if err := s.pub.Publish(ctx, mq.PostExchange, "post.updated", PostUpdatedEvent{ID: postID}, nil); err != nil {
		s.log.WithError(err).Warn("failed to publish post.updated")
	}
	return nil
}

// DeletePost removes the post and publishes post.deleted, either from a
// direct HTTP delete or cascaded from a user.deleted event.
func (s *Service) DeletePost(ctx context.Context, postID string) error {
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "deleting post", err)
	}
	if err := s.pub.Publish(ctx, mq.PostExchange, "post.deleted", PostDeletedEvent{ID: postID}, nil); err != nil {
		s.log.WithError(err).Warn("failed to publish post.deleted")
	}
	return nil
}

// GetPost fetches a single post, translating a missing document into the
// application not-found kind.
func (s *Service) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "post not found", err)
	}
	return post, nil
}

// GetBatch fetches many posts, silently omitting ids that don't exist:
// the returned set is always a subset of the input set.
func (s *Service) GetBatch(ctx context.Context, ids []string) ([]domain.Post, error) {
	posts, err := s.store.GetBatch(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "batch fetching posts", err)
	}
	return posts, nil
}

// ListByOwner returns a cursor-paginated page of an owner's posts.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, perPage uint32, cursor string) (domain.PageResult, error) {
	page, err := s.store.ListByOwner(ctx, ownerID, perPage, cursor)
	if err != nil {
		return domain.PageResult{}, apperr.Wrap(apperr.KindInternal, "listing posts", err)
	}
	return page, nil
}

// HandleUserCreated records a newly known user.
func (s *Service) HandleUserCreated(ctx context.Context, userID string) error {
	return s.store.AddUser(ctx, userID)
}

// HandleUserDeleted cascades deletion of every post owned by userID, then
// forgets the user.
func (s *Service) HandleUserDeleted(ctx context.Context, userID string) error {
	postIDs, err := s.store.PostsByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing posts for deleted user %s: %w", userID, err)
	}
	for _, id := range postIDs {
		if err := s.DeletePost(ctx, id); err != nil {
			s.log.WithError(err).WithField("postId", id).Error("failed to cascade-delete post")
		}
	}
	return s.store.RemoveUser(ctx, userID)
}

func (s *Service) uploadFiles(ctx context.Context, files []NewFile) ([]domain.FileRef, error) {
	refs := make([]domain.FileRef, 0, len(files))
	for _, f := range files {
		key := ids.New()
		if err := s.objects.Put(ctx, key, f.ContentType, bytes.NewReader(f.Body)); err != nil {
			return nil, apperr.Wrap(apperr.KindUpstream, "uploading file", err)
		}
		url, err := s.objects.PresignGet(ctx, key)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUpstream, "presigning file url", err)
		}
		refs = append(refs, domain.FileRef{
			ID:              ids.New(),
			OriginalName:    f.OriginalName,
			ContentType:     f.ContentType,
			AccessURL:       url,
			AccessURLExpiry: time.Now().Add(s.urlTTL),
			ObjectKey:       key,
		})
	}
	return refs, nil
}

func toAMQPTable(headers map[string][]string) map[string]any {
	if headers == nil {
		return nil
	}
	table := make(map[string]any, len(headers))
	for k, v := range headers {
		if len(v) > 0 {
			table[k] = v[0]
		}
	}
	return table
}
