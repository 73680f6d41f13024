// Package service implements the user-interaction service's read and write
// paths, shared by its gRPC and HTTP transport adapters.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
	"github.com/nimbusfeed/socialmesh/internal/platform/mq"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/domain"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/interactions"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/replystore"
)

// Publisher is the narrow broker seam the service needs.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload any, headers amqp.Table) error
}

type brokerPublisher struct{ b *mq.Broker }

func NewBrokerPublisher(b *mq.Broker) Publisher { return brokerPublisher{b: b} }

func (p brokerPublisher) Publish(ctx context.Context, exchange, routingKey string, payload any, headers amqp.Table) error {
	return p.b.Publish(ctx, exchange, routingKey, payload, headers)
}

// ReplyCreatedEvent, ReplyUpdatedEvent, ReplyDeletedEvent are published to
// user-exchange after the reply store's transaction commits.
type ReplyCreatedEvent struct {
	ID     string `json:"id"`
	PostID string `json:"postId"`
}
type ReplyUpdatedEvent struct {
	ID string `json:"id"`
}
type ReplyDeletedEvent struct {
	ID string `json:"id"`
}

// Service is the user-interaction domain's single entry point.
type Service struct {
	replies *replystore.Store
	cache   *interactions.Store
	pub     Publisher
	log     *logrus.Entry
}

func New(replies *replystore.Store, cache *interactions.Store, pub Publisher, log *logrus.Entry) *Service {
	return &Service{replies: replies, cache: cache, pub: pub, log: log}
}

// --- Reply CRUD ---

// CreateReply inserts a new reply, publishes reply.created, and invalidates
// the composite-answer cache for the root post.
func (s *Service) CreateReply(ctx context.Context, postID, parentID, authorID, content string) (*domain.Reply, error) {
	reply, err := s.replies.Create(ctx, postID, parentID, authorID, content)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "creating reply", err)
	}

	if err := s.cache.InvalidatePost(ctx, reply.RootID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate cache after reply create")
	}
	if err := s.pub.Publish(ctx, mq.UserExchange, "reply.created", ReplyCreatedEvent{ID: reply.ID, PostID: reply.RootID}, nil); err != nil {
		s.log.WithError(err).Warn("failed to publish reply.created")
	}
	return reply, nil
}

// UpdateReply changes a reply's content and invalidates the cache.
func (s *Service) UpdateReply(ctx context.Context, id, content string) (*domain.Reply, error) {
	reply, err := s.replies.Update(ctx, id, content)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "reply not found", err)
	}

	if err := s.cache.InvalidatePost(ctx, reply.RootID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate cache after reply update")
	}
	if err := s.pub.Publish(ctx, mq.UserExchange, "reply.updated", ReplyUpdatedEvent{ID: reply.ID}, nil); err != nil {
		s.log.WithError(err).Warn("failed to publish reply.updated")
	}
	return reply, nil
}

// DeleteReply cascades subtree delete, interaction deletion for the whole
// subtree, and cache invalidation, then publishes reply.deleted.
func (s *Service) DeleteReply(ctx context.Context, id string) error {
	reply, err := s.replies.GetByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindNotFound, "reply not found", err)
	}

	subtree, err := s.replies.GetSubtree(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "fetching subtree", err)
	}

	if err := s.replies.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.KindInternal, "deleting reply subtree", err)
	}

	ids := make([]string, len(subtree))
	for i, r := range subtree {
		ids[i] = r.ID
	}
	if err := s.cache.DeleteMany(ctx, ids); err != nil {
		s.log.WithError(err).Warn("failed to delete interactions for deleted subtree")
	}
	if err := s.cache.InvalidatePost(ctx, reply.RootID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate cache after reply delete")
	}
	if err := s.pub.Publish(ctx, mq.UserExchange, "reply.deleted", ReplyDeletedEvent{ID: id}, nil); err != nil {
		s.log.WithError(err).Warn("failed to publish reply.deleted")
	}
	return nil
}

// --- Likes / views ---

func (s *Service) Like(ctx context.Context, resourceID, userID string) (bool, error) {
	added, err := s.cache.Like(ctx, resourceID, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "recording like", err)
	}
	return added, nil
}

func (s *Service) Unlike(ctx context.Context, resourceID, userID string) (bool, error) {
	removed, err := s.cache.Unlike(ctx, resourceID, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "recording unlike", err)
	}
	return removed, nil
}

func (s *Service) View(ctx context.Context, resourceID, userID string) (bool, error) {
	grew, err := s.cache.View(ctx, resourceID, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "recording view", err)
	}
	return grew, nil
}

// --- gRPC read surface ---

// GetReplyById fetches a single reply and hydrates its interaction counts.
func (s *Service) GetReplyById(ctx context.Context, replyID, viewerUserID string) (*domain.ReplyTree, error) {
	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "reply not found", err)
	}

	node := &domain.ReplyTree{Reply: *reply}
	likes, err := s.cache.LikeCount(ctx, reply.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "counting likes", err)
	}
	views, err := s.cache.ViewCount(ctx, reply.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "counting views", err)
	}
	node.Likes = likes
	node.Views = views

	if viewerUserID != "" {
		liked, err := s.cache.IsLiked(ctx, reply.ID, viewerUserID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "checking like state", err)
		}
		node.UserInteracted = liked
	}
	return node, nil
}

// GetPostInteractions answers the composite per-post query, trying the
// cache first, falling back to the reply store plus batched interaction
// hydration on miss, then caching the result.
func (s *Service) GetPostInteractions(ctx context.Context, postID, viewerUserID string) (*domain.PostInteraction, error) {
	if cached, ok, err := s.tryCache(ctx, postID, viewerUserID); err != nil {
		s.log.WithError(err).Warn("cache read failed, falling through to store")
	} else if ok {
		return cached, nil
	}

	flat, err := s.replies.GetAllByPost(ctx, postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "fetching replies", err)
	}

	result, err := s.hydrate(ctx, postID, flat, viewerUserID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheResult(ctx, postID, viewerUserID, result); err != nil {
		s.log.WithError(err).Warn("failed to cache post interactions")
	}
	return result, nil
}

// GetBatchOfPostInteractions answers the composite query for many posts at
// once. Posts with no cached or stored replies still produce a zero-valued
// entry, satisfying invariant 7 (the returned map's key set is a subset of
// the input, with documented defaults for misses is handled by the caller).
func (s *Service) GetBatchOfPostInteractions(ctx context.Context, postIDs []string, viewerUserID string) ([]*domain.PostInteraction, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	buckets, err := s.replies.GetAllByPosts(ctx, postIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "batch fetching replies", err)
	}

	out := make([]*domain.PostInteraction, 0, len(postIDs))
	for _, postID := range postIDs {
		if cached, ok, err := s.tryCache(ctx, postID, viewerUserID); err == nil && ok {
			out = append(out, cached)
			continue
		}

		result, err := s.hydrate(ctx, postID, buckets[postID], viewerUserID)
		if err != nil {
			return nil, err
		}
		if err := s.cacheResult(ctx, postID, viewerUserID, result); err != nil {
			s.log.WithError(err).Warn("failed to cache batch post interactions")
		}
		out = append(out, result)
	}
	return out, nil
}

// hydrate reconstructs the reply tree and populates like/view counts for
// both the post and every reply via batched lookups.
func (s *Service) hydrate(ctx context.Context, postID string, flat []domain.Reply, viewerUserID string) (*domain.PostInteraction, error) {
	roots, byID := reconstructTree(flat)

	ids := make([]string, 0, len(flat)+1)
	ids = append(ids, postID)
	for _, r := range flat {
		ids = append(ids, r.ID)
	}

	likeCounts, err := s.cache.GetManyLikes(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "batch counting likes", err)
	}
	viewCounts, err := s.cache.GetManyViews(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "batch counting views", err)
	}

	var likedMap map[string]bool
	if viewerUserID != "" {
		likedMap, err = s.cache.IsManyLiked(ctx, ids, viewerUserID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "batch checking like state", err)
		}
	}

	for id, node := range byID {
		node.Likes = likeCounts[id]
		node.Views = viewCounts[id]
		if likedMap != nil {
			node.UserInteracted = likedMap[id]
		}
	}

	return &domain.PostInteraction{
		PostID:         postID,
		Replies:        roots,
		Likes:          likeCounts[postID],
		Views:          viewCounts[postID],
		UserInteracted: likedMap != nil && likedMap[postID],
	}, nil
}

func (s *Service) tryCache(ctx context.Context, postID, viewerUserID string) (*domain.PostInteraction, bool, error) {
	raw, ok, err := s.cache.GetCached(ctx, postID, viewerUserID)
	if err != nil || !ok {
		return nil, false, err
	}
	var result domain.PostInteraction
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached interactions: %w", err)
	}
	return &result, true, nil
}

func (s *Service) cacheResult(ctx context.Context, postID, viewerUserID string, result *domain.PostInteraction) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding interactions for cache: %w", err)
	}
	return s.cache.SetCached(ctx, postID, viewerUserID, raw)
}

// --- Event handlers (cache invalidation) ---

// HandlePostDeleted cascades reply subtree delete for the root, deletes
// interactions, and forgets the post.
func (s *Service) HandlePostDeleted(ctx context.Context, postID string) error {
	if err := s.replies.DeleteByPost(ctx, postID); err != nil {
		return fmt.Errorf("deleting replies for post %s: %w", postID, err)
	}
	if err := s.cache.DeleteInteractions(ctx, postID); err != nil {
		return fmt.Errorf("deleting interactions for post %s: %w", postID, err)
	}
	if err := s.cache.RemoveCreatedPost(ctx, postID); err != nil {
		return fmt.Errorf("removing created-post entry for %s: %w", postID, err)
	}
	return s.cache.InvalidatePost(ctx, postID)
}

// HandleUserDeleted deletes every reply authored by userID, their
// interaction keys, and forgets the user.
func (s *Service) HandleUserDeleted(ctx context.Context, userID string) error {
	deletedIDs, err := s.replies.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("deleting replies for user %s: %w", userID, err)
	}
	if err := s.cache.DeleteMany(ctx, deletedIDs); err != nil {
		return fmt.Errorf("batch deleting interactions for user %s's replies: %w", userID, err)
	}
	return s.cache.RemoveKnownUser(ctx, userID)
}

// HandleUserCreated adds userID to the known-user set.
func (s *Service) HandleUserCreated(ctx context.Context, userID string) error {
	return s.cache.AddKnownUser(ctx, userID)
}

// HandlePostCreated adds postID to the created-post set only if its author
// is already known; otherwise it logs and drops the event (S6).
func (s *Service) HandlePostCreated(ctx context.Context, postID, authorID string) error {
	known, err := s.cache.IsKnownUser(ctx, authorID)
	if err != nil {
		return fmt.Errorf("checking known-user state for %s: %w", authorID, err)
	}
	if !known {
		s.log.WithField("postId", postID).WithField("authorId", authorID).Warn("post.created for unknown user, dropping")
		return nil
	}
	return s.cache.AddCreatedPost(ctx, postID)
}
