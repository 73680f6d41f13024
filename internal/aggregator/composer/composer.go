// Package composer implements the aggregator's fan-out composition engine:
// parallel invocation of downstream collaborators per read endpoint, with
// per-leg criticality and isStale degradation.
package composer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nimbusfeed/socialmesh/internal/aggregator/clients"
	"github.com/nimbusfeed/socialmesh/internal/aggregator/domain"
	"github.com/nimbusfeed/socialmesh/internal/genpb/feedv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/postv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/relationshipv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/replyv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/userprofilev1"
	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
)

// Composer holds the downstream clients every composition fans out to.
type Composer struct {
	clients *clients.Clients
}

func New(c *clients.Clients) *Composer {
	return &Composer{clients: c}
}

// GetPaginatedPosts implements the recent-posts-page composition: a
// paginated post fetch, interaction fan-out, and user-summary hydration.
func (c *Composer) GetPaginatedPosts(ctx context.Context, perPage uint32, cursor, interactionUserID string) (*domain.PaginatedPostView, error) {
	resp, err := c.clients.Post.GetPaginatedPosts(ctx, &postv1.GetPaginatedPostsRequest{PerPage: perPage, Cursor: cursor})
	if err != nil {
		return nil, apperr.FromDownstream("post service", err)
	}

	postIDs := make([]string, len(resp.Posts))
	for i, p := range resp.Posts {
		postIDs[i] = p.Id
	}

	interactions, summaries, stale := c.hydrateInteractionsAndSummaries(ctx, postIDs, resp.Posts, interactionUserID)

	return &domain.PaginatedPostView{
		Posts:      mergePosts(resp.Posts, interactions, summaries),
		NextCursor: resp.NextCursor,
		IsStale:    stale,
	}, nil
}

// GetPostByID implements the post-by-id composition: a single post fetch,
// interaction fan-out, and user-summary hydration.
func (c *Composer) GetPostByID(ctx context.Context, postID, interactionUserID string) (*domain.Post, bool, error) {
	resp, err := c.clients.Post.GetPostById(ctx, &postv1.GetPostByIdRequest{PostId: postID})
	if err != nil {
		return nil, false, apperr.FromDownstream("post service", err)
	}

	posts := []*postv1.Post{resp.Post}
	interactions, summaries, stale := c.hydrateInteractionsAndSummaries(ctx, []string{postID}, posts, interactionUserID)

	merged := mergePosts(posts, interactions, summaries)
	return merged[0], stale, nil
}

// GetUserByID implements the user-by-id composition: a profile fetch
// joined with that user's paginated posts and relationship buckets.
func (c *Composer) GetUserByID(ctx context.Context, userID, interactionUserID string) (*domain.UserView, error) {
	var userResp *userprofilev1.GetUserByIdResponse
	var postsResp *postv1.GetPaginatedPostsResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := c.clients.UserProfile.GetUserById(gctx, &userprofilev1.GetUserByIdRequest{UserId: userID})
		if err != nil {
			return apperr.FromDownstream("user-profile service", err)
		}
		userResp = resp
		return nil
	})
	g.Go(func() error {
		resp, err := c.clients.Post.GetPaginatedPosts(gctx, &postv1.GetPaginatedPostsRequest{UserId: userID, PerPage: 10})
		if err != nil {
			return apperr.FromDownstream("post service", err)
		}
		postsResp = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	postIDs := make([]string, len(postsResp.Posts))
	for i, p := range postsResp.Posts {
		postIDs[i] = p.Id
	}

	var relBuckets []*relationshipv1.RelationshipBucket
	var interactions map[string]*replyv1.PostInteraction
	relStale := false
	interactionsStale := false

	nonCritical, nctx := errgroup.WithContext(ctx)
	nonCritical.Go(func() error {
		resp, err := c.clients.Relationship.GetUserRelationships(nctx, &relationshipv1.GetUserRelationshipsRequest{UserId: userID})
		if err != nil {
			relStale = true
			return nil
		}
		relBuckets = resp.Buckets
		return nil
	})
	if len(postIDs) > 0 {
		nonCritical.Go(func() error {
			resp, err := c.clients.Reply.GetBatchOfPostInteractions(nctx, &replyv1.GetBatchOfPostInteractionsRequest{PostIds: postIDs, ViewerUserId: interactionUserID})
			if err != nil {
				interactionsStale = true
				return nil
			}
			interactions = indexInteractions(resp.Interactions)
			return nil
		})
	}
	_ = nonCritical.Wait()

	userIDs := map[string]struct{}{}
	for _, p := range postsResp.Posts {
		userIDs[p.AuthorId] = struct{}{}
	}
	collectReplyAuthors(interactions, userIDs)
	for _, b := range relBuckets {
		for _, id := range b.UserIds {
			userIDs[id] = struct{}{}
		}
	}

	summaryResp, err := c.clients.UserProfile.GetBatchUsersSummaryByIds(ctx, &userprofilev1.GetBatchUsersSummaryByIdsRequest{UserIds: dedupe(userIDs)})
	if err != nil {
		return nil, apperr.FromDownstream("user-profile service", err)
	}
	summaries := indexSummaries(summaryResp.Summaries)

	buckets := make([]domain.RelationshipBucket, len(relBuckets))
	for i, b := range relBuckets {
		buckets[i] = domain.RelationshipBucket{Kind: b.Name, UserIDs: b.UserIds}
	}

	return &domain.UserView{
		User:           toUserSummary(userResp.User),
		Posts:          mergePosts(postsResp.Posts, interactions, summaries),
		NextCursor:     postsResp.NextCursor,
		Relationships:  buckets,
		PostsStale:     interactionsStale,
		RelationsStale: relStale,
	}, nil
}

// GetUserFeed implements the user-feed composition: a recommended post-id
// list from the feed service, hydrated the same way as the other post
// compositions above.
func (c *Composer) GetUserFeed(ctx context.Context, userID string, perPage uint32, cursor string) (*domain.PaginatedPostView, error) {
	resp, err := c.clients.Feed.GetPostsRecommendations(ctx, &feedv1.GetPostsRecommendationsRequest{UserId: userID, PerPage: perPage, Cursor: cursor})
	if err != nil {
		return nil, apperr.FromDownstream("feed service", err)
	}
	if len(resp.PostIds) == 0 {
		return &domain.PaginatedPostView{Posts: []*domain.Post{}, NextCursor: resp.NextCursor}, nil
	}

	batchResp, err := c.clients.Post.GetBatchPosts(ctx, &postv1.GetBatchPostsRequest{PostIds: resp.PostIds})
	if err != nil {
		return nil, apperr.FromDownstream("post service", err)
	}

	interactions, summaries, stale := c.hydrateInteractionsAndSummaries(ctx, resp.PostIds, batchResp.Posts, userID)

	return &domain.PaginatedPostView{
		Posts:      mergePosts(batchResp.Posts, interactions, summaries),
		NextCursor: resp.NextCursor,
		IsStale:    stale,
	}, nil
}

// hydrateInteractionsAndSummaries runs the two non-critical legs shared by
// every posts-composition: batched interactions, then the user-summary
// fetch which must wait for both the post list and the interactions list
// (their author id sets are merged) before it can start.
func (c *Composer) hydrateInteractionsAndSummaries(ctx context.Context, postIDs []string, posts []*postv1.Post, interactionUserID string) (map[string]*replyv1.PostInteraction, map[string]*domain.UserSummary, bool) {
	stale := false

	var interactions map[string]*replyv1.PostInteraction
	if len(postIDs) > 0 {
		resp, err := c.clients.Reply.GetBatchOfPostInteractions(ctx, &replyv1.GetBatchOfPostInteractionsRequest{PostIds: postIDs, ViewerUserId: interactionUserID})
		if err != nil {
			stale = true
		} else {
			interactions = indexInteractions(resp.Interactions)
		}
	}

	userIDs := map[string]struct{}{}
	for _, p := range posts {
		if p != nil {
			userIDs[p.AuthorId] = struct{}{}
		}
	}
	collectReplyAuthors(interactions, userIDs)

	summaries := map[string]*domain.UserSummary{}
	if len(userIDs) > 0 {
		resp, err := c.clients.UserProfile.GetBatchUsersSummaryByIds(ctx, &userprofilev1.GetBatchUsersSummaryByIdsRequest{UserIds: dedupe(userIDs)})
		if err != nil {
			stale = true
		} else {
			summaries = indexSummaries(resp.Summaries)
		}
	}

	return interactions, summaries, stale
}
