// Package clients dials and wraps the gRPC collaborators the aggregator
// fans out to: the post and reply services this mesh owns, plus the
// user-profile, social-graph, and feed-ranker external collaborators.
package clients

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nimbusfeed/socialmesh/internal/genpb/feedv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/postv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/relationshipv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/replyv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/userprofilev1"
)

// Clients holds one connection per downstream collaborator of the
// composition engine. Every connection is process-wide shared with
// internal multiplexing.
type Clients struct {
	Post         postv1.PostServiceClient
	Reply        replyv1.ReplyServiceClient
	UserProfile  userprofilev1.UserProfileServiceClient
	Relationship relationshipv1.RelationshipServiceClient
	Feed         feedv1.FeedServiceClient

	conns []*grpc.ClientConn
}

// Addrs is the set of downstream addresses the aggregator dials, one per
// collaborator service.
type Addrs struct {
	PostServiceAddr  string
	ReplyServiceAddr string
	UserProfileAddr  string
	RelationshipAddr string
	FeedServiceAddr  string
}

// Dial opens one gRPC connection per collaborator address. Every call is
// instrumented uniformly with otelgrpc so trace context rides every
// outbound RPC without the composer having to do it by hand.
func Dial(ctx context.Context, addrs Addrs) (*Clients, error) {
	c := &Clients{}

	postConn, err := dial(ctx, addrs.PostServiceAddr)
	if err != nil {
		return nil, fmt.Errorf("dialing post service: %w", err)
	}
	replyConn, err := dial(ctx, addrs.ReplyServiceAddr)
	if err != nil {
		return nil, fmt.Errorf("dialing reply service: %w", err)
	}
	profileConn, err := dial(ctx, addrs.UserProfileAddr)
	if err != nil {
		return nil, fmt.Errorf("dialing user-profile service: %w", err)
	}
	relConn, err := dial(ctx, addrs.RelationshipAddr)
	if err != nil {
		return nil, fmt.Errorf("dialing relationship service: %w", err)
	}
	feedConn, err := dial(ctx, addrs.FeedServiceAddr)
	if err != nil {
		return nil, fmt.Errorf("dialing feed service: %w", err)
	}

	c.conns = []*grpc.ClientConn{postConn, replyConn, profileConn, relConn, feedConn}
	c.Post = postv1.NewPostServiceClient(postConn)
	c.Reply = replyv1.NewReplyServiceClient(replyConn)
	c.UserProfile = userprofilev1.NewUserProfileServiceClient(profileConn)
	c.Relationship = relationshipv1.NewRelationshipServiceClient(relConn)
	c.Feed = feedv1.NewFeedServiceClient(feedConn)
	return c, nil
}

func dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
}

// Close tears down every downstream connection. Errors from individual
// connections are collected but do not stop the rest from closing.
func (c *Clients) Close() error {
	var firstErr error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
