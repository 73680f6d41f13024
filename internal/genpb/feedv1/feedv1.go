// Package feedv1 holds the client-side message contracts for the
// feed-ranker collaborator consumed by the aggregator. The ranker itself
// is operated by another team; only its client stub lives here.
package feedv1

import (
	"context"

	"google.golang.org/grpc"
)

type GetPostsRecommendationsRequest struct {
	UserId  string
	PerPage uint32
	Cursor  string
}

type GetPostsRecommendationsResponse struct {
	PostIds    []string
	NextCursor string
}

// FeedServiceClient is the subset of the collaborator's surface the
// aggregator consumes.
type FeedServiceClient interface {
	GetPostsRecommendations(ctx context.Context, in *GetPostsRecommendationsRequest, opts ...grpc.CallOption) (*GetPostsRecommendationsResponse, error)
}

type feedServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFeedServiceClient adapts a live gRPC connection to FeedServiceClient.
func NewFeedServiceClient(cc grpc.ClientConnInterface) FeedServiceClient {
	return &feedServiceClient{cc: cc}
}

func (c *feedServiceClient) GetPostsRecommendations(ctx context.Context, in *GetPostsRecommendationsRequest, opts ...grpc.CallOption) (*GetPostsRecommendationsResponse, error) {
	out := new(GetPostsRecommendationsResponse)
	if err := c.cc.Invoke(ctx, "/feed.v1.FeedService/GetPostsRecommendations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
