// Package relationshipv1 holds the client-side message contracts for the
// social-graph collaborator consumed by the aggregator. The graph service
// itself is owned and operated elsewhere; only its client stub lives here.
package relationshipv1

import (
	"context"

	"google.golang.org/grpc"
)

// RelationshipBucket groups related user ids under a named relation
// (e.g. "followers", "following").
type RelationshipBucket struct {
	Name    string
	UserIds []string
}

type GetUserRelationshipsRequest struct {
	UserId string
}
type GetUserRelationshipsResponse struct {
	Buckets []*RelationshipBucket
}

// RelationshipServiceClient is the subset of the collaborator's surface the
// aggregator consumes.
type RelationshipServiceClient interface {
	GetUserRelationships(ctx context.Context, in *GetUserRelationshipsRequest, opts ...grpc.CallOption) (*GetUserRelationshipsResponse, error)
}

type relationshipServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRelationshipServiceClient adapts a live gRPC connection to
// RelationshipServiceClient.
func NewRelationshipServiceClient(cc grpc.ClientConnInterface) RelationshipServiceClient {
	return &relationshipServiceClient{cc: cc}
}

func (c *relationshipServiceClient) GetUserRelationships(ctx context.Context, in *GetUserRelationshipsRequest, opts ...grpc.CallOption) (*GetUserRelationshipsResponse, error) {
	out := new(GetUserRelationshipsResponse)
	if err := c.cc.Invoke(ctx, "/relationship.v1.RelationshipService/GetUserRelationships", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
