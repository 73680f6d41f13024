// Package userprofilev1 holds the client-side message contracts for the
// user-profile collaborator consumed by the aggregator. The collaborator
// itself is an external service; only the client stub needed to call it is
// defined here, in the same generated-code shape as postv1/replyv1.
package userprofilev1

import (
	"context"

	"google.golang.org/grpc"
)

// UserSummary is the non-persisted, request-time materialization the
// aggregator hydrates posts and replies with.
type UserSummary struct {
	Id              string
	DisplayName     string
	ProfileImageUrl string
}

type User struct {
	Id              string
	DisplayName     string
	ProfileImageUrl string
	Bio             string
}

type GetUserByIdRequest struct {
	UserId string
}
type GetUserByIdResponse struct {
	User *User
}

type GetBatchUsersSummaryByIdsRequest struct {
	UserIds []string
}
type GetBatchUsersSummaryByIdsResponse struct {
	Summaries []*UserSummary
}

type GetProfilePictureRequest struct {
	UserId string
}
type GetProfilePictureResponse struct {
	Url string
}

// UserProfileServiceClient is the subset of the collaborator's surface the
// aggregator consumes.
type UserProfileServiceClient interface {
	GetUserById(ctx context.Context, in *GetUserByIdRequest, opts ...grpc.CallOption) (*GetUserByIdResponse, error)
	GetBatchUsersSummaryByIds(ctx context.Context, in *GetBatchUsersSummaryByIdsRequest, opts ...grpc.CallOption) (*GetBatchUsersSummaryByIdsResponse, error)
	GetProfilePicture(ctx context.Context, in *GetProfilePictureRequest, opts ...grpc.CallOption) (*GetProfilePictureResponse, error)
}

type userProfileServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserProfileServiceClient adapts a live gRPC connection to
// UserProfileServiceClient.
func NewUserProfileServiceClient(cc grpc.ClientConnInterface) UserProfileServiceClient {
	return &userProfileServiceClient{cc: cc}
}

func (c *userProfileServiceClient) GetUserById(ctx context.Context, in *GetUserByIdRequest, opts ...grpc.CallOption) (*GetUserByIdResponse, error) {
	out := new(GetUserByIdResponse)
	if err := c.cc.Invoke(ctx, "/userprofile.v1.UserProfileService/GetUserById", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *userProfileServiceClient) GetBatchUsersSummaryByIds(ctx context.Context, in *GetBatchUsersSummaryByIdsRequest, opts ...grpc.CallOption) (*GetBatchUsersSummaryByIdsResponse, error) {
	out := new(GetBatchUsersSummaryByIdsResponse)
	if err := c.cc.Invoke(ctx, "/userprofile.v1.UserProfileService/GetBatchUsersSummaryByIds", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *userProfileServiceClient) GetProfilePicture(ctx context.Context, in *GetProfilePictureRequest, opts ...grpc.CallOption) (*GetProfilePictureResponse, error) {
	out := new(GetProfilePictureResponse)
	if err := c.cc.Invoke(ctx, "/userprofile.v1.UserProfileService/GetProfilePicture", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
