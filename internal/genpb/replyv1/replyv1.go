// Package replyv1 holds the message and service contracts for the
// user-interaction service's gRPC surface, hand-written in the shape
// protoc-gen-go-grpc would generate.
package replyv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Reply mirrors the wire shape of the Reply data model, including its
// reconstructed children for the nested-tree response shape §4.2 describes.
type Reply struct {
	Id             string
	RootId         string
	ParentId       string
	AuthorId       string
	Content        string
	CreatedAt      time.Time
	Path           string
	Likes          uint64
	Views          uint64
	UserInteracted bool
	Children       []*Reply
}

// PostInteraction is the composite answer the aggregator consumes per post.
type PostInteraction struct {
	PostId         string
	Replies        []*Reply
	Likes          uint64
	Views          uint64
	UserInteracted bool
}

type GetReplyByIdRequest struct {
	ReplyId      string
	ViewerUserId string // optional
}
type GetReplyByIdResponse struct {
	Reply *Reply
}

type GetPostInteractionsRequest struct {
	PostId       string
	ViewerUserId string // optional
}
type GetPostInteractionsResponse struct {
	Interaction *PostInteraction
}

type GetBatchOfPostInteractionsRequest struct {
	PostIds      []string
	ViewerUserId string // optional
}
type GetBatchOfPostInteractionsResponse struct {
	Interactions []*PostInteraction
}

type CreateReplyRequest struct {
	PostId   string
	ParentId string
	AuthorId string
	Content  string
}
type CreateReplyResponse struct {
	Reply *Reply
}

type UpdateReplyRequest struct {
	ReplyId string
	Content string
}
type UpdateReplyResponse struct {
	Reply *Reply
}

type DeleteReplyRequest struct {
	ReplyId string
}
type DeleteReplyResponse struct{}

type LikeRequest struct {
	ResourceId string
	UserId     string
}
type LikeResponse struct {
	Added bool
}

type UnlikeRequest struct {
	ResourceId string
	UserId     string
}
type UnlikeResponse struct {
	Removed bool
}

type ViewRequest struct {
	ResourceId string
	UserId     string
}
type ViewResponse struct {
	Grew bool
}

// ReplyServiceClient is the subset consumed by the aggregator.
type ReplyServiceClient interface {
	GetReplyById(ctx context.Context, in *GetReplyByIdRequest, opts ...grpc.CallOption) (*GetReplyByIdResponse, error)
	GetPostInteractions(ctx context.Context, in *GetPostInteractionsRequest, opts ...grpc.CallOption) (*GetPostInteractionsResponse, error)
	GetBatchOfPostInteractions(ctx context.Context, in *GetBatchOfPostInteractionsRequest, opts ...grpc.CallOption) (*GetBatchOfPostInteractionsResponse, error)
}

type replyServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReplyServiceClient(cc grpc.ClientConnInterface) ReplyServiceClient {
	return &replyServiceClient{cc: cc}
}

func (c *replyServiceClient) GetReplyById(ctx context.Context, in *GetReplyByIdRequest, opts ...grpc.CallOption) (*GetReplyByIdResponse, error) {
	out := new(GetReplyByIdResponse)
	if err := c.cc.Invoke(ctx, "/reply.v1.ReplyService/GetReplyById", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replyServiceClient) GetPostInteractions(ctx context.Context, in *GetPostInteractionsRequest, opts ...grpc.CallOption) (*GetPostInteractionsResponse, error) {
	out := new(GetPostInteractionsResponse)
	if err := c.cc.Invoke(ctx, "/reply.v1.ReplyService/GetPostInteractions", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replyServiceClient) GetBatchOfPostInteractions(ctx context.Context, in *GetBatchOfPostInteractionsRequest, opts ...grpc.CallOption) (*GetBatchOfPostInteractionsResponse, error) {
	out := new(GetBatchOfPostInteractionsResponse)
	if err := c.cc.Invoke(ctx, "/reply.v1.ReplyService/GetBatchOfPostInteractions", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplyServiceServer is the read+write contract the user-interaction
// service implements; the write methods share one path into the service
// layer with the HTTP handlers.
type ReplyServiceServer interface {
	GetReplyById(context.Context, *GetReplyByIdRequest) (*GetReplyByIdResponse, error)
	GetPostInteractions(context.Context, *GetPostInteractionsRequest) (*GetPostInteractionsResponse, error)
	GetBatchOfPostInteractions(context.Context, *GetBatchOfPostInteractionsRequest) (*GetBatchOfPostInteractionsResponse, error)
	CreateReply(context.Context, *CreateReplyRequest) (*CreateReplyResponse, error)
	UpdateReply(context.Context, *UpdateReplyRequest) (*UpdateReplyResponse, error)
	DeleteReply(context.Context, *DeleteReplyRequest) (*DeleteReplyResponse, error)
	Like(context.Context, *LikeRequest) (*LikeResponse, error)
	Unlike(context.Context, *UnlikeRequest) (*UnlikeResponse, error)
	View(context.Context, *ViewRequest) (*ViewResponse, error)
}

// UnimplementedReplyServiceServer can be embedded for forward compatibility.
type UnimplementedReplyServiceServer struct{}

func (UnimplementedReplyServiceServer) GetReplyById(context.Context, *GetReplyByIdRequest) (*GetReplyByIdResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReplyById not implemented")
}
func (UnimplementedReplyServiceServer) GetPostInteractions(context.Context, *GetPostInteractionsRequest) (*GetPostInteractionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPostInteractions not implemented")
}
func (UnimplementedReplyServiceServer) GetBatchOfPostInteractions(context.Context, *GetBatchOfPostInteractionsRequest) (*GetBatchOfPostInteractionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBatchOfPostInteractions not implemented")
}
func (UnimplementedReplyServiceServer) CreateReply(context.Context, *CreateReplyRequest) (*CreateReplyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateReply not implemented")
}
func (UnimplementedReplyServiceServer) UpdateReply(context.Context, *UpdateReplyRequest) (*UpdateReplyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateReply not implemented")
}
func (UnimplementedReplyServiceServer) DeleteReply(context.Context, *DeleteReplyRequest) (*DeleteReplyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteReply not implemented")
}
func (UnimplementedReplyServiceServer) Like(context.Context, *LikeRequest) (*LikeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Like not implemented")
}
func (UnimplementedReplyServiceServer) Unlike(context.Context, *UnlikeRequest) (*UnlikeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Unlike not implemented")
}
func (UnimplementedReplyServiceServer) View(context.Context, *ViewRequest) (*ViewResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method View not implemented")
}

func unaryHandler[TReq any, TResp any](fullMethod string, call func(srv any, ctx context.Context, in *TReq) (*TResp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(TReq)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*TReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var replyServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: "reply.v1.ReplyService",
	HandlerType: (*ReplyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetReplyById", Handler: unaryHandler("/reply.v1.ReplyService/GetReplyById", func(srv any, ctx context.Context, in *GetReplyByIdRequest) (*GetReplyByIdResponse, error) {
			return srv.(ReplyServiceServer).GetReplyById(ctx, in)
		})},
		{MethodName: "GetPostInteractions", Handler: unaryHandler("/reply.v1.ReplyService/GetPostInteractions", func(srv any, ctx context.Context, in *GetPostInteractionsRequest) (*GetPostInteractionsResponse, error) {
			return srv.(ReplyServiceServer).GetPostInteractions(ctx, in)
		})},
		{MethodName: "GetBatchOfPostInteractions", Handler: unaryHandler("/reply.v1.ReplyService/GetBatchOfPostInteractions", func(srv any, ctx context.Context, in *GetBatchOfPostInteractionsRequest) (*GetBatchOfPostInteractionsResponse, error) {
			return srv.(ReplyServiceServer).GetBatchOfPostInteractions(ctx, in)
		})},
		{MethodName: "CreateReply", Handler: unaryHandler("/reply.v1.ReplyService/CreateReply", func(srv any, ctx context.Context, in *CreateReplyRequest) (*CreateReplyResponse, error) {
			return srv.(ReplyServiceServer).CreateReply(ctx, in)
		})},
		{MethodName: "UpdateReply", Handler: unaryHandler("/reply.v1.ReplyService/UpdateReply", func(srv any, ctx context.Context, in *UpdateReplyRequest) (*UpdateReplyResponse, error) {
			return srv.(ReplyServiceServer).UpdateReply(ctx, in)
		})},
		{MethodName: "DeleteReply", Handler: unaryHandler("/reply.v1.ReplyService/DeleteReply", func(srv any, ctx context.Context, in *DeleteReplyRequest) (*DeleteReplyResponse, error) {
			return srv.(ReplyServiceServer).DeleteReply(ctx, in)
		})},
		{MethodName: "Like", Handler: unaryHandler("/reply.v1.ReplyService/Like", func(srv any, ctx context.Context, in *LikeRequest) (*LikeResponse, error) {
			return srv.(ReplyServiceServer).Like(ctx, in)
		})},
		{MethodName: "Unlike", Handler: unaryHandler("/reply.v1.ReplyService/Unlike", func(srv any, ctx context.Context, in *UnlikeRequest) (*UnlikeResponse, error) {
			return srv.(ReplyServiceServer).Unlike(ctx, in)
		})},
		{MethodName: "View", Handler: unaryHandler("/reply.v1.ReplyService/View", func(srv any, ctx context.Context, in *ViewRequest) (*ViewResponse, error) {
			return srv.(ReplyServiceServer).View(ctx, in)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reply/v1/reply.proto",
}

// RegisterReplyServiceServer registers srv's handlers on grpcServer.
func RegisterReplyServiceServer(grpcServer grpc.ServiceRegistrar, srv ReplyServiceServer) {
	grpcServer.RegisterService(&replyServiceServiceDesc, srv)
}
