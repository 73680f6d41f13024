// Package postv1 holds the message and service contracts for the post
// service's gRPC surface. It is hand-written in the shape protoc-gen-go-grpc
// would generate from a post.proto file (message structs, a client
// interface, a server interface with an Unimplemented embed, and a
// Register*Server function) so the rest of the mesh can depend on stable
// Go types without a protobuf toolchain step.
package postv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Media is a file reference attached to a Post.
type Media struct {
	Id          string
	Url         string
	ContentType string
	FileName    string
}

// Post mirrors the wire shape of the Post data model.
type Post struct {
	Id        string
	AuthorId  string
	Content   string
	Media     []*Media
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GetPostByIdRequest struct {
	PostId string
}

type GetPostByIdResponse struct {
	Post *Post
}

type GetPaginatedPostsRequest struct {
	UserId  string // optional: restricts to one author's posts
	PerPage uint32
	Cursor  string
}

type GetPaginatedPostsResponse struct {
	Posts      []*Post
	NextCursor string
}

type GetBatchPostsRequest struct {
	PostIds []string
}

type GetBatchPostsResponse struct {
	Posts []*Post
}

// PostServiceClient is the subset of the post service's gRPC surface the
// aggregator consumes.
type PostServiceClient interface {
	GetPostById(ctx context.Context, in *GetPostByIdRequest, opts ...grpc.CallOption) (*GetPostByIdResponse, error)
	GetPaginatedPosts(ctx context.Context, in *GetPaginatedPostsRequest, opts ...grpc.CallOption) (*GetPaginatedPostsResponse, error)
	GetBatchPosts(ctx context.Context, in *GetBatchPostsRequest, opts ...grpc.CallOption) (*GetBatchPostsResponse, error)
}

type postServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPostServiceClient adapts a live gRPC connection to PostServiceClient.
func NewPostServiceClient(cc grpc.ClientConnInterface) PostServiceClient {
	return &postServiceClient{cc: cc}
}

func (c *postServiceClient) GetPostById(ctx context.Context, in *GetPostByIdRequest, opts ...grpc.CallOption) (*GetPostByIdResponse, error) {
	out := new(GetPostByIdResponse)
	if err := c.cc.Invoke(ctx, "/post.v1.PostService/GetPostById", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postServiceClient) GetPaginatedPosts(ctx context.Context, in *GetPaginatedPostsRequest, opts ...grpc.CallOption) (*GetPaginatedPostsResponse, error) {
	out := new(GetPaginatedPostsResponse)
	if err := c.cc.Invoke(ctx, "/post.v1.PostService/GetPaginatedPosts", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *postServiceClient) GetBatchPosts(ctx context.Context, in *GetBatchPostsRequest, opts ...grpc.CallOption) (*GetBatchPostsResponse, error) {
	out := new(GetBatchPostsResponse)
	if err := c.cc.Invoke(ctx, "/post.v1.PostService/GetBatchPosts", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PostServiceServer is the server-side contract the media service implements.
type PostServiceServer interface {
	GetPostById(context.Context, *GetPostByIdRequest) (*GetPostByIdResponse, error)
	GetPaginatedPosts(context.Context, *GetPaginatedPostsRequest) (*GetPaginatedPostsResponse, error)
	GetBatchPosts(context.Context, *GetBatchPostsRequest) (*GetBatchPostsResponse, error)
}

// UnimplementedPostServiceServer can be embedded to satisfy PostServiceServer
// while a concrete type only overrides the methods it needs.
type UnimplementedPostServiceServer struct{}

func (UnimplementedPostServiceServer) GetPostById(context.Context, *GetPostByIdRequest) (*GetPostByIdResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPostById not implemented")
}

func (UnimplementedPostServiceServer) GetPaginatedPosts(context.Context, *GetPaginatedPostsRequest) (*GetPaginatedPostsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPaginatedPosts not implemented")
}

func (UnimplementedPostServiceServer) GetBatchPosts(context.Context, *GetBatchPostsRequest) (*GetBatchPostsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBatchPosts not implemented")
}

var postServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: "post.v1.PostService",
	HandlerType: (*PostServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetPostById",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GetPostByIdRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(PostServiceServer).GetPostById(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/post.v1.PostService/GetPostById"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(PostServiceServer).GetPostById(ctx, req.(*GetPostByIdRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GetPaginatedPosts",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GetPaginatedPostsRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(PostServiceServer).GetPaginatedPosts(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/post.v1.PostService/GetPaginatedPosts"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(PostServiceServer).GetPaginatedPosts(ctx, req.(*GetPaginatedPostsRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GetBatchPosts",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GetBatchPostsRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(PostServiceServer).GetBatchPosts(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/post.v1.PostService/GetBatchPosts"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(PostServiceServer).GetBatchPosts(ctx, req.(*GetBatchPostsRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "post/v1/post.proto",
}

// RegisterPostServiceServer registers srv's handlers on grpcServer.
func RegisterPostServiceServer(grpcServer grpc.ServiceRegistrar, srv PostServiceServer) {
	grpcServer.RegisterService(&postServiceServiceDesc, srv)
}
