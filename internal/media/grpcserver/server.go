// Package grpcserver adapts the media service's domain layer to the
// postv1.PostServiceServer contract, following the Server/NewServer/Register
// shape of the cenackle post-service example.
package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nimbusfeed/socialmesh/internal/genpb/postv1"
	"github.com/nimbusfeed/socialmesh/internal/media/domain"
	"github.com/nimbusfeed/socialmesh/internal/media/service"
	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
)

// Server exposes the media service's read surface over gRPC for the
// aggregator to consume.
type Server struct {
	postv1.UnimplementedPostServiceServer
	svc *service.Service
}

func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// Register mounts the service on grpcServer.
func (s *Server) Register(grpcServer *grpc.Server) {
	postv1.RegisterPostServiceServer(grpcServer, s)
}

func (s *Server) GetPostById(ctx context.Context, req *postv1.GetPostByIdRequest) (*postv1.GetPostByIdResponse, error) {
	if req.PostId == "" {
		return nil, status.Error(codes.InvalidArgument, "post_id is required")
	}

	post, err := s.svc.GetPost(ctx, req.PostId)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "post not found")
		}
		return nil, status.Error(codes.Internal, "failed to fetch post")
	}

	return &postv1.GetPostByIdResponse{Post: toProto(post)}, nil
}

func (s *Server) GetPaginatedPosts(ctx context.Context, req *postv1.GetPaginatedPostsRequest) (*postv1.GetPaginatedPostsResponse, error) {
	page, err := s.svc.ListByOwner(ctx, req.UserId, req.PerPage, req.Cursor)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to list posts")
	}

	posts := make([]*postv1.Post, len(page.Posts))
	for i := range page.Posts {
		posts[i] = toProto(&page.Posts[i])
	}
	return &postv1.GetPaginatedPostsResponse{Posts: posts, NextCursor: page.NextCursor}, nil
}

func (s *Server) GetBatchPosts(ctx context.Context, req *postv1.GetBatchPostsRequest) (*postv1.GetBatchPostsResponse, error) {
	if len(req.PostIds) == 0 {
		return &postv1.GetBatchPostsResponse{Posts: []*postv1.Post{}}, nil
	}

	posts, err := s.svc.GetBatch(ctx, req.PostIds)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to batch fetch posts")
	}

	out := make([]*postv1.Post, len(posts))
	for i := range posts {
		out[i] = toProto(&posts[i])
	}
	return &postv1.GetBatchPostsResponse{Posts: out}, nil
}

func toProto(p *domain.Post) *postv1.Post {
	if p == nil {
		return nil
	}
	media := make([]*postv1.Media, len(p.Files))
	for i, f := range p.Files {
		media[i] = &postv1.Media{
			Id:          f.ID,
			Url:         f.AccessURL,
			ContentType: f.ContentType,
			FileName:    f.OriginalName,
		}
	}
	return &postv1.Post{
		Id:        p.ID,
		AuthorId:  p.OwnerID,
		Content:   p.Content,
		Media:     media,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
