// Package grpcserver adapts the user-interaction service's domain layer to
// the replyv1.ReplyServiceServer contract.
package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nimbusfeed/socialmesh/internal/genpb/replyv1"
	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/domain"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/service"
)

// Server exposes the user-interaction service's read and command surface
// over gRPC.
type Server struct {
	replyv1.UnimplementedReplyServiceServer
	svc *service.Service
}

func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Register(grpcServer *grpc.Server) {
	replyv1.RegisterReplyServiceServer(grpcServer, s)
}

func (s *Server) GetReplyById(ctx context.Context, req *replyv1.GetReplyByIdRequest) (*replyv1.GetReplyByIdResponse, error) {
	if req.ReplyId == "" {
		return nil, status.Error(codes.InvalidArgument, "reply_id is required")
	}
	reply, err := s.svc.GetReplyById(ctx, req.ReplyId, req.ViewerUserId)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "reply not found")
		}
		return nil, status.Error(codes.Internal, "failed to fetch reply")
	}
	return &replyv1.GetReplyByIdResponse{Reply: toProtoTree(reply)}, nil
}

func (s *Server) GetPostInteractions(ctx context.Context, req *replyv1.GetPostInteractionsRequest) (*replyv1.GetPostInteractionsResponse, error) {
	if req.PostId == "" {
		return nil, status.Error(codes.InvalidArgument, "post_id is required")
	}
	interaction, err := s.svc.GetPostInteractions(ctx, req.PostId, req.ViewerUserId)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to fetch post interactions")
	}
	return &replyv1.GetPostInteractionsResponse{Interaction: toProtoInteraction(interaction)}, nil
}

func (s *Server) GetBatchOfPostInteractions(ctx context.Context, req *replyv1.GetBatchOfPostInteractionsRequest) (*replyv1.GetBatchOfPostInteractionsResponse, error) {
	if len(req.PostIds) == 0 {
		return &replyv1.GetBatchOfPostInteractionsResponse{Interactions: []*replyv1.PostInteraction{}}, nil
	}
	interactions, err := s.svc.GetBatchOfPostInteractions(ctx, req.PostIds, req.ViewerUserId)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to batch fetch post interactions")
	}
	out := make([]*replyv1.PostInteraction, len(interactions))
	for i, in := range interactions {
		out[i] = toProtoInteraction(in)
	}
	return &replyv1.GetBatchOfPostInteractionsResponse{Interactions: out}, nil
}

func (s *Server) CreateReply(ctx context.Context, req *replyv1.CreateReplyRequest) (*replyv1.CreateReplyResponse, error) {
	if req.PostId == "" || req.AuthorId == "" || req.Content == "" {
		return nil, status.Error(codes.InvalidArgument, "post_id, author_id, and content are required")
	}
	reply, err := s.svc.CreateReply(ctx, req.PostId, req.ParentId, req.AuthorId, req.Content)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to create reply")
	}
	return &replyv1.CreateReplyResponse{Reply: &replyv1.Reply{
		Id: reply.ID, RootId: reply.RootID, ParentId: reply.ParentID,
		AuthorId: reply.AuthorID, Content: reply.Content, CreatedAt: reply.CreatedAt, Path: reply.Path,
	}}, nil
}

func (s *Server) UpdateReply(ctx context.Context, req *replyv1.UpdateReplyRequest) (*replyv1.UpdateReplyResponse, error) {
	if req.ReplyId == "" {
		return nil, status.Error(codes.InvalidArgument, "reply_id is required")
	}
	reply, err := s.svc.UpdateReply(ctx, req.ReplyId, req.Content)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "reply not found")
		}
		return nil, status.Error(codes.Internal, "failed to update reply")
	}
	return &replyv1.UpdateReplyResponse{Reply: &replyv1.Reply{
		Id: reply.ID, RootId: reply.RootID, ParentId: reply.ParentID,
		AuthorId: reply.AuthorID, Content: reply.Content, CreatedAt: reply.CreatedAt, Path: reply.Path,
	}}, nil
}

func (s *Server) DeleteReply(ctx context.Context, req *replyv1.DeleteReplyRequest) (*replyv1.DeleteReplyResponse, error) {
	if req.ReplyId == "" {
		return nil, status.Error(codes.InvalidArgument, "reply_id is required")
	}
	if err := s.svc.DeleteReply(ctx, req.ReplyId); err != nil {
		if apperr.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "reply not found")
		}
		return nil, status.Error(codes.Internal, "failed to delete reply")
	}
	return &replyv1.DeleteReplyResponse{}, nil
}

func (s *Server) Like(ctx context.Context, req *replyv1.LikeRequest) (*replyv1.LikeResponse, error) {
	added, err := s.svc.Like(ctx, req.ResourceId, req.UserId)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to like resource")
	}
	return &replyv1.LikeResponse{Added: added}, nil
}

func (s *Server) Unlike(ctx context.Context, req *replyv1.UnlikeRequest) (*replyv1.UnlikeResponse, error) {
	removed, err := s.svc.Unlike(ctx, req.ResourceId, req.UserId)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to unlike resource")
	}
	return &replyv1.UnlikeResponse{Removed: removed}, nil
}

func (s *Server) View(ctx context.Context, req *replyv1.ViewRequest) (*replyv1.ViewResponse, error) {
	grew, err := s.svc.View(ctx, req.ResourceId, req.UserId)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to record view")
	}
	return &replyv1.ViewResponse{Grew: grew}, nil
}

func toProtoTree(node *domain.ReplyTree) *replyv1.Reply {
	if node == nil {
		return nil
	}
	children := make([]*replyv1.Reply, len(node.Children))
	for i, c := range node.Children {
		children[i] = toProtoTree(c)
	}
	return &replyv1.Reply{
		Id: node.ID, RootId: node.RootID, ParentId: node.ParentID,
		AuthorId: node.AuthorID, Content: node.Content, CreatedAt: node.CreatedAt, Path: node.Path,
		Likes: node.Likes, Views: node.Views, UserInteracted: node.UserInteracted, Children: children,
	}
}

func toProtoInteraction(in *domain.PostInteraction) *replyv1.PostInteraction {
	if in == nil {
		return nil
	}
	replies := make([]*replyv1.Reply, len(in.Replies))
	for i, r := range in.Replies {
		replies[i] = toProtoTree(r)
	}
	return &replyv1.PostInteraction{
		PostId: in.PostID, Replies: replies, Likes: in.Likes, Views: in.Views, UserInteracted: in.UserInteracted,
	}
}
