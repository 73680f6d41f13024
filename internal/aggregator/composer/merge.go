package composer

import (
	"github.com/nimbusfeed/socialmesh/internal/aggregator/domain"
	"github.com/nimbusfeed/socialmesh/internal/genpb/postv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/replyv1"
	"github.com/nimbusfeed/socialmesh/internal/genpb/userprofilev1"
)

// zeroInteraction is the default substituted when the interactions map
// lacks an entry for a post.
var zeroInteraction = &replyv1.PostInteraction{}

func indexInteractions(in []*replyv1.PostInteraction) map[string]*replyv1.PostInteraction {
	out := make(map[string]*replyv1.PostInteraction, len(in))
	for _, i := range in {
		out[i.PostId] = i
	}
	return out
}

// indexSummaries converts the user-summary RPC response into domain form
// once, so every post and reply that shares an author gets the same
// *domain.UserSummary pointer instead of a fresh copy per reference.
func indexSummaries(in []*userprofilev1.UserSummary) map[string]*domain.UserSummary {
	out := make(map[string]*domain.UserSummary, len(in))
	for _, s := range in {
		out[s.Id] = &domain.UserSummary{ID: s.Id, DisplayName: s.DisplayName, ProfileImage: s.ProfileImageUrl}
	}
	return out
}

// collectReplyAuthors walks every reply (recursively, including nested
// children) in the interaction map and adds each author id to ids.
func collectReplyAuthors(interactions map[string]*replyv1.PostInteraction, ids map[string]struct{}) {
	for _, in := range interactions {
		for _, r := range in.Replies {
			walkReplyAuthors(r, ids)
		}
	}
}

func walkReplyAuthors(r *replyv1.Reply, ids map[string]struct{}) {
	if r == nil {
		return
	}
	ids[r.AuthorId] = struct{}{}
	for _, child := range r.Children {
		walkReplyAuthors(child, ids)
	}
}

func dedupe(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

func toUserSummary(u *userprofilev1.User) *domain.UserSummary {
	if u == nil {
		return nil
	}
	return &domain.UserSummary{ID: u.Id, DisplayName: u.DisplayName, ProfileImage: u.ProfileImageUrl}
}

// summaryOrDefault returns the shared summary pointer for id, caching a
// zero-value placeholder in summaries on first miss so a user id absent
// from the user-profile response still resolves to one pointer shared by
// every post/reply that references it.
func summaryOrDefault(summaries map[string]*domain.UserSummary, id string) *domain.UserSummary {
	if s, ok := summaries[id]; ok && s != nil {
		return s
	}
	s := &domain.UserSummary{ID: id}
	summaries[id] = s
	return s
}

// mergePosts joins each post from the post service with its matching
// interaction entry and author/replier summaries.
func mergePosts(posts []*postv1.Post, interactions map[string]*replyv1.PostInteraction, summaries map[string]*domain.UserSummary) []*domain.Post {
	out := make([]*domain.Post, len(posts))
	for i, p := range posts {
		if p == nil {
			continue
		}
		in, ok := interactions[p.Id]
		if !ok || in == nil {
			in = zeroInteraction
		}

		files := make([]domain.FileRef, len(p.Media))
		for j, m := range p.Media {
			files[j] = domain.FileRef{ID: m.Id, OriginalName: m.FileName, ContentType: m.ContentType, AccessURL: m.Url}
		}

		out[i] = &domain.Post{
			ID:             p.Id,
			Content:        p.Content,
			Files:          files,
			CreatedAt:      p.CreatedAt.Format(rfc3339),
			UpdatedAt:      p.UpdatedAt.Format(rfc3339),
			Author:         summaryOrDefault(summaries, p.AuthorId),
			Likes:          in.Likes,
			Views:          in.Views,
			UserInteracted: in.UserInteracted,
			Replies:        mergeReplies(in.Replies, summaries),
		}
	}
	return out
}

func mergeReplies(replies []*replyv1.Reply, summaries map[string]*domain.UserSummary) []*domain.Reply {
	out := make([]*domain.Reply, len(replies))
	for i, r := range replies {
		out[i] = &domain.Reply{
			ID:             r.Id,
			RootID:         r.RootId,
			ParentID:       r.ParentId,
			Content:        r.Content,
			CreatedAt:      r.CreatedAt.Format(rfc3339),
			Likes:          r.Likes,
			Views:          r.Views,
			UserInteracted: r.UserInteracted,
			Author:         summaryOrDefault(summaries, r.AuthorId),
			Children:       mergeReplies(r.Children, summaries),
		}
	}
	return out
}

const rfc3339 = "2006-01-02T15:04:05Z07:00"
