// Package domain holds the user-interaction service's core types.
package domain

import "time"

// Reply is a single node in a post's reply tree. Path is the materialized
// path: ancestor ids, root first, delimited by "/", ending with the
// reply's own id.
type Reply struct {
	ID        string
	RootID    string
	ParentID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	Path      string
}

// ReplyTree is a Reply enriched with reconstructed children, interaction
// counts, and the current viewer's like state — the shape returned over
// the gRPC read surface.
type ReplyTree struct {
	Reply
	Likes          uint64
	Views          uint64
	UserInteracted bool
	Children       []*ReplyTree
}

// PostInteraction is the composite per-post interaction answer: reply
// tree, like count, view count, and the viewer's own like state.
type PostInteraction struct {
	PostID         string
	Replies        []*ReplyTree
	Likes          uint64
	Views          uint64
	UserInteracted bool
}
