// Package domain holds the aggregator's composite, non-persisted response
// documents: paginated post pages and the merged user-view shape returned
// over the HTTP edge.
package domain

// FileRef mirrors a Post's media reference as returned by the media
// service, carried through the composition untouched.
type FileRef struct {
	ID              string `json:"id"`
	OriginalName    string `json:"originalName"`
	ContentType     string `json:"contentType"`
	AccessURL       string `json:"accessUrl"`
	AccessURLExpiry string `json:"accessUrlExpiry,omitempty"`
}

// UserSummary is materialized at request time from a batch call to the
// user-profile collaborator and never persisted by the aggregator.
type UserSummary struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Reply is the composed view of a reply, joined with its like/view counts
// and author summary.
type Reply struct {
	ID             string       `json:"id"`
	RootID         string       `json:"rootId"`
	ParentID       string       `json:"parentId"`
	Content        string       `json:"content"`
	CreatedAt      string       `json:"createdAt"`
	Likes          uint64       `json:"likes"`
	Views          uint64       `json:"views"`
	UserInteracted bool         `json:"userInteracted"`
	Author         *UserSummary `json:"author,omitempty"`
	Children       []*Reply     `json:"children"`
}

// Post is the composed view of a post: the authoritative record from the
// media service joined with its interaction counts and author summary.
type Post struct {
	ID             string       `json:"id"`
	Content        string       `json:"content"`
	Files          []FileRef    `json:"files"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
	Author         *UserSummary `json:"author,omitempty"`
	Likes          uint64       `json:"likes"`
	Views          uint64       `json:"views"`
	UserInteracted bool         `json:"userInteracted"`
	Replies        []*Reply     `json:"replies"`
}

// PaginatedPostView is the response shape for every posts-page endpoint.
// IsStale is set true the moment any non-critical leg of the composition
// that produced it fails.
type PaginatedPostView struct {
	Posts      []*Post `json:"posts"`
	NextCursor string  `json:"nextCursor,omitempty"`
	IsStale    bool    `json:"isStale"`
}

// RelationshipBucket mirrors the social-graph collaborator's grouping of
// a user's relationships (followers, following, etc).
type RelationshipBucket struct {
	Kind    string   `json:"kind"`
	UserIDs []string `json:"userIds"`
}

// UserView is the response shape for GET /api/users/{userId}: a profile
// joined with recent posts and relationships, each independently staleable.
type UserView struct {
	User           *UserSummary         `json:"user"`
	Posts          []*Post              `json:"posts"`
	NextCursor     string               `json:"nextCursor,omitempty"`
	Relationships  []RelationshipBucket `json:"relationships"`
	PostsStale     bool                 `json:"postsStale"`
	RelationsStale bool                 `json:"relationsStale"`
}
