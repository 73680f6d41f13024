// Package store is the media service's document-store adapter: a CouchDB
// "posts" collection keyed by post id, and a "users" collection holding
// only ids, consulted before accepting a new post. Connections and
// database provisioning go through kivik (kivik.New, DBExists/CreateDB,
// db.Put/db.Get).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb" // registers the "couch" driver

	"github.com/nimbusfeed/socialmesh/internal/media/domain"
)

const (
	postsCollection = "posts"
	usersCollection = "users"
)

// Store is the media service's persistence boundary.
type Store struct {
	client *kivik.Client
	posts  *kivik.DB
	users  *kivik.DB
}

// Open connects to the CouchDB instance at url and ensures the posts/users
// databases exist, creating them on first run.
func Open(ctx context.Context, url string) (*Store, error) {
	client, err := kivik.New("couch", url)
	if err != nil {
		return nil, fmt.Errorf("connecting to couchdb: %w", err)
	}

	for _, name := range []string{postsCollection, usersCollection} {
		exists, err := client.DBExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("checking database %s: %w", name, err)
		}
		if !exists {
			if err := client.CreateDB(ctx, name); err != nil {
				return nil, fmt.Errorf("creating database %s: %w", name, err)
			}
		}
	}

	return &Store{
		client: client,
		posts:  client.DB(postsCollection),
		users:  client.DB(usersCollection),
	}, nil
}

// postDoc is the on-disk shape, carrying CouchDB's revision alongside the
// domain fields.
type postDoc struct {
	domain.Post
	Rev string `json:"_rev,omitempty"`
}

// CreatePost inserts a new post document.
func (s *Store) CreatePost(ctx context.Context, post domain.Post) error {
	_, err := s.posts.Put(ctx, post.ID, postDoc{Post: post})
	if err != nil {
		return fmt.Errorf("creating post %s: %w", post.ID, err)
	}
	return nil
}

// GetPost fetches a single post by id. It returns kivik's not-found error
// unchanged; callers translate it to the application error taxonomy.
func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := s.posts.Get(ctx, id)
	var doc postDoc
	if err := row.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", id, err)
	}
	return &doc.Post, nil
}

// GetBatch fetches many posts by id, skipping ids that don't exist rather
// than failing the whole batch.
func (s *Store) GetBatch(ctx context.Context, ids []string) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		post, err := s.GetPost(ctx, id)
		if err != nil {
			if kivik.HTTPStatus(err) == 404 {
				continue
			}
			return nil, err
		}
		out = append(out, *post)
	}
	return out, nil
}

// ListByOwner returns a cursor-paginated page of an owner's posts, or of
// every owner's posts when ownerID is "", ordered by id (and therefore by
// creation time, since ids are sortable). cursor is the last-seen id from a
// prior page, or "" for the first page.
func (s *Store) ListByOwner(ctx context.Context, ownerID string, perPage uint32, cursor string) (domain.PageResult, error) {
	selector := map[string]any{}
	if ownerID != "" {
		selector["ownerId"] = ownerID
	}
	if cursor != "" {
		selector["id"] = map[string]any{"$gt": cursor}
	}

	limit := int(perPage)
	if limit <= 0 {
		limit = 20
	}

	rows := s.posts.Find(ctx, map[string]any{
		"selector": selector,
		"sort":     []map[string]string{{"id": "asc"}},
		"limit":    limit + 1,
	})
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var doc postDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return domain.PageResult{}, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, doc.Post)
	}
	if err := rows.Err(); err != nil {
		return domain.PageResult{}, fmt.Errorf("listing posts for owner %s: %w", ownerID, err)
	}

	var next string
	if len(posts) > limit {
		posts = posts[:limit]
		next = posts[len(posts)-1].ID
	}
	return domain.PageResult{Posts: posts, NextCursor: next}, nil
}

// AddFiles appends newFiles to an existing post's file list, never mutating
// existing entries, and bumps UpdatedAt.
func (s *Store) AddFiles(ctx context.Context, postID string, newFiles []domain.FileRef, updatedAt any) error {
	row := s.posts.Get(ctx, postID)
	var doc postDoc
	if err := row.ScanDoc(&doc); err != nil {
		return fmt.Errorf("fetching post %s for update: %w", postID, err)
	}

	doc.Files = append(doc.Files, newFiles...)
	if t, ok := updatedAt.(time.Time); ok {
		doc.UpdatedAt = t
	}
	if _, err := s.posts.Put(ctx, postID, doc); err != nil {
		return fmt.Errorf("updating post %s: %w", postID, err)
	}
	return nil
}

// DeletePost removes a post document outright.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	row := s.posts.Get(ctx, id)
	var doc postDoc
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil
		}
		return fmt.Errorf("fetching post %s for delete: %w", id, err)
	}

	if _, err := s.posts.Delete(ctx, id, doc.Rev); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

// userDoc is a trivial id-only document; existence of the document is the
// signal, not its contents.
type userDoc struct {
	ID  string `json:"id"`
	Rev string `json:"_rev,omitempty"`
}

// UserExists reports whether userID has been observed via a "user created"
// event.
func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	row := s.users.Get(ctx, userID)
	var doc userDoc
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return false, nil
		}
		return false, fmt.Errorf("checking user %s: %w", userID, err)
	}
	return true, nil
}

// AddUser records that userID now exists.
func (s *Store) AddUser(ctx context.Context, userID string) error {
	if _, err := s.users.Put(ctx, userID, userDoc{ID: userID}); err != nil {
		return fmt.Errorf("adding user %s: %w", userID, err)
	}
	return nil
}

// RemoveUser records that userID has been deleted.
func (s *Store) RemoveUser(ctx context.Context, userID string) error {
	row := s.users.Get(ctx, userID)
	var doc userDoc
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil
		}
		return fmt.Errorf("fetching user %s for delete: %w", userID, err)
	}
	if _, err := s.users.Delete(ctx, userID, doc.Rev); err != nil {
		return fmt.Errorf("deleting user %s: %w", userID, err)
	}
	return nil
}

// PostsByOwner returns every post id owned by userID, used when cascading a
// "user deleted" event.
func (s *Store) PostsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows := s.posts.Find(ctx, map[string]any{
		"selector": map[string]any{"ownerId": ownerID},
		"fields":   []string{"id"},
	})
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var doc struct {
			ID string `json:"id"`
		}
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("scanning post id row: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, rows.Err()
}

// Close shuts down the CouchDB client.
func (s *Store) Close() error {
	// kivik's Client has no explicit Close; nothing to release beyond the
	// underlying HTTP client's idle connections, which time out on their own.
	return nil
}
