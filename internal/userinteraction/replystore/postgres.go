// Package replystore implements a materialized-path reply tree store on
// top of a raw pgx pool (Exec/Query/QueryRow over a *pgxpool.Pool, no ORM).
package replystore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimbusfeed/socialmesh/internal/platform/ids"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/domain"
)

// Store is the reply service's relational persistence boundary. Tables:
// users(id), posts(id, user_id), replies(id, root_id, reply_to_id, user_id,
// content, created_at, path), indexed on root_id, user_id, and a
// path-prefix index.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and verifies connectivity.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Create inserts a new reply, computing its materialized path as part of
// the insert: a new id is generated, then the path is either `postId/newId`
// (top-level, parentId == postId) or `parentPath/newId` (nested, looked up
// from the parent row), all inside one transaction.
func (s *Store) Create(ctx context.Context, postID, parentID, authorID, content string) (*domain.Reply, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	newID := ids.New()

	var parentPath string
	if parentID == postID {
		parentPath = postID
	} else {
		row := tx.QueryRow(ctx, `SELECT path FROM replies WHERE id = $1`, parentID)
		if err := row.Scan(&parentPath); err != nil {
			return nil, fmt.Errorf("looking up parent path for %s: %w", parentID, err)
		}
	}
	path := parentPath + "/" + newID

	now := time.Now()
	_, err = tx.Exec(ctx,
		`INSERT INTO replies (id, root_id, reply_to_id, user_id, content, created_at, path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		newID, postID, parentID, authorID, content, now, path,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting reply: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing reply insert: %w", err)
	}

	return &domain.Reply{
		ID:        newID,
		RootID:    postID,
		ParentID:  parentID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		Path:      path,
	}, nil
}

// Update changes only a reply's content; the materialized path never
// changes after insert.
func (s *Store) Update(ctx context.Context, id, content string) (*domain.Reply, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE replies SET content = $2 WHERE id = $1
		 RETURNING id, root_id, reply_to_id, user_id, content, created_at, path`,
		id, content,
	)
	return scanReply(row)
}

// Delete removes id and every descendant in a single statement, matched by
// path prefix, so deleting a reply cascades to its whole subtree.
func (s *Store) Delete(ctx context.Context, id string) error {
	path, err := s.pathOf(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM replies WHERE path LIKE $1`, path+"%")
	return err
}

// DeleteByPost removes every reply rooted at postID.
func (s *Store) DeleteByPost(ctx context.Context, postID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM replies WHERE root_id = $1`, postID)
	return err
}

// DeleteByUser removes every reply authored by userID and returns the
// deleted ids, so the caller can cascade interaction-key deletion for them.
func (s *Store) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `DELETE FROM replies WHERE user_id = $1 RETURNING id`, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting replies for user %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning deleted reply id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) pathOf(ctx context.Context, id string) (string, error) {
	var path string
	row := s.pool.QueryRow(ctx, `SELECT path FROM replies WHERE id = $1`, id)
	if err := row.Scan(&path); err != nil {
		return "", fmt.Errorf("looking up path for %s: %w", id, err)
	}
	return path, nil
}

// GetSubtree returns id and every descendant (prefix match on path).
func (s *Store) GetSubtree(ctx context.Context, id string) ([]domain.Reply, error) {
	path, err := s.pathOf(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, root_id, reply_to_id, user_id, content, created_at, path
		 FROM replies WHERE path LIKE $1 ORDER BY created_at`,
		path+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("querying subtree of %s: %w", id, err)
	}
	return scanReplies(rows)
}

// GetAllByPost returns every reply rooted at postID, ordered by creation
// time.
func (s *Store) GetAllByPost(ctx context.Context, postID string) ([]domain.Reply, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, root_id, reply_to_id, user_id, content, created_at, path
		 FROM replies WHERE root_id = $1 ORDER BY created_at`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying replies for post %s: %w", postID, err)
	}
	return scanReplies(rows)
}

// GetAllByPosts returns every reply rooted at any of postIDs, bucketed by
// root id in memory.
func (s *Store) GetAllByPosts(ctx context.Context, postIDs []string) (map[string][]domain.Reply, error) {
	if len(postIDs) == 0 {
		return map[string][]domain.Reply{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, root_id, reply_to_id, user_id, content, created_at, path
		 FROM replies WHERE root_id = ANY($1) ORDER BY created_at`,
		postIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("batch querying replies: %w", err)
	}
	defer rows.Close()

	buckets := make(map[string][]domain.Reply, len(postIDs))
	for rows.Next() {
		r, err := scanReplyRow(rows)
		if err != nil {
			return nil, err
		}
		buckets[r.RootID] = append(buckets[r.RootID], r)
	}
	return buckets, rows.Err()
}

// GetByID fetches a single reply.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Reply, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, root_id, reply_to_id, user_id, content, created_at, path
		 FROM replies WHERE id = $1`,
		id,
	)
	return scanReply(row)
}

func scanReplyRow(rows pgx.Rows) (domain.Reply, error) {
	var r domain.Reply
	if err := rows.Scan(&r.ID, &r.RootID, &r.ParentID, &r.AuthorID, &r.Content, &r.CreatedAt, &r.Path); err != nil {
		return domain.Reply{}, fmt.Errorf("scanning reply row: %w", err)
	}
	return r, nil
}

func scanReplies(rows pgx.Rows) ([]domain.Reply, error) {
	defer rows.Close()
	var out []domain.Reply
	for rows.Next() {
		r, err := scanReplyRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReply(row pgx.Row) (*domain.Reply, error) {
	var r domain.Reply
	if err := row.Scan(&r.ID, &r.RootID, &r.ParentID, &r.AuthorID, &r.Content, &r.CreatedAt, &r.Path); err != nil {
		return nil, fmt.Errorf("scanning reply: %w", err)
	}
	return &r, nil
}

// Schema creates the users, posts and replies tables and the replies
// indices. Every statement is IF NOT EXISTS, so it is safe to apply on each
// startup.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS replies (
	id TEXT PRIMARY KEY,
	root_id TEXT NOT NULL,
	reply_to_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	path TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS replies_root_id_idx ON replies (root_id);
CREATE INDEX IF NOT EXISTS replies_user_id_idx ON replies (user_id);
CREATE INDEX IF NOT EXISTS replies_path_idx ON replies (path text_pattern_ops);
`

// EnsureSchema applies Schema; cmd/user-interaction runs it at every
// startup, and the integration tests use it too.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}
