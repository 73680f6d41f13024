// Package interactions implements the interaction-count and read-through
// cache layer: per-resource like sets, HyperLogLog view counters, and a
// read-through hash cache for composite answers. Connection setup is
// redis.ParseURL plus a ping-on-connect check.
package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	hashCacheKey = "user-interaction:replies"

	knownUsersKey   = "user-interaction:known-users"
	createdPostsKey = "user-interaction:created-posts"
)

// Store is the Redis-backed boundary for both interaction counters and the
// composite-answer cache.
type Store struct {
	client   *redis.Client
	cacheTTL time.Duration
}

// New connects to the Redis/Valkey/Dragonfly instance at url and verifies
// connectivity.
func New(url string, cacheTTL time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Store{client: client, cacheTTL: cacheTTL}, nil
}

// NewFromClient wraps an already-configured client, used by tests running
// against a miniredis instance.
func NewFromClient(client *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{client: client, cacheTTL: cacheTTL}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func likesKey(resourceID string) string { return fmt.Sprintf("entity:%s:likes", resourceID) }
func viewsKey(resourceID string) string { return fmt.Sprintf("entity:%s:views", resourceID) }

// --- Like set ---

// Like adds userID to resourceID's like set, returning whether it was newly
// added (invariant 3: repeated calls are idempotent).
func (s *Store) Like(ctx context.Context, resourceID, userID string) (bool, error) {
	added, err := s.client.SAdd(ctx, likesKey(resourceID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("liking %s: %w", resourceID, err)
	}
	return added == 1, nil
}

// Unlike removes userID from resourceID's like set, returning whether it
// was present.
func (s *Store) Unlike(ctx context.Context, resourceID, userID string) (bool, error) {
	removed, err := s.client.SRem(ctx, likesKey(resourceID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("unliking %s: %w", resourceID, err)
	}
	return removed == 1, nil
}

// IsLiked reports whether userID has liked resourceID.
func (s *Store) IsLiked(ctx context.Context, resourceID, userID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, likesKey(resourceID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("checking like membership for %s: %w", resourceID, err)
	}
	return ok, nil
}

// LikeCount returns the cardinality of resourceID's like set.
func (s *Store) LikeCount(ctx context.Context, resourceID string) (uint64, error) {
	n, err := s.client.SCard(ctx, likesKey(resourceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting likes for %s: %w", resourceID, err)
	}
	return uint64(n), nil
}

// IsManyLiked pipelines a membership check across resourceIDs for userID,
// returning a map keyed by the bare resource id. Empty input returns an
// empty map without touching Redis.
func (s *Store) IsManyLiked(ctx context.Context, resourceIDs []string, userID string) (map[string]bool, error) {
	out := make(map[string]bool, len(resourceIDs))
	if len(resourceIDs) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.BoolCmd, len(resourceIDs))
	for _, id := range resourceIDs {
		cmds[id] = pipe.SIsMember(ctx, likesKey(id), userID)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipelining like membership: %w", err)
	}
	for id, cmd := range cmds {
		out[id] = cmd.Val()
	}
	return out, nil
}

// GetManyLikes pipelines a cardinality fetch across resourceIDs.
func (s *Store) GetManyLikes(ctx context.Context, resourceIDs []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(resourceIDs))
	if len(resourceIDs) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(resourceIDs))
	for _, id := range resourceIDs {
		cmds[id] = pipe.SCard(ctx, likesKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipelining like counts: %w", err)
	}
	for id, cmd := range cmds {
		out[id] = uint64(cmd.Val())
	}
	return out, nil
}

// --- View counter (HyperLogLog, additive only) ---

// View records that userID viewed resourceID, returning whether the
// cardinality estimate grew.
func (s *Store) View(ctx context.Context, resourceID, userID string) (bool, error) {
	before, err := s.client.PFCount(ctx, viewsKey(resourceID)).Result()
	if err != nil {
		return false, fmt.Errorf("reading view estimate for %s: %w", resourceID, err)
	}
	if err := s.client.PFAdd(ctx, viewsKey(resourceID), userID).Err(); err != nil {
		return false, fmt.Errorf("recording view for %s: %w", resourceID, err)
	}
	after, err := s.client.PFCount(ctx, viewsKey(resourceID)).Result()
	if err != nil {
		return false, fmt.Errorf("reading view estimate for %s: %w", resourceID, err)
	}
	return after > before, nil
}

// ViewCount returns the approximate distinct-viewer count for resourceID.
func (s *Store) ViewCount(ctx context.Context, resourceID string) (uint64, error) {
	n, err := s.client.PFCount(ctx, viewsKey(resourceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting views for %s: %w", resourceID, err)
	}
	return uint64(n), nil
}

// GetManyViews pipelines a view-count fetch across resourceIDs.
func (s *Store) GetManyViews(ctx context.Context, resourceIDs []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(resourceIDs))
	if len(resourceIDs) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(resourceIDs))
	for _, id := range resourceIDs {
		cmds[id] = pipe.PFCount(ctx, viewsKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipelining view counts: %w", err)
	}
	for id, cmd := range cmds {
		out[id] = uint64(cmd.Val())
	}
	return out, nil
}

// --- Deletion ---

// DeleteInteractions removes both the like set and view counter for
// resourceID in a single batch.
func (s *Store) DeleteInteractions(ctx context.Context, resourceID string) error {
	_, err := s.client.Del(ctx, likesKey(resourceID), viewsKey(resourceID)).Result()
	if err != nil {
		return fmt.Errorf("deleting interactions for %s: %w", resourceID, err)
	}
	return nil
}

// DeleteMany pipelines DeleteInteractions across resourceIDs.
func (s *Store) DeleteMany(ctx context.Context, resourceIDs []string) error {
	if len(resourceIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(resourceIDs)*2)
	for _, id := range resourceIDs {
		keys = append(keys, likesKey(id), viewsKey(id))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("batch deleting interactions: %w", err)
	}
	return nil
}

// --- Hash cache for composite answers ---

func cacheField(postID, viewerUserID string) string {
	if viewerUserID == "" {
		return postID
	}
	return viewerUserID + "-" + postID
}

// GetCached fetches a cached composite answer, serialized by the caller
// into raw bytes (the service layer owns JSON marshaling of the
// PostInteraction type; this package only moves bytes).
func (s *Store) GetCached(ctx context.Context, postID, viewerUserID string) ([]byte, bool, error) {
	val, err := s.client.HGet(ctx, hashCacheKey, cacheField(postID, viewerUserID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache for post %s: %w", postID, err)
	}
	return val, true, nil
}

// SetCached writes a composite answer and resets its TTL to the configured
// interval (whole-field TTL, no GT/NX/NONE modifier — see the open-question
// resolution in the project notes).
func (s *Store) SetCached(ctx context.Context, postID, viewerUserID string, value []byte) error {
	field := cacheField(postID, viewerUserID)
	if err := s.client.HSet(ctx, hashCacheKey, field, value).Err(); err != nil {
		return fmt.Errorf("writing cache for post %s: %w", postID, err)
	}
	if err := s.client.HExpire(ctx, hashCacheKey, s.cacheTTL, field).Err(); err != nil {
		return fmt.Errorf("setting cache ttl for post %s: %w", postID, err)
	}
	return nil
}

// InvalidatePost deletes every hash field belonging to postID — both the
// no-viewer field and every per-viewer field — by scanning for field names
// matching the post id. This is an unbounded HScan+MATCH sweep (see the
// open-question resolution); the hash is expected to stay small. HSCAN's
// MATCH filters on field name and returns field/value pairs interleaved, so
// only even-indexed entries are field names.
func (s *Store) InvalidatePost(ctx context.Context, postID string) error {
	pattern := "*" + postID + "*"
	var fields []string
	var cursor uint64
	for {
		pairs, next, err := s.client.HScan(ctx, hashCacheKey, cursor, pattern, 0).Result()
		if err != nil {
			return fmt.Errorf("scanning cache for post %s: %w", postID, err)
		}
		for i := 0; i < len(pairs); i += 2 {
			fields = append(fields, pairs[i])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, hashCacheKey, fields...).Err(); err != nil {
		return fmt.Errorf("invalidating cache for post %s: %w", postID, err)
	}
	return nil
}

// --- Known-user / created-post existence sets ---

// AddKnownUser records a user observed via a "user created" event.
func (s *Store) AddKnownUser(ctx context.Context, userID string) error {
	return s.client.SAdd(ctx, knownUsersKey, userID).Err()
}

// RemoveKnownUser forgets a user deleted via a "user deleted" event.
func (s *Store) RemoveKnownUser(ctx context.Context, userID string) error {
	return s.client.SRem(ctx, knownUsersKey, userID).Err()
}

// IsKnownUser reports whether userID has been observed.
func (s *Store) IsKnownUser(ctx context.Context, userID string) (bool, error) {
	return s.client.SIsMember(ctx, knownUsersKey, userID).Result()
}

// AddCreatedPost records a post observed via a "post created" event, once
// its author is confirmed known.
func (s *Store) AddCreatedPost(ctx context.Context, postID string) error {
	return s.client.SAdd(ctx, createdPostsKey, postID).Err()
}

// RemoveCreatedPost forgets a post removed via a "post deleted" event.
func (s *Store) RemoveCreatedPost(ctx context.Context, postID string) error {
	return s.client.SRem(ctx, createdPostsKey, postID).Err()
}
